package access

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akeren/telecheck/internal/models"
	"github.com/akeren/telecheck/pkg/constants"
	apperrors "github.com/akeren/telecheck/pkg/errors"
	"github.com/akeren/telecheck/pkg/kvstore"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=access

// AccessRepository persists the shared roster and the per-session identity.
// The roster is always read and written whole.
type AccessRepository interface {
	// LoadRoster returns ErrMalformedRoster (wrapped) when the stored value is not valid JSON.
	LoadRoster(ctx context.Context) ([]models.AccessRecord, error)
	SaveRoster(ctx context.Context, roster []models.AccessRecord) error
	ClearRoster(ctx context.Context) error

	GetCurrentEmail(ctx context.Context, sessionID string) (string, error)
	SetCurrentEmail(ctx context.Context, sessionID, email string) error
	// ClearSession removes every key scoped to the session, including its last results.
	ClearSession(ctx context.Context, sessionID string) error
}

type accessRepository struct {
	store kvstore.Store
}

func NewAccessRepository(store kvstore.Store) AccessRepository {
	return &accessRepository{store: store}
}

func (r *accessRepository) LoadRoster(ctx context.Context) ([]models.AccessRecord, error) {
	raw, err := r.store.Get(ctx, constants.RosterKey)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to load access roster", err)
	}

	if raw == "" {
		return nil, nil
	}

	var roster []models.AccessRecord
	if err := json.Unmarshal([]byte(raw), &roster); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRoster, err)
	}

	return roster, nil
}

func (r *accessRepository) SaveRoster(ctx context.Context, roster []models.AccessRecord) error {
	if roster == nil {
		roster = []models.AccessRecord{}
	}

	payload, err := json.Marshal(roster)
	if err != nil {
		return apperrors.NewInternalServerError("failed to encode access roster", err)
	}

	if err := r.store.Set(ctx, constants.RosterKey, string(payload), 0); err != nil {
		return apperrors.NewDatabaseError("failed to save access roster", err)
	}

	return nil
}

func (r *accessRepository) ClearRoster(ctx context.Context) error {
	if err := r.store.Delete(ctx, constants.RosterKey); err != nil {
		return apperrors.NewDatabaseError("failed to clear access roster", err)
	}
	return nil
}

func (r *accessRepository) GetCurrentEmail(ctx context.Context, sessionID string) (string, error) {
	email, err := r.store.Get(ctx, kvstore.SessionKey(sessionID, constants.SessionCurrentUserEmail))
	if err != nil {
		return "", apperrors.NewDatabaseError("failed to load session", err)
	}
	return email, nil
}

func (r *accessRepository) SetCurrentEmail(ctx context.Context, sessionID, email string) error {
	if err := r.store.Set(ctx, kvstore.SessionKey(sessionID, constants.SessionCurrentUserEmail), email, 0); err != nil {
		return apperrors.NewDatabaseError("failed to save session", err)
	}
	return nil
}

func (r *accessRepository) ClearSession(ctx context.Context, sessionID string) error {
	for _, name := range []string{constants.SessionCurrentUserEmail, constants.SessionResults} {
		if err := r.store.Delete(ctx, kvstore.SessionKey(sessionID, name)); err != nil {
			return apperrors.NewDatabaseError("failed to clear session", err)
		}
	}
	return nil
}
