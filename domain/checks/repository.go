package checks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akeren/telecheck/internal/models"
	"github.com/akeren/telecheck/pkg/constants"
	apperrors "github.com/akeren/telecheck/pkg/errors"
	"github.com/akeren/telecheck/pkg/kvstore"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=checks

// ResultsRepository keeps the last completed run of each session.
type ResultsRepository interface {
	SaveResults(ctx context.Context, sessionID string, results []models.CheckResult) error
	// LoadResults returns nil when the session has no stored run.
	LoadResults(ctx context.Context, sessionID string) ([]models.CheckResult, error)
	ClearResults(ctx context.Context, sessionID string) error
}

type resultsRepository struct {
	store kvstore.Store
}

func NewResultsRepository(store kvstore.Store) ResultsRepository {
	return &resultsRepository{store: store}
}

func (r *resultsRepository) SaveResults(ctx context.Context, sessionID string, results []models.CheckResult) error {
	if results == nil {
		results = []models.CheckResult{}
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return apperrors.NewInternalServerError("failed to encode results", err)
	}

	if err := r.store.Set(ctx, kvstore.SessionKey(sessionID, constants.SessionResults), string(payload), 0); err != nil {
		return apperrors.NewDatabaseError("failed to save results", err)
	}

	return nil
}

func (r *resultsRepository) LoadResults(ctx context.Context, sessionID string) ([]models.CheckResult, error) {
	raw, err := r.store.Get(ctx, kvstore.SessionKey(sessionID, constants.SessionResults))
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to load results", err)
	}

	if raw == "" {
		return nil, nil
	}

	var results []models.CheckResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRun, err)
	}

	return results, nil
}

func (r *resultsRepository) ClearResults(ctx context.Context, sessionID string) error {
	if err := r.store.Delete(ctx, kvstore.SessionKey(sessionID, constants.SessionResults)); err != nil {
		return apperrors.NewDatabaseError("failed to clear results", err)
	}
	return nil
}
