package access

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/internal/models"
	"github.com/akeren/telecheck/pkg/constants"
	apperrors "github.com/akeren/telecheck/pkg/errors"
	"github.com/akeren/telecheck/pkg/notify"
	"github.com/go-playground/validator/v10"
)

type AccessService interface {
	// Resolve derives the session's status and the view the client should show.
	Resolve(ctx context.Context, sessionID string) (*SessionResponse, error)

	// Submit registers the session's email. First-time emails get a roster record;
	// returning emails keep whatever status they already have.
	Submit(ctx context.Context, sessionID string, req *SubmitEmailRequest) (*SessionResponse, error)

	ListRoster(ctx context.Context, sessionID string) (*RosterResponse, error)

	Approve(ctx context.Context, sessionID, targetEmail string) (*AccessRecordResponse, error)
	Reject(ctx context.Context, sessionID, targetEmail string) (*AccessRecordResponse, error)
	Revoke(ctx context.Context, sessionID, targetEmail string) (*AccessRecordResponse, error)
	Reevaluate(ctx context.Context, sessionID, targetEmail string) (*AccessRecordResponse, error)
	Transition(ctx context.Context, sessionID string, action Action, targetEmail string) (*AccessRecordResponse, error)

	// RequireApproved returns the session's email when it may run checks.
	RequireApproved(ctx context.Context, sessionID string) (string, error)
	TouchLastSeen(ctx context.Context, email string) error

	Reset(ctx context.Context, sessionID string) error
	ForceAdminApproved(ctx context.Context) error
	ForceCurrentUserApproved(ctx context.Context, sessionID string) (*SessionResponse, error)
}

type accessService struct {
	logger     *log.Logger
	repository AccessRepository
	notifier   notify.Notifier
	policy     Policy
	validate   *validator.Validate
	now        func() time.Time
}

type ServiceOption func(*accessService)

// WithClock replaces time.Now for requestedAt and lastSeen stamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *accessService) { s.now = now }
}

func NewAccessService(
	logger *log.Logger,
	repository AccessRepository,
	notifier notify.Notifier,
	policy Policy,
	opts ...ServiceOption,
) AccessService {
	s := &accessService{
		logger:     logger,
		repository: repository,
		notifier:   notifier,
		policy:     policy,
		validate:   validator.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *accessService) Resolve(ctx context.Context, sessionID string) (*SessionResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.repository.GetCurrentEmail(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to load session email", "error", err)
		return nil, err
	}

	return s.sessionResponse(sessionID, current, roster), nil
}

func (s *accessService) Submit(ctx context.Context, sessionID string, req *SubmitEmailRequest) (*SessionResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Submit received nil request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	email := strings.TrimSpace(req.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		logger.Info("Rejected malformed email", "error", err)
		return nil, s.fail(ctx, sessionID, NewInvalidEmailError())
	}

	if s.policy.ShadowsAdmin(email) {
		logger.Info("Rejected case variant of the admin address")
		return nil, s.fail(ctx, sessionID, NewReservedEmailError())
	}

	if !s.policy.IsAdmin(email) && !s.policy.DomainAllowed(email) {
		logger.Info("Rejected email outside allow-list", "domain", models.EmailDomain(email))
		return nil, s.fail(ctx, sessionID, NewDomainNotAllowedError())
	}

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	record := findRecord(roster, email)
	if record == nil {
		roster = append(roster, models.AccessRecord{
			Email:       models.NormalizeEmail(email),
			RequestedAt: s.stamp(),
			Status:      s.policy.InitialStatus(email),
		})
		record = &roster[len(roster)-1]

		if err := s.repository.SaveRoster(ctx, roster); err != nil {
			logger.Error("Failed to save roster", "error", err)
			return nil, err
		}

		logger.Info("Access requested", "email", record.Email, "status", record.Status)
	}

	if err := s.repository.SetCurrentEmail(ctx, sessionID, email); err != nil {
		logger.Error("Failed to save session email", "error", err)
		return nil, err
	}

	switch record.Status {
	case models.AccessStatusApproved:
		s.emit(ctx, sessionID, notify.Info("Access Granted", "You can now use "+constants.AppName+" with "+record.Email+"."))
	case models.AccessStatusPendingApproval:
		s.emit(ctx, sessionID, notify.Info("Access Requested", "Your request has been sent to the admin for approval."))
	case models.AccessStatusRevoked:
		s.emit(ctx, sessionID, notify.Destructive("Access Revoked", "Access for "+record.Email+" has been revoked."))
	}

	return s.sessionResponse(sessionID, email, roster), nil
}

func (s *accessService) ListRoster(ctx context.Context, sessionID string) (*RosterResponse, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, sessionID, roster); err != nil {
		return nil, err
	}

	resp := ToRosterResponse(roster, s.policy)
	return &resp, nil
}

func (s *accessService) Approve(ctx context.Context, sessionID, targetEmail string) (*AccessRecordResponse, error) {
	return s.Transition(ctx, sessionID, ActionApprove, targetEmail)
}

func (s *accessService) Reject(ctx context.Context, sessionID, targetEmail string) (*AccessRecordResponse, error) {
	return s.Transition(ctx, sessionID, ActionReject, targetEmail)
}

func (s *accessService) Revoke(ctx context.Context, sessionID, targetEmail string) (*AccessRecordResponse, error) {
	return s.Transition(ctx, sessionID, ActionRevoke, targetEmail)
}

func (s *accessService) Reevaluate(ctx context.Context, sessionID, targetEmail string) (*AccessRecordResponse, error) {
	return s.Transition(ctx, sessionID, ActionReevaluate, targetEmail)
}

func (s *accessService) Transition(ctx context.Context, sessionID string, action Action, targetEmail string) (*AccessRecordResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if action == ActionSubmit {
		return nil, NewUnsupportedActionError()
	}

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, sessionID, roster); err != nil {
		return nil, err
	}

	record := findRecord(roster, targetEmail)
	if record == nil {
		return nil, s.fail(ctx, sessionID, NewRecordNotFoundError())
	}

	if action == ActionRevoke && s.policy.isAdminRecord(record) && countApprovedAdmins(roster, s.policy) <= 1 {
		logger.Warn("Refused to revoke the last approved admin", "email", record.Email)
		return nil, s.fail(ctx, sessionID, NewLastAdminError())
	}

	next, ok := NextStatus(record.Status, action)
	if !ok {
		logger.Info("Illegal roster transition", "email", record.Email, "from", record.Status, "action", action)
		return nil, s.fail(ctx, sessionID, NewInvalidTransitionError())
	}

	previous := record.Status
	record.Status = next

	if err := s.repository.SaveRoster(ctx, roster); err != nil {
		logger.Error("Failed to save roster", "error", err)
		return nil, err
	}

	logger.Info("Roster transition applied", "email", record.Email, "from", previous, "to", next, "action", action)
	s.emit(ctx, sessionID, transitionNotification(action, record.Email))

	resp := ToAccessRecordResponse(record, s.policy)
	return &resp, nil
}

func (s *accessService) RequireApproved(ctx context.Context, sessionID string) (string, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return "", err
	}

	current, err := s.repository.GetCurrentEmail(ctx, sessionID)
	if err != nil {
		return "", err
	}

	record := findRecord(roster, current)
	if record == nil || !record.IsApproved() || s.policy.ShadowsAdmin(current) {
		return "", NewAccessNotApprovedError()
	}

	return current, nil
}

func (s *accessService) TouchLastSeen(ctx context.Context, email string) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return err
	}

	record := findRecord(roster, email)
	if record == nil {
		return NewRecordNotFoundError()
	}

	record.LastSeen = s.stamp()

	if err := s.repository.SaveRoster(ctx, roster); err != nil {
		logger.Error("Failed to save roster", "error", err)
		return err
	}

	return nil
}

func (s *accessService) Reset(ctx context.Context, sessionID string) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if err := s.repository.ClearRoster(ctx); err != nil {
		return err
	}

	if err := s.repository.ClearSession(ctx, sessionID); err != nil {
		return err
	}

	logger.Warn("Access state reset")
	s.emit(ctx, sessionID, notify.Info("State Reset", "All access data has been cleared."))
	return nil
}

func (s *accessService) ForceAdminApproved(ctx context.Context) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return err
	}

	roster = s.upsertApproved(roster, s.policy.AdminEmail)

	if err := s.repository.SaveRoster(ctx, roster); err != nil {
		logger.Error("Failed to save roster", "error", err)
		return err
	}

	s.emit(ctx, "", notify.Info("Admin Approved", "The admin account is approved."))
	return nil
}

func (s *accessService) ForceCurrentUserApproved(ctx context.Context, sessionID string) (*SessionResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	current, err := s.repository.GetCurrentEmail(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if current == "" {
		return nil, s.fail(ctx, sessionID, NewNoCurrentUserError())
	}

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	roster = s.upsertApproved(roster, current)

	if err := s.repository.SaveRoster(ctx, roster); err != nil {
		logger.Error("Failed to save roster", "error", err)
		return nil, err
	}

	s.emit(ctx, sessionID, notify.Info("User Approved", models.NormalizeEmail(current)+" is approved."))
	return s.sessionResponse(sessionID, current, roster), nil
}

// loadRoster applies the load-time invariants: one record per email, every
// record carries a persistable status, and the admin record exists and is
// approved. A healed roster is written back.
func (s *accessService) loadRoster(ctx context.Context) ([]models.AccessRecord, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	roster, err := s.repository.LoadRoster(ctx)
	healed := false

	if err != nil {
		if !errors.Is(err, ErrMalformedRoster) {
			logger.Error("Failed to load roster", "error", err)
			return nil, err
		}

		logger.Warn("Discarding malformed roster", "error", err)
		roster = nil
		healed = true
	}

	roster, changed := s.normalizeRoster(roster)
	if changed || healed {
		if err := s.repository.SaveRoster(ctx, roster); err != nil {
			logger.Error("Failed to save healed roster", "error", err)
			return nil, err
		}
	}

	return roster, nil
}

func (s *accessService) normalizeRoster(roster []models.AccessRecord) ([]models.AccessRecord, bool) {
	changed := false
	seen := make(map[string]struct{}, len(roster))
	out := make([]models.AccessRecord, 0, len(roster)+1)

	for _, record := range roster {
		email := models.NormalizeEmail(record.Email)
		if email == "" {
			changed = true
			continue
		}

		if _, dup := seen[email]; dup {
			changed = true
			continue
		}
		seen[email] = struct{}{}

		if email != record.Email {
			record.Email = email
			changed = true
		}

		if !record.Status.IsPersistable() {
			record.Status = models.AccessStatusPendingApproval
			changed = true
		}

		out = append(out, record)
	}

	admin := findRecord(out, s.policy.AdminEmail)
	switch {
	case admin == nil:
		out = append(out, models.AccessRecord{
			Email:       models.NormalizeEmail(s.policy.AdminEmail),
			RequestedAt: s.stamp(),
			Status:      models.AccessStatusApproved,
		})
		changed = true
	case !admin.IsApproved():
		admin.Status = models.AccessStatusApproved
		changed = true
	}

	return out, changed
}

func (s *accessService) requireAdmin(ctx context.Context, sessionID string, roster []models.AccessRecord) error {
	current, err := s.repository.GetCurrentEmail(ctx, sessionID)
	if err != nil {
		return err
	}

	record := findRecord(roster, current)
	if !s.policy.IsAdmin(current) || record == nil || !record.IsApproved() {
		return s.fail(ctx, sessionID, NewNotAdminError())
	}

	return nil
}

func (s *accessService) upsertApproved(roster []models.AccessRecord, email string) []models.AccessRecord {
	if record := findRecord(roster, email); record != nil {
		record.Status = models.AccessStatusApproved
		return roster
	}

	return append(roster, models.AccessRecord{
		Email:       models.NormalizeEmail(email),
		RequestedAt: s.stamp(),
		Status:      models.AccessStatusApproved,
	})
}

func (s *accessService) sessionResponse(sessionID, current string, roster []models.AccessRecord) *SessionResponse {
	resp := &SessionResponse{
		SessionID:    sessionID,
		CurrentEmail: current,
		Status:       models.AccessStatusNeedsEntry.String(),
	}

	record := findRecord(roster, current)
	if record == nil {
		resp.View = string(ViewFor(models.AccessStatusNeedsEntry, false))
		return resp
	}

	resp.IsAdmin = s.policy.IsAdmin(current) && record.IsApproved()
	resp.Status = record.Status.String()
	resp.View = string(ViewFor(record.Status, resp.IsAdmin))
	return resp
}

// fail publishes a destructive notification for a user-visible rejection and returns it.
func (s *accessService) fail(ctx context.Context, sessionID string, appErr *apperrors.AppError) error {
	s.emit(ctx, sessionID, notify.Destructive(appErr.Title, appErr.Message))
	return appErr
}

func (s *accessService) emit(ctx context.Context, sessionID string, n notify.Notification) {
	if s.notifier == nil {
		return
	}

	n.SessionID = sessionID
	n.EmittedAt = s.now().UTC()

	if err := s.notifier.Notify(ctx, n); err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Failed to deliver notification", "title", n.Title, "error", err)
	}
}

func (s *accessService) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func findRecord(roster []models.AccessRecord, email string) *models.AccessRecord {
	key := models.NormalizeEmail(email)
	if key == "" {
		return nil
	}

	for i := range roster {
		if models.NormalizeEmail(roster[i].Email) == key {
			return &roster[i]
		}
	}
	return nil
}

func countApprovedAdmins(roster []models.AccessRecord, policy Policy) int {
	n := 0
	for i := range roster {
		if roster[i].IsApproved() && policy.isAdminRecord(&roster[i]) {
			n++
		}
	}
	return n
}

func transitionNotification(action Action, email string) notify.Notification {
	switch action {
	case ActionApprove:
		return notify.Info("User Approved", email+" can now use "+constants.AppName+".")
	case ActionReject:
		return notify.Destructive("Request Rejected", "The request from "+email+" was rejected.")
	case ActionRevoke:
		return notify.Destructive("Access Revoked", "Access for "+email+" has been revoked.")
	default:
		return notify.Info("Request Reopened", email+" is pending approval again.")
	}
}
