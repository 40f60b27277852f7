package checks

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/internal/models"
	apperrors "github.com/akeren/telecheck/pkg/errors"
	"github.com/akeren/telecheck/pkg/notify"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/akeren/telecheck/domain/checks"

// AccessGate is the part of the access workflow a bulk run depends on.
type AccessGate interface {
	RequireApproved(ctx context.Context, sessionID string) (string, error)
	TouchLastSeen(ctx context.Context, email string) error
}

type CheckService interface {
	// RunBulk validates the input, checks every number and stores the run as
	// the session's last results.
	RunBulk(ctx context.Context, sessionID string, req *BulkCheckRequest, opts RunOptions) (*BulkCheckResponse, error)

	LastResults(ctx context.Context, sessionID string) (*ResultsResponse, error)
}

// RunOptions are per-call: the synchronous endpoint runs without delay, the
// streaming one paces items and reports progress.
type RunOptions struct {
	Delay      time.Duration
	OnProgress ProgressFunc
	// Pacing, when set, ends the delays early once done. The run still completes.
	Pacing context.Context
}

type Config struct {
	// MaxBulkNumbers caps a run; 0 disables the cap.
	MaxBulkNumbers int
}

type checkService struct {
	logger     *log.Logger
	gate       AccessGate
	repository ResultsRepository
	lookup     Lookup
	notifier   notify.Notifier
	metrics    *Metrics
	config     Config
	tracer     trace.Tracer
}

func NewCheckService(
	logger *log.Logger,
	gate AccessGate,
	repository ResultsRepository,
	lookup Lookup,
	notifier notify.Notifier,
	metrics *Metrics,
	config Config,
) CheckService {
	return &checkService{
		logger:     logger,
		gate:       gate,
		repository: repository,
		lookup:     lookup,
		notifier:   notifier,
		metrics:    metrics,
		config:     config,
		tracer:     otel.Tracer(tracerName),
	}
}

func (s *checkService) RunBulk(ctx context.Context, sessionID string, req *BulkCheckRequest, opts RunOptions) (*BulkCheckResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("RunBulk received nil request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	email, err := s.gate.RequireApproved(ctx, sessionID)
	if err != nil {
		logger.Info("Bulk check refused", "error", err)
		return nil, err
	}

	// A new submission always discards the previous run, even when it is rejected below.
	if err := s.repository.ClearResults(ctx, sessionID); err != nil {
		logger.Error("Failed to clear previous results", "error", err)
		return nil, err
	}

	numbers := ParseNumbers(req.PhoneNumbers)
	if len(numbers) == 0 {
		return nil, s.fail(ctx, sessionID, NewNoNumbersError())
	}

	if s.config.MaxBulkNumbers > 0 && len(numbers) > s.config.MaxBulkNumbers {
		logger.Info("Bulk check over cap", "entered", len(numbers), "limit", s.config.MaxBulkNumbers)
		return nil, s.fail(ctx, sessionID, NewTooManyNumbersError(s.config.MaxBulkNumbers, len(numbers)))
	}

	ctx, span := s.tracer.Start(ctx, "checks.RunBulk", trace.WithAttributes(
		attribute.Int("telecheck.numbers", len(numbers)),
		attribute.Int64("telecheck.delay_ms", opts.Delay.Milliseconds()),
	))
	defer span.End()

	if opts.OnProgress != nil {
		opts.OnProgress(Progress{
			Checked: 0,
			Total:   len(numbers),
			Results: []models.CheckResult{StartingPlaceholder(len(numbers))},
		})
	}

	started := time.Now()
	runner := NewRunner(s.lookup, opts.Delay).OnResult(s.metrics.observeResult)
	if opts.Pacing != nil {
		runner.PaceWith(opts.Pacing)
	}
	results := runner.Run(ctx, numbers, opts.OnProgress)
	s.metrics.observeRun(time.Since(started).Seconds())

	summary := Summarize(results)
	span.SetAttributes(
		attribute.Int("telecheck.found", summary.Found),
		attribute.Int("telecheck.not_found", summary.NotFound),
		attribute.Int("telecheck.errors", summary.Errors),
	)

	if err := s.gate.TouchLastSeen(ctx, email); err != nil {
		logger.Warn("Failed to update last seen", "error", err)
	}

	if err := s.repository.SaveResults(ctx, sessionID, results); err != nil {
		logger.Error("Failed to store results", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "results not stored")
		return nil, err
	}

	notification := notify.Info("Bulk Check Complete", summary.Description())
	s.emit(ctx, sessionID, &notification)

	logger.Info("Bulk check complete",
		"total", summary.Total,
		"found", summary.Found,
		"not_found", summary.NotFound,
		"errors", summary.Errors,
	)

	return &BulkCheckResponse{
		Results:      results,
		Summary:      summary,
		Notification: notification,
	}, nil
}

func (s *checkService) LastResults(ctx context.Context, sessionID string) (*ResultsResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if _, err := s.gate.RequireApproved(ctx, sessionID); err != nil {
		return nil, err
	}

	results, err := s.repository.LoadResults(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrMalformedRun) {
			logger.Error("Failed to load results", "error", err)
			return nil, err
		}

		logger.Warn("Discarding malformed results", "error", err)
		results = nil
	}

	resp := ToResultsResponse(results)
	return &resp, nil
}

func (s *checkService) fail(ctx context.Context, sessionID string, appErr *apperrors.AppError) error {
	n := notify.Destructive(appErr.Title, appErr.Message)
	s.emit(ctx, sessionID, &n)
	return appErr
}

func (s *checkService) emit(ctx context.Context, sessionID string, n *notify.Notification) {
	n.SessionID = sessionID
	n.EmittedAt = time.Now().UTC()

	if s.notifier == nil {
		return
	}

	if err := s.notifier.Notify(ctx, *n); err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Failed to deliver notification", "title", n.Title, "error", err)
	}
}
