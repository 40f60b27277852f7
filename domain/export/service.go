package export

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/internal/models"
	apperrors "github.com/akeren/telecheck/pkg/errors"
	"github.com/akeren/telecheck/pkg/notify"
)

// Gate admits approved sessions only.
type Gate interface {
	RequireApproved(ctx context.Context, sessionID string) (string, error)
}

// ResultsSource yields the last completed run of a session.
type ResultsSource interface {
	LoadResults(ctx context.Context, sessionID string) ([]models.CheckResult, error)
}

type ExportService interface {
	Export(ctx context.Context, sessionID string, req *ExportRequest) (*ExportFile, error)
}

type ServiceOption func(*exportService)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *exportService) {
		s.now = now
	}
}

type exportService struct {
	logger   *log.Logger
	gate     Gate
	source   ResultsSource
	notifier notify.Notifier
	now      func() time.Time
}

func NewExportService(logger *log.Logger, gate Gate, source ResultsSource, notifier notify.Notifier, opts ...ServiceOption) ExportService {
	s := &exportService{
		logger:   logger,
		gate:     gate,
		source:   source,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *exportService) Export(ctx context.Context, sessionID string, req *ExportRequest) (*ExportFile, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		req = &ExportRequest{}
	}

	if _, err := s.gate.RequireApproved(ctx, sessionID); err != nil {
		logger.Info("Export refused", "error", err)
		return nil, err
	}

	statuses, err := ParseStatuses(req.Statuses)
	if err != nil {
		return nil, s.fail(ctx, sessionID, err)
	}

	results, err := s.source.LoadResults(ctx, sessionID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			logger.Error("Failed to load results for export", "error", err)
			return nil, err
		}
		logger.Warn("Stored results unreadable, exporting nothing", "error", err)
		results = nil
	}

	rows := FilterRows(results, statuses)
	if len(rows) == 0 {
		return nil, s.fail(ctx, sessionID, NewNothingToExportError())
	}

	buf, err := BuildWorkbook(rows)
	if err != nil {
		logger.Error("Failed to build workbook", "error", err)
		return nil, apperrors.NewInternalServerError("failed to build export", err)
	}

	file := &ExportFile{
		FileName:    FileName(s.now()),
		ContentType: ContentType,
		Rows:        len(rows),
		Content:     buf.Bytes(),
	}

	logger.Info("Export built", "file", file.FileName, "rows", file.Rows)
	return file, nil
}

func (s *exportService) fail(ctx context.Context, sessionID string, err error) error {
	if s.notifier != nil {
		n := notify.Destructive(apperrors.GetTitle(err), apperrors.GetHumanReadableMessage(err))
		n.SessionID = sessionID
		n.EmittedAt = time.Now().UTC()
		if err := s.notifier.Notify(ctx, n); err != nil {
			log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Failed to deliver notification", "title", n.Title, "error", err)
		}
	}
	return err
}
