package notify

import (
	"context"

	"github.com/akeren/telecheck/internal/log"
)

type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := log.GetLoggerInstanceFromContext(ctx, l.logger)

	attrs := []any{"title", n.Title, "description", n.Description, "variant", n.Variant}
	if n.SessionID != "" {
		attrs = append(attrs, "session_id", n.SessionID)
	}

	if n.Variant == VariantDestructive {
		logger.Warn("Notification", attrs...)
	} else {
		logger.Info("Notification", attrs...)
	}

	return nil
}
