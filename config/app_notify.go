package config

import (
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/notify"
	"github.com/akeren/telecheck/pkg/utils"
)

// NewNotifier always logs notifications; NATS_URL additionally publishes them.
// The returned close func is nil when nothing needs releasing.
func NewNotifier(logger *log.Logger) (notify.Notifier, func() error) {
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}

	natsURL := utils.GetEnvTrimmed("NATS_URL")
	if natsURL == "" {
		return notifiers, nil
	}

	subject := utils.GetEnvTrimmedOrDefault("NATS_NOTIFY_SUBJECT", notify.DefaultSubject)

	natsNotifier, err := notify.NewNATSNotifier(natsURL, subject)
	if err != nil {
		logger.Error("Failed to connect notification bus; continuing with log notifications only", "error", err)
		return notifiers, nil
	}

	logger.Info("Publishing notifications to NATS", "subject", subject)
	return append(notifiers, natsNotifier), natsNotifier.Close
}
