// Package notify provides the notification capability adapter. The server
// has no native notification channel, so reminders are emitted as
// structured log events a client can subscribe to.
package notify

import (
	"github.com/planwise/core/internal/infrastructure/logger"
	"github.com/planwise/core/internal/ports"
)

// LogNotifier implements ports.Notifier on top of the application logger.
// Its permission state comes from configuration and never changes at
// runtime.
type LogNotifier struct {
	logger *logger.Logger
	state  ports.PermissionState
}

// NewLogNotifier creates a notifier whose permission is granted iff
// notifications are enabled in config.
func NewLogNotifier(appLogger *logger.Logger, enabled bool) *LogNotifier {
	state := ports.PermissionDenied
	if enabled {
		state = ports.PermissionGranted
	}
	return &LogNotifier{
		logger: appLogger.WithComponent("notifier"),
		state:  state,
	}
}

// PermissionState reports the configured capability state.
func (n *LogNotifier) PermissionState() ports.PermissionState {
	return n.state
}

// RequestPermission is a no-op here; the state is fixed by configuration.
func (n *LogNotifier) RequestPermission() ports.PermissionState {
	return n.state
}

// Fire emits one notification.
func (n *LogNotifier) Fire(title, body string) error {
	n.logger.Infow("Reminder fired", "title", title, "body", body)
	return nil
}
