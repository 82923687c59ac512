package notify

import "fmt"

// NotificationType represents the type of notification
type NotificationType int

const (
	NotifyInfo NotificationType = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

// Notification represents a notification to be sent
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Details []string // Optional per-problem lines
}

// Notifier is the interface for sending notifications
type Notifier interface {
	Send(n Notification) error
}

// CheckFailed builds the notification sent when a check breaks the build.
func CheckFailed(summary string, failures []string) Notification {
	return Notification{
		Title:   "TODO check failed",
		Message: summary,
		Type:    NotifyError,
		Details: failures,
	}
}

// CheckRecovered builds the notification sent when a previously failing
// check passes again.
func CheckRecovered(summary string) Notification {
	return Notification{
		Title:   "TODO check passed",
		Message: summary,
		Type:    NotifySuccess,
	}
}

// MultiNotifier sends to multiple notifiers
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that sends to all provided notifiers
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Send sends the notification to all notifiers
func (m *MultiNotifier) Send(n Notification) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(n); err != nil {
			lastErr = fmt.Errorf("notify: %w", err)
		}
	}
	return lastErr
}

// NoopNotifier does nothing (for testing or disabled notifications)
type NoopNotifier struct{}

func (NoopNotifier) Send(n Notification) error { return nil }
