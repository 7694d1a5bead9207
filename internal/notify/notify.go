// Package notify defines the completion notification requests the daemon
// emits. Presenting a notification is up to the implementation; every
// method must tolerate redundant calls for the same id.
package notify

import "github.com/ptimer/ptimer/pkg/logger"

// Notifier receives fire-and-forget notification requests.
type Notifier interface {
	// NotifyCompleted asks for a "timer finished" notification.
	NotifyCompleted(id, label string)
	// CancelNotification withdraws any notification shown for id.
	CancelNotification(id string)
}

// Log writes notification requests to a logger.
type Log struct {
	l logger.Logger
}

// NewLog returns a Notifier that logs through l.
func NewLog(l logger.Logger) *Log {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Log{l: l}
}

func (n *Log) NotifyCompleted(id, label string) {
	n.l.Info("timer %s (%q) finished", id, label)
}

func (n *Log) CancelNotification(id string) {
	n.l.Debug("notification for %s cancelled", id)
}

// Multi fans every request out to each notifier in order.
type Multi []Notifier

func (m Multi) NotifyCompleted(id, label string) {
	for _, n := range m {
		n.NotifyCompleted(id, label)
	}
}

func (m Multi) CancelNotification(id string) {
	for _, n := range m {
		n.CancelNotification(id)
	}
}

// Nop discards every request.
type Nop struct{}

func (Nop) NotifyCompleted(string, string) {}
func (Nop) CancelNotification(string)      {}

var (
	_ Notifier = (*Log)(nil)
	_ Notifier = Multi(nil)
	_ Notifier = Nop{}
)
