package notify

import "sync"

// Recorder remembers every request it receives. It is used by tests of
// components that emit notifications.
type Recorder struct {
	mu        sync.Mutex
	completed []string
	cancelled []string
}

func (r *Recorder) NotifyCompleted(id, _ string) {
	r.mu.Lock()
	r.completed = append(r.completed, id)
	r.mu.Unlock()
}

func (r *Recorder) CancelNotification(id string) {
	r.mu.Lock()
	r.cancelled = append(r.cancelled, id)
	r.mu.Unlock()
}

// Completed returns the ids passed to NotifyCompleted, in call order.
func (r *Recorder) Completed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.completed...)
}

// Cancelled returns the ids passed to CancelNotification, in call order.
func (r *Recorder) Cancelled() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cancelled...)
}
