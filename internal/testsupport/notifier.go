package testsupport

import (
	"context"
	"sync"

	"podopt/internal/notifications"
)

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	errors []error
}

func (r *RecordingNotifier) NotifyStatusChanged(_ context.Context, event notifications.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *RecordingNotifier) NotifyError(_ context.Context, err error, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	return nil
}

func (r *RecordingNotifier) TestNotification(context.Context) error { return nil }

// Events returns a copy of the recorded status events.
func (r *RecordingNotifier) Events() []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Event(nil), r.events...)
}

// Errors returns a copy of the recorded error notifications.
func (r *RecordingNotifier) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}
