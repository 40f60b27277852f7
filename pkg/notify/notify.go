// Package notify carries the user-facing notifications emitted by state changes
// and bulk runs. The HTTP layer returns them in responses; Notifiers fan them out.
package notify

import (
	"context"
	"sync"
	"time"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	SessionID   string    `json:"session_id,omitempty"`
	EmittedAt   time.Time `json:"emitted_at"`
}

func Info(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault}
}

func Destructive(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Multi delivers to every notifier and returns the first error after trying all of them.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var firstErr error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Pinger is implemented by notifiers backed by a remote connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping pings every member that implements Pinger.
func (m Multi) Ping(ctx context.Context) error {
	for _, notifier := range m {
		if p, ok := notifier.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Recorder keeps every notification in memory. Tests use it to assert on emissions.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(ctx context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, n)
	return nil
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
