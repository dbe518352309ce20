// Package event fans out configuration change events to registered hooks
// so independent parts of a running application can react to persisted
// writes without re-querying the store.
package event

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event describes one successful persisted write. Document is the full
// updated configuration keyed by section name; Version is the token the
// write was stamped with. Source tags the emitting client so cross-client
// consumers can ignore their own writes.
type Event struct {
	Verb       string
	Key        string
	Source     string
	Sections   []string
	Document   map[string]map[string]any
	Version    string
	OccurredAt time.Time
}

// Hook receives normalized change events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []Hook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify forwards the event to all hooks, returning a joined error if any
// fail. It normalizes the event and short-circuits when the verb or key is
// missing.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.Key == "" {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, detaches the sections slice, and
// ensures a timestamp is present. The document itself is not copied: the
// store hands hooks an already-detached clone.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.Key = strings.TrimSpace(event.Key)
	normalized.Source = strings.TrimSpace(event.Source)
	if len(event.Sections) > 0 {
		normalized.Sections = append([]string{}, event.Sections...)
	} else {
		normalized.Sections = nil
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}
