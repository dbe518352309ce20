// Package natssink publishes configuration change events to a NATS subject
// so other running clients can react or invalidate without polling the
// remote store.
package natssink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/goliatone/go-settings/pkg/event"
)

// Publisher is the slice of the NATS client the hook needs. *nats.Conn
// satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Hook publishes change events as JSON to Subject, suffixed with the event
// verb (e.g. "settings.changed.published").
type Hook struct {
	Conn    Publisher
	Subject string
}

// New constructs a Hook over an established NATS connection.
func New(conn *nats.Conn, subject string) Hook {
	return Hook{Conn: conn, Subject: subject}
}

// Notify implements event.Hook.
func (h Hook) Notify(ctx context.Context, ev event.Event) error {
	if h.Conn == nil {
		return nil
	}
	normalized := event.NormalizeEvent(ev)
	if normalized.Verb == "" || normalized.Key == "" {
		return nil
	}

	payload, err := json.Marshal(wireEvent{
		Verb:       normalized.Verb,
		Key:        normalized.Key,
		Source:     normalized.Source,
		Sections:   normalized.Sections,
		Document:   normalized.Document,
		Version:    normalized.Version,
		OccurredAt: normalized.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("natssink: marshal event: %w", err)
	}

	if err := h.Conn.Publish(h.subject(normalized.Verb), payload); err != nil {
		return fmt.Errorf("natssink: publish: %w", err)
	}
	return nil
}

func (h Hook) subject(verb string) string {
	base := strings.TrimSpace(h.Subject)
	if base == "" {
		base = "settings.changed"
	}
	if verb == "" {
		return base
	}
	return base + "." + verb
}

type wireEvent struct {
	Verb       string                    `json:"verb"`
	Key        string                    `json:"key"`
	Source     string                    `json:"source,omitempty"`
	Sections   []string                  `json:"sections,omitempty"`
	Document   map[string]map[string]any `json:"document,omitempty"`
	Version    string                    `json:"version,omitempty"`
	OccurredAt string                    `json:"occurred_at"`
}
