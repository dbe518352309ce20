package settings

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Version is the opaque marker attached to a document at the instant it was
// last confirmed synchronized with the remote store. Writers compare
// versions strictly for equality, never for order: two tokens either match
// or the writer has gone stale. The zero Version means "never synchronized"
// and is treated as no-conflict on first save.
type Version struct {
	value string
}

// NewVersion mints a fresh token. The wall-clock prefix keeps tokens
// human-readable in logs and storage; the uuid suffix disambiguates writes
// that land within the same nanosecond tick.
func NewVersion() Version {
	return Version{
		value: fmt.Sprintf("%s/%s", time.Now().UTC().Format(time.RFC3339Nano), shortID()),
	}
}

// ParseVersion wraps a raw token string as read back from storage. An empty
// string yields the zero Version.
func ParseVersion(raw string) Version {
	return Version{value: raw}
}

// String returns the raw token, empty for the zero Version.
func (v Version) String() string {
	return v.value
}

// IsZero reports whether the token has never been assigned.
func (v Version) IsZero() bool {
	return v.value == ""
}

// Equal is the only comparison Versions support.
func (v Version) Equal(other Version) bool {
	return v.value == other.value
}

func shortID() string {
	id := uuid.New().String()
	return id[:8]
}
