package settings

import (
	"context"
	"fmt"
)

// Guard arbitrates concurrent writers through compare-and-swap on the
// version token: a persisted write is permitted only while the writer's
// last-known token still matches the remote's current one.
type Guard struct {
	remote RemoteStore
	key    string
}

// NewGuard constructs a guard over the remote row identified by key.
func NewGuard(remote RemoteStore, key string) *Guard {
	return &Guard{remote: remote, key: key}
}

// FetchRemoteVersion reads only the remote's current token.
func (g *Guard) FetchRemoteVersion(ctx context.Context) (Version, bool, error) {
	v, ok, err := g.remote.FetchVersion(ctx, g.key)
	if err != nil {
		return Version{}, false, &TransportError{Op: "fetch version", Err: err}
	}
	return v, ok, nil
}

// CheckAndAdvance must be called immediately before a persisted write. On a
// token match (or when no remote token exists yet, i.e. first-ever save) it
// mints and returns the token the write should be stamped with. On mismatch
// it returns ErrConflict and the caller must not write.
func (g *Guard) CheckAndAdvance(ctx context.Context, expected Version) (Version, error) {
	current, ok, err := g.FetchRemoteVersion(ctx)
	if err != nil {
		return Version{}, err
	}
	if ok && !current.Equal(expected) {
		return Version{}, fmt.Errorf("%w: have %q, remote is %q", ErrConflict, expected.String(), current.String())
	}
	return NewVersion(), nil
}
