// Package session keeps track of revoked session tokens.
//
// A token is identified by its jti claim. Revocations expire together with the
// token itself, so the denylist never grows beyond the set of live sessions.
package session

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked session token IDs.
type Denylist interface {
	// Revoke marks the token as revoked until the given expiry.
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	// IsRevoked reports whether the token has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryDenylist is an in-process Denylist used when no Redis is configured.
type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an empty MemoryDenylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke implements Denylist.
func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.revoked[tokenID] = until
	d.sweep()
	return nil
}

// IsRevoked implements Denylist.
func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if d.now().After(until) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries. Callers hold d.mu.
func (d *MemoryDenylist) sweep() {
	now := d.now()
	for id, until := range d.revoked {
		if now.After(until) {
			delete(d.revoked, id)
		}
	}
}
