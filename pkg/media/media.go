// Package media hands out short-lived leases over in-memory payloads so
// viewers can reference audio/video/image bytes by URL instead of inlining
// them. A lease is the scoped-resource counterpart of a browser object
// URL: acquired when content is ready, released on every exit path
// (content change, error, session teardown), never left to garbage
// collection.
package media

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an unreleased lease survives before the sweeper
// reclaims it.
const DefaultTTL = 15 * time.Minute

// ErrLeaseNotFound is returned for expired, released, or unknown leases.
var ErrLeaseNotFound = errors.New("media: lease not found")

// Lease is a handle over one payload.
type Lease struct {
	ID          string
	ContentType string
	expires     time.Time
}

type leaseEntry struct {
	lease Lease
	data  []byte
}

// Store owns all live leases.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	leases map[string]leaseEntry
}

// NewStore creates a lease store with the given TTL (DefaultTTL if zero).
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:    ttl,
		now:    time.Now,
		leases: map[string]leaseEntry{},
	}
}

// Acquire registers a payload and returns its lease.
func (s *Store) Acquire(data []byte, contentType string) Lease {
	lease := Lease{
		ID:          uuid.NewString(),
		ContentType: contentType,
		expires:     s.now().Add(s.ttl),
	}
	s.mu.Lock()
	s.leases[lease.ID] = leaseEntry{lease: lease, data: data}
	s.mu.Unlock()
	return lease
}

// Open returns the payload for a live lease.
func (s *Store) Open(id string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.leases[id]
	if !ok || s.now().After(e.lease.expires) {
		delete(s.leases, id)
		return nil, "", ErrLeaseNotFound
	}
	return e.data, e.lease.ContentType, nil
}

// Release revokes one lease.
func (s *Store) Release(id string) {
	s.mu.Lock()
	delete(s.leases, id)
	s.mu.Unlock()
}

// ReleaseAll revokes every lease, used at session teardown.
func (s *Store) ReleaseAll() {
	s.mu.Lock()
	s.leases = map[string]leaseEntry{}
	s.mu.Unlock()
}

// Sweep drops expired leases and reports how many were reclaimed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	cutoff := s.now()
	for id, e := range s.leases {
		if cutoff.After(e.lease.expires) {
			delete(s.leases, id)
			n++
		}
	}
	return n
}

// Len reports the number of live leases.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leases)
}
