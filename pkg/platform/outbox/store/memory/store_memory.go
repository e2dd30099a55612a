package memory

import (
	"context"
	"sync"

	"registrar/pkg/platform/outbox"
)

// InMemoryStore keeps unpublished outbox entries in process. Used by the
// in-memory deployment and by tests. Published entries are dropped, so the
// store only grows while the relay is behind.
type InMemoryStore struct {
	// batchMu serializes relays so an entry is never published twice
	// concurrently. It is never held together with mu while publishing.
	batchMu sync.Mutex

	mu        sync.Mutex
	entries   []outbox.Entry
	published int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry outbox.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// ProcessBatch publishes the oldest entries without holding the append lock,
// so writers are never blocked behind the publisher.
func (s *InMemoryStore) ProcessBatch(ctx context.Context, limit int, fn func(ctx context.Context, entries []outbox.Entry) error) (int, error) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	s.mu.Lock()
	n := min(limit, len(s.entries))
	batch := append([]outbox.Entry(nil), s.entries[:n]...)
	s.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}
	if err := fn(ctx, batch); err != nil {
		return 0, err
	}

	// Appends only extend the tail and batchMu excludes other relays, so the
	// batch is still the head of entries.
	s.mu.Lock()
	s.entries = append([]outbox.Entry(nil), s.entries[n:]...)
	s.published += n
	s.mu.Unlock()
	return n, nil
}

// All returns a copy of the entries not yet published.
func (s *InMemoryStore) All() []outbox.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]outbox.Entry(nil), s.entries...)
}

// Pending counts unpublished entries.
func (s *InMemoryStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Published counts entries handed to the publisher successfully.
func (s *InMemoryStore) Published() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published
}
