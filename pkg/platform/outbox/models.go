// Package outbox implements the transactional outbox: domain events are written
// to an outbox table in the same transaction as the state change they describe,
// and a relay publishes them to the broker afterwards. A state change therefore
// never commits without its event, and an event is never published for a state
// change that rolled back.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one pending or published event.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// Writer appends entries inside the caller's unit of work.
type Writer interface {
	Append(ctx context.Context, entry Entry) error
}

// Source hands unpublished entries to fn in creation order and marks them
// published only when fn returns nil. Returns the number of entries published.
type Source interface {
	ProcessBatch(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) error) (int, error)
}

// Publisher delivers entries to the broker. Delivery is at-least-once: a crash
// between publish and mark re-publishes the batch, so consumers dedupe on Entry.ID.
type Publisher interface {
	Publish(ctx context.Context, entries []Entry) error
}

// NewEntry stamps a fresh id and creation time.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, now time.Time) Entry {
	return Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}
