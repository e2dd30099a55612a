package store

import (
	"context"
	"sync"
	"time"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/outbox"
)

// numShards spreads offering and enrollment locks over a fixed set of mutexes
// so unrelated offerings rarely contend.
const numShards = 128

// defaultTxTimeout bounds a unit of work whose context has no deadline.
const defaultTxTimeout = 5 * time.Second

// ShardedTx is the in-memory unit of work. An offering-scoped unit holds the
// offering's shard for its whole duration, which makes count-then-insert
// atomic against every other admission into that offering. Writes are staged
// and applied only when the callback returns nil and ctx is still live.
type ShardedTx struct {
	offeringShards   [numShards]sync.Mutex
	enrollmentShards [numShards]sync.Mutex
	store            *InMemory
	events           outbox.Writer
	timeout          time.Duration
}

// NewShardedTx wraps an in-memory store. events receives outbox entries on
// commit; it may be nil when nothing consumes them.
func NewShardedTx(store *InMemory, events outbox.Writer) *ShardedTx {
	return &ShardedTx{store: store, events: events, timeout: defaultTxTimeout}
}

func (t *ShardedTx) RunInOfferingTx(ctx context.Context, offeringID id.OfferingID, fn func(ctx context.Context, stores Stores) error) error {
	return t.run(ctx, &t.offeringShards[shardFor(offeringID.String())], fn)
}

func (t *ShardedTx) RunInEnrollmentTx(ctx context.Context, enrollmentID id.EnrollmentID, fn func(ctx context.Context, stores Stores) error) error {
	return t.run(ctx, &t.enrollmentShards[shardFor(enrollmentID.String())], fn)
}

func (t *ShardedTx) run(ctx context.Context, lock *sync.Mutex, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	st := newStaged(t.store)
	events := &stagedEvents{}
	if err := fn(ctx, Stores{Enrollments: st, Events: events}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted before commit")
	}
	if err := t.store.commit(st); err != nil {
		return err
	}
	if t.events != nil {
		for _, e := range events.entries {
			if err := t.events.Append(ctx, e); err != nil {
				return err
			}
		}
	}
	return nil
}

type stagedEvents struct {
	entries []outbox.Entry
}

func (s *stagedEvents) Append(_ context.Context, entry outbox.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

// shardFor uses FNV-1a for better distribution than simple multiply-add.
func shardFor(key string) int {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= fnvPrime
	}
	return int(h % numShards)
}
