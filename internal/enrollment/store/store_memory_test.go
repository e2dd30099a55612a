package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/outbox"
	outboxmem "registrar/pkg/platform/outbox/store/memory"
	"registrar/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store  *InMemory
	events *outboxmem.InMemoryStore
	tx     *ShardedTx
	ctx    context.Context
	now    time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.events = outboxmem.NewInMemoryStore()
	s.tx = NewShardedTx(s.store, s.events)
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newEnrollment(studentID id.StudentID, offeringID id.OfferingID) *models.Enrollment {
	e, err := models.NewEnrollment(studentID, offeringID, "registrar", "", s.now)
	s.Require().NoError(err)
	return e
}

func (s *InMemoryStoreSuite) TestInsertAndFind() {
	e := s.newEnrollment(id.NewStudentID(), id.NewOfferingID())
	s.Require().NoError(s.store.Insert(s.ctx, e))
	s.Empty(e.PendingHistory())

	found, err := s.store.FindByID(s.ctx, e.ID())
	s.Require().NoError(err)
	s.Equal(e.ID(), found.ID())
	s.Equal(models.StatusEnrolled, found.Status())
	s.Equal(1, found.HistoryLen())

	_, err = s.store.FindByID(s.ctx, id.NewEnrollmentID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestPairUniqueness() {
	sid, oid := id.NewStudentID(), id.NewOfferingID()
	first := s.newEnrollment(sid, oid)
	s.Require().NoError(s.store.Insert(s.ctx, first))

	s.Run("rejects a second active enrollment for the pair", func() {
		err := s.store.Insert(s.ctx, s.newEnrollment(sid, oid))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("allows re-registration after cancel", func() {
		s.Require().NoError(first.Cancel("S", "dropped", s.now))
		s.Require().NoError(s.store.Update(s.ctx, first))

		s.Require().NoError(s.store.Insert(s.ctx, s.newEnrollment(sid, oid)))
	})

	s.Run("a completed enrollment still blocks the pair", func() {
		sid2 := id.NewStudentID()
		done := s.newEnrollment(sid2, oid)
		s.Require().NoError(s.store.Insert(s.ctx, done))
		s.Require().NoError(done.Complete("system", "", s.now))
		s.Require().NoError(s.store.Update(s.ctx, done))

		err := s.store.Insert(s.ctx, s.newEnrollment(sid2, oid))
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *InMemoryStoreSuite) TestUpdateAppendsHistory() {
	e := s.newEnrollment(id.NewStudentID(), id.NewOfferingID())
	s.Require().NoError(s.store.Insert(s.ctx, e))

	loaded, err := s.store.FindByID(s.ctx, e.ID())
	s.Require().NoError(err)
	s.Require().NoError(loaded.Complete("system", "term end", s.now.Add(time.Hour)))
	s.Require().NoError(s.store.Update(s.ctx, loaded))

	again, err := s.store.FindByID(s.ctx, e.ID())
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, again.Status())
	s.Equal(2, again.HistoryLen())

	s.Run("stale aggregate is rejected", func() {
		stale, err := models.Rehydrate(e.Snapshot(), e.History())
		s.Require().NoError(err)
		s.Require().NoError(stale.Cancel("S", "late", s.now))
		s.ErrorIs(s.store.Update(s.ctx, stale), sentinel.ErrInvalidState)
	})

	s.Run("unknown enrollment", func() {
		ghost := s.newEnrollment(id.NewStudentID(), id.NewOfferingID())
		s.ErrorIs(s.store.Update(s.ctx, ghost), sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestCountsAndListing() {
	sid, oid := id.NewStudentID(), id.NewOfferingID()
	older := s.newEnrollment(sid, oid)
	s.Require().NoError(s.store.Insert(s.ctx, older))
	s.Require().NoError(older.Cancel("S", "moved", s.now))
	s.Require().NoError(s.store.Update(s.ctx, older))

	newer, err := models.NewEnrollment(sid, id.NewOfferingID(), "registrar", "", s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Insert(s.ctx, newer))
	s.Require().NoError(s.store.Insert(s.ctx, s.newEnrollment(id.NewStudentID(), oid)))

	n, err := s.store.CountActiveByOffering(s.ctx, oid)
	s.Require().NoError(err)
	s.Equal(1, n)

	has, err := s.store.HasActiveForPair(s.ctx, sid, oid)
	s.Require().NoError(err)
	s.False(has)

	all, err := s.store.ListByStudent(s.ctx, sid, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(newer.ID(), all[0].ID())
	s.Equal(older.ID(), all[1].ID())

	cancelled, err := s.store.ListByStudent(s.ctx, sid, []models.Status{models.StatusCancelled})
	s.Require().NoError(err)
	s.Require().Len(cancelled, 1)
	s.Equal(older.ID(), cancelled[0].ID())
}

func (s *InMemoryStoreSuite) TestUnitOfWorkIsAllOrNothing() {
	oid := id.NewOfferingID()

	s.Run("callback error discards staged writes", func() {
		e := s.newEnrollment(id.NewStudentID(), oid)
		boom := errors.New("boom")
		err := s.tx.RunInOfferingTx(s.ctx, oid, func(ctx context.Context, stores Stores) error {
			s.Require().NoError(stores.Enrollments.Insert(ctx, e))
			s.Require().NoError(stores.Events.Append(ctx, outbox.NewEntry("enrollment", e.ID().String(), "enrollment.enrolled", nil, s.now)))

			n, err := stores.Enrollments.CountActiveByOffering(ctx, oid)
			s.Require().NoError(err)
			s.Equal(1, n)
			return boom
		})
		s.ErrorIs(err, boom)

		_, err = s.store.FindByID(s.ctx, e.ID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Empty(s.events.All())
	})

	s.Run("cancelled context discards staged writes", func() {
		e := s.newEnrollment(id.NewStudentID(), oid)
		ctx, cancel := context.WithCancel(s.ctx)
		err := s.tx.RunInOfferingTx(ctx, oid, func(ctx context.Context, stores Stores) error {
			s.Require().NoError(stores.Enrollments.Insert(ctx, e))
			cancel()
			return nil
		})
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

		_, err = s.store.FindByID(s.ctx, e.ID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("success commits enrollment and event together", func() {
		e := s.newEnrollment(id.NewStudentID(), oid)
		err := s.tx.RunInOfferingTx(s.ctx, oid, func(ctx context.Context, stores Stores) error {
			if err := stores.Enrollments.Insert(ctx, e); err != nil {
				return err
			}
			return stores.Events.Append(ctx, outbox.NewEntry("enrollment", e.ID().String(), "enrollment.enrolled", nil, s.now))
		})
		s.Require().NoError(err)

		_, err = s.store.FindByID(s.ctx, e.ID())
		s.NoError(err)
		s.Len(s.events.All(), 1)
	})
}

func (s *InMemoryStoreSuite) TestOfferingTxSerializesCountAndInsert() {
	oid := id.NewOfferingID()
	const capacity, callers = 5, 40

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := s.newEnrollment(id.NewStudentID(), oid)
			err := s.tx.RunInOfferingTx(s.ctx, oid, func(ctx context.Context, stores Stores) error {
				n, err := stores.Enrollments.CountActiveByOffering(ctx, oid)
				if err != nil {
					return err
				}
				if n >= capacity {
					return sentinel.ErrConflict
				}
				return stores.Enrollments.Insert(ctx, e)
			})
			if err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(capacity), admitted.Load())
	n, err := s.store.CountActiveByOffering(s.ctx, oid)
	s.Require().NoError(err)
	s.Equal(capacity, n)
}

func TestShardFor(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		shard := shardFor(id.NewOfferingID().String())
		if shard < 0 || shard >= numShards {
			t.Fatalf("shard %d out of range", shard)
		}
		seen[shard] = true
	}
	if len(seen) < numShards/2 {
		t.Fatalf("poor shard distribution: %d of %d used", len(seen), numShards)
	}
}
