package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

type record struct {
	snap    models.Snapshot
	history []models.HistoryEntry
}

func (r record) active() bool { return r.snap.Status != models.StatusCancelled }

func (r record) toAggregate() (*models.Enrollment, error) {
	return models.Rehydrate(r.snap, r.history)
}

// InMemory stores enrollments in process. Writes made through a unit of work
// are staged and applied here in one step on commit.
type InMemory struct {
	mu          sync.RWMutex
	enrollments map[id.EnrollmentID]record
}

func NewInMemory() *InMemory {
	return &InMemory{enrollments: make(map[id.EnrollmentID]record)}
}

func (s *InMemory) Insert(ctx context.Context, e *models.Enrollment) error {
	st := newStaged(s)
	if err := st.Insert(ctx, e); err != nil {
		return err
	}
	return s.commit(st)
}

func (s *InMemory) Update(ctx context.Context, e *models.Enrollment) error {
	st := newStaged(s)
	if err := st.Update(ctx, e); err != nil {
		return err
	}
	return s.commit(st)
}

func (s *InMemory) FindByID(_ context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error) {
	s.mu.RLock()
	r, ok := s.enrollments[enrollmentID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.toAggregate()
}

func (s *InMemory) CountActiveByOffering(_ context.Context, offeringID id.OfferingID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.enrollments {
		if r.snap.OfferingID == offeringID && r.active() {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) HasActiveForPair(_ context.Context, studentID id.StudentID, offeringID id.OfferingID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasActivePairLocked(studentID, offeringID, nil), nil
}

func (s *InMemory) ListByStudent(_ context.Context, studentID id.StudentID, statuses []models.Status) ([]*models.Enrollment, error) {
	s.mu.RLock()
	var matched []record
	for _, r := range s.enrollments {
		if r.snap.StudentID == studentID && matchesStatus(r.snap.Status, statuses) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()
	return toSortedAggregates(matched)
}

func (s *InMemory) hasActivePairLocked(studentID id.StudentID, offeringID id.OfferingID, skip map[id.EnrollmentID]record) bool {
	for eid, r := range s.enrollments {
		if _, overridden := skip[eid]; overridden {
			continue
		}
		if r.snap.StudentID == studentID && r.snap.OfferingID == offeringID && r.active() {
			return true
		}
	}
	return false
}

// commit validates every staged write against current state, then applies
// all of them. Either every write lands or none does.
func (s *InMemory) commit(st *staged) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, eid := range st.order {
		next := st.overlay[eid]
		current, exists := s.enrollments[eid]
		if st.inserted[eid] {
			if exists {
				return fmt.Errorf("insert enrollment %s: %w", eid, sentinel.ErrConflict)
			}
			if next.active() && s.hasActivePairLocked(next.snap.StudentID, next.snap.OfferingID, st.overlay) {
				return fmt.Errorf("insert enrollment: %w", sentinel.ErrConflict)
			}
			continue
		}
		if !exists {
			return fmt.Errorf("update enrollment %s: %w", eid, sentinel.ErrNotFound)
		}
		if len(current.history) != st.baseLen[eid] {
			return fmt.Errorf("update enrollment %s: %w", eid, sentinel.ErrInvalidState)
		}
	}
	for _, eid := range st.order {
		s.enrollments[eid] = st.overlay[eid]
	}
	return nil
}

// staged is the write set of one unit of work. Reads merge the overlay over
// the committed map.
type staged struct {
	base     *InMemory
	overlay  map[id.EnrollmentID]record
	inserted map[id.EnrollmentID]bool
	baseLen  map[id.EnrollmentID]int
	order    []id.EnrollmentID
}

func newStaged(base *InMemory) *staged {
	return &staged{
		base:     base,
		overlay:  make(map[id.EnrollmentID]record),
		inserted: make(map[id.EnrollmentID]bool),
		baseLen:  make(map[id.EnrollmentID]int),
	}
}

func (st *staged) lookup(eid id.EnrollmentID) (record, bool) {
	if r, ok := st.overlay[eid]; ok {
		return r, true
	}
	st.base.mu.RLock()
	defer st.base.mu.RUnlock()
	r, ok := st.base.enrollments[eid]
	return r, ok
}

func (st *staged) put(r record) {
	if _, seen := st.overlay[r.snap.ID]; !seen {
		st.order = append(st.order, r.snap.ID)
	}
	st.overlay[r.snap.ID] = r
}

func (st *staged) Insert(ctx context.Context, e *models.Enrollment) error {
	if _, exists := st.lookup(e.ID()); exists {
		return fmt.Errorf("insert enrollment %s: %w", e.ID(), sentinel.ErrConflict)
	}
	if e.IsActive() {
		active, err := st.HasActiveForPair(ctx, e.StudentID(), e.OfferingID())
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("insert enrollment: %w", sentinel.ErrConflict)
		}
	}
	st.put(record{snap: e.Snapshot(), history: e.History()})
	st.inserted[e.ID()] = true
	e.MarkPersisted()
	return nil
}

func (st *staged) Update(_ context.Context, e *models.Enrollment) error {
	current, ok := st.lookup(e.ID())
	if !ok {
		return fmt.Errorf("update enrollment %s: %w", e.ID(), sentinel.ErrNotFound)
	}
	pending := e.PendingHistory()
	if len(current.history)+len(pending) != e.HistoryLen() {
		return fmt.Errorf("update enrollment %s: %w", e.ID(), sentinel.ErrInvalidState)
	}
	if _, tracked := st.baseLen[e.ID()]; !tracked && !st.inserted[e.ID()] {
		st.baseLen[e.ID()] = len(current.history)
	}
	history := append(slices.Clone(current.history), pending...)
	st.put(record{snap: e.Snapshot(), history: history})
	e.MarkPersisted()
	return nil
}

func (st *staged) FindByID(_ context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error) {
	r, ok := st.lookup(enrollmentID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.toAggregate()
}

func (st *staged) merged(keep func(record) bool) []record {
	st.base.mu.RLock()
	defer st.base.mu.RUnlock()
	var out []record
	for eid, r := range st.base.enrollments {
		if _, overridden := st.overlay[eid]; overridden {
			continue
		}
		if keep(r) {
			out = append(out, r)
		}
	}
	for _, r := range st.overlay {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (st *staged) CountActiveByOffering(_ context.Context, offeringID id.OfferingID) (int, error) {
	return len(st.merged(func(r record) bool {
		return r.snap.OfferingID == offeringID && r.active()
	})), nil
}

func (st *staged) HasActiveForPair(_ context.Context, studentID id.StudentID, offeringID id.OfferingID) (bool, error) {
	return len(st.merged(func(r record) bool {
		return r.snap.StudentID == studentID && r.snap.OfferingID == offeringID && r.active()
	})) > 0, nil
}

func (st *staged) ListByStudent(_ context.Context, studentID id.StudentID, statuses []models.Status) ([]*models.Enrollment, error) {
	return toSortedAggregates(st.merged(func(r record) bool {
		return r.snap.StudentID == studentID && matchesStatus(r.snap.Status, statuses)
	}))
}

func matchesStatus(s models.Status, statuses []models.Status) bool {
	return len(statuses) == 0 || slices.Contains(statuses, s)
}

func toSortedAggregates(records []record) ([]*models.Enrollment, error) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].snap.EnrolledAt.Equal(records[j].snap.EnrolledAt) {
			return records[i].snap.EnrolledAt.After(records[j].snap.EnrolledAt)
		}
		return records[i].snap.ID.String() < records[j].snap.ID.String()
	})
	out := make([]*models.Enrollment, 0, len(records))
	for _, r := range records {
		e, err := r.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
