package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/enrollment/models"
	"registrar/internal/enrollment/store"
	"registrar/internal/offering"
	"registrar/internal/student"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	outboxmemory "registrar/pkg/platform/outbox/store/memory"
	"registrar/pkg/testutil"
)

// admissionStack wires the service over the in-memory stores and sharded
// locks, the same way a single-binary deployment does.
type admissionStack struct {
	svc       *Service
	repo      *store.InMemory
	offerings *offering.InMemory
	students  *student.InMemory
	outbox    *outboxmemory.InMemoryStore
}

func newAdmissionStack(t *testing.T) *admissionStack {
	t.Helper()
	repo := store.NewInMemory()
	events := outboxmemory.NewInMemoryStore()
	offerings := offering.NewInMemory()
	students := student.NewInMemory()
	svc, err := New(repo, store.NewShardedTx(repo, events), students, offerings)
	require.NoError(t, err)
	return &admissionStack{svc: svc, repo: repo, offerings: offerings, students: students, outbox: events}
}

func (a *admissionStack) offering(t *testing.T, capacity int) id.OfferingID {
	t.Helper()
	o, err := offering.NewOffering(id.NewOfferingID(), "CS101", "2026-FALL", 3, capacity, "Dr. Ada")
	require.NoError(t, err)
	require.NoError(t, a.offerings.Put(context.Background(), o))
	return o.ID
}

func (a *admissionStack) student(name string) id.StudentID {
	studentID := id.NewStudentID()
	a.students.Add(studentID, name)
	return studentID
}

func (a *admissionStack) register(studentID id.StudentID, offeringID id.OfferingID) (id.EnrollmentID, error) {
	return a.svc.RegisterEnrollment(context.Background(), RegisterRequest{
		StudentID:  studentID,
		OfferingID: offeringID,
		Actor:      "registrar",
	})
}

func requireCode(t *testing.T, err error, code dErrors.Code, msg string) {
	t.Helper()
	require.Error(t, err)
	got, ok := dErrors.CodeOf(err)
	require.True(t, ok, "expected coded error, got %v", err)
	assert.Equal(t, code, got)
	assert.Equal(t, msg, dErrors.MessageOf(err))
}

func TestAdmission(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "an offering with 30 seats and no enrollments", func(t *testing.T) {
		stack := newAdmissionStack(t)
		offeringID := stack.offering(t, 30)
		studentID := stack.student("Grace Hopper")

		testutil.When(t, "the student registers", func(t *testing.T) {
			enrollmentID, err := stack.register(studentID, offeringID)
			require.NoError(t, err)

			testutil.Then(t, "the enrollment is Enrolled with one history entry", func(t *testing.T) {
				e, err := stack.svc.GetEnrollment(ctx, enrollmentID)
				require.NoError(t, err)
				assert.Equal(t, models.StatusEnrolled, e.Status())
				assert.Equal(t, 1, e.HistoryLen())
			})

			testutil.And(t, "one enrolled event waits in the outbox", func(t *testing.T) {
				entries := stack.outbox.All()
				require.Len(t, entries, 1)
				assert.Equal(t, EventEnrolled, entries[0].EventType)
				assert.Equal(t, enrollmentID.String(), entries[0].AggregateID)

				var payload EnrollmentEvent
				require.NoError(t, json.Unmarshal(entries[0].Payload, &payload))
				assert.Equal(t, "registrar", payload.ChangedBy)
			})

			testutil.Then(t, "registering again is rejected as a duplicate", func(t *testing.T) {
				_, err := stack.register(studentID, offeringID)
				requireCode(t, err, dErrors.CodeConflict, "already enrolled")
				assert.Len(t, stack.outbox.All(), 1)
			})
		})
	})

	testutil.Given(t, "an offering with one seat already taken", func(t *testing.T) {
		stack := newAdmissionStack(t)
		offeringID := stack.offering(t, 1)
		_, err := stack.register(stack.student("Alan Turing"), offeringID)
		require.NoError(t, err)

		testutil.When(t, "a second student registers", func(t *testing.T) {
			_, err := stack.register(stack.student("Ada Lovelace"), offeringID)

			testutil.Then(t, "the registration is rejected for capacity", func(t *testing.T) {
				requireCode(t, err, dErrors.CodeConflict, "capacity reached")
				count, err := stack.repo.CountActiveByOffering(ctx, offeringID)
				require.NoError(t, err)
				assert.Equal(t, 1, count)
			})
		})
	})

	testutil.Given(t, "a student whose enrollment was cancelled", func(t *testing.T) {
		stack := newAdmissionStack(t)
		offeringID := stack.offering(t, 1)
		studentID := stack.student("Grace Hopper")
		enrollmentID, err := stack.register(studentID, offeringID)
		require.NoError(t, err)
		require.NoError(t, stack.svc.CancelEnrollment(ctx, enrollmentID, "advisor", "schedule clash"))

		testutil.When(t, "the student registers again", func(t *testing.T) {
			secondID, err := stack.register(studentID, offeringID)

			testutil.Then(t, "the freed seat and pair are available", func(t *testing.T) {
				require.NoError(t, err)
				assert.NotEqual(t, enrollmentID, secondID)
			})
		})
	})

	testutil.Given(t, "a completed enrollment", func(t *testing.T) {
		stack := newAdmissionStack(t)
		offeringID := stack.offering(t, 5)
		studentID := stack.student("Grace Hopper")
		enrollmentID, err := stack.register(studentID, offeringID)
		require.NoError(t, err)
		require.NoError(t, stack.svc.CompleteEnrollment(ctx, enrollmentID, "system", "term end"))

		testutil.Then(t, "it still occupies the pair", func(t *testing.T) {
			_, err := stack.register(studentID, offeringID)
			requireCode(t, err, dErrors.CodeConflict, "already enrolled")
		})
	})
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("complete sets completedAt and appends history", func(t *testing.T) {
		stack := newAdmissionStack(t)
		enrollmentID, err := stack.register(stack.student("Grace Hopper"), stack.offering(t, 30))
		require.NoError(t, err)

		require.NoError(t, stack.svc.CompleteEnrollment(ctx, enrollmentID, "system", "term end"))

		e, err := stack.svc.GetEnrollment(ctx, enrollmentID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, e.Status())
		assert.NotNil(t, e.CompletedAt())
		history := e.History()
		require.Len(t, history, 2)
		assert.Equal(t, models.StatusCompleted, history[1].Status)
		assert.Equal(t, "term end", history[1].Reason)
		assert.Len(t, stack.outbox.All(), 2)
	})

	t.Run("cancel without a reason changes nothing", func(t *testing.T) {
		stack := newAdmissionStack(t)
		enrollmentID, err := stack.register(stack.student("Grace Hopper"), stack.offering(t, 30))
		require.NoError(t, err)

		err = stack.svc.CancelEnrollment(ctx, enrollmentID, "student", "")
		requireCode(t, err, dErrors.CodeValidation, "cancellation reason is required")

		e, err := stack.svc.GetEnrollment(ctx, enrollmentID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusEnrolled, e.Status())
		assert.Nil(t, e.CancelledAt())
		assert.Equal(t, 1, e.HistoryLen())
		assert.Len(t, stack.outbox.All(), 1)
	})

	t.Run("terminal states cannot be left", func(t *testing.T) {
		stack := newAdmissionStack(t)
		enrollmentID, err := stack.register(stack.student("Grace Hopper"), stack.offering(t, 30))
		require.NoError(t, err)
		require.NoError(t, stack.svc.CancelEnrollment(ctx, enrollmentID, "advisor", "dropped"))

		err = stack.svc.CompleteEnrollment(ctx, enrollmentID, "system", "")
		requireCode(t, err, dErrors.CodeInvalidState, "cancelled enrollments cannot be completed")
		err = stack.svc.CancelEnrollment(ctx, enrollmentID, "advisor", "again")
		requireCode(t, err, dErrors.CodeInvalidState, "already cancelled")

		history, err := stack.svc.GetHistory(ctx, enrollmentID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("unknown enrollment is not found", func(t *testing.T) {
		stack := newAdmissionStack(t)
		err := stack.svc.CompleteEnrollment(ctx, id.NewEnrollmentID(), "system", "")
		requireCode(t, err, dErrors.CodeNotFound, "enrollment not found")
	})

	t.Run("listing filters by status most recent first", func(t *testing.T) {
		stack := newAdmissionStack(t)
		studentID := stack.student("Grace Hopper")
		first, err := stack.register(studentID, stack.offering(t, 30))
		require.NoError(t, err)
		second, err := stack.register(studentID, stack.offering(t, 30))
		require.NoError(t, err)
		require.NoError(t, stack.svc.CompleteEnrollment(ctx, first, "system", "term end"))

		all, err := stack.svc.ListEnrollmentsForStudent(ctx, studentID, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Grace Hopper", all[0].StudentName)
		assert.Equal(t, "CS101", all[0].CourseCode)
		assert.Equal(t, "Dr. Ada", all[0].Instructor)

		completed := models.StatusCompleted
		filtered, err := stack.svc.ListEnrollmentsForStudent(ctx, studentID, &completed)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, first, filtered[0].ID)

		enrolled := models.StatusEnrolled
		filtered, err = stack.svc.ListEnrollmentsForStudent(ctx, studentID, &enrolled)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, second, filtered[0].ID)
	})
}

func TestEventCarriesRequestMetadata(t *testing.T) {
	stack := newAdmissionStack(t)
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	ctx := testutil.RequestContext("req-123", now)

	enrollmentID, err := stack.svc.RegisterEnrollment(ctx, RegisterRequest{
		StudentID:  stack.student("Grace Hopper"),
		OfferingID: stack.offering(t, 30),
		Actor:      "registrar",
	})
	require.NoError(t, err)

	e, err := stack.svc.GetEnrollment(ctx, enrollmentID)
	require.NoError(t, err)
	assert.True(t, e.EnrolledAt().Equal(now))

	entries := stack.outbox.All()
	require.Len(t, entries, 1)
	var payload EnrollmentEvent
	require.NoError(t, json.Unmarshal(entries[0].Payload, &payload))
	assert.Equal(t, "req-123", payload.RequestID)
	assert.True(t, payload.ChangedAt.Equal(now))
}

func TestAdmissionConcurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("distinct students racing for ten seats", func(t *testing.T) {
		stack := newAdmissionStack(t)
		offeringID := stack.offering(t, 10)
		const callers = 50
		studentIDs := make([]id.StudentID, callers)
		for i := range studentIDs {
			studentIDs[i] = stack.student(fmt.Sprintf("student-%02d", i))
		}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			admitted  int
			conflicts int
			other     []error
		)
		start := make(chan struct{})
		for _, studentID := range studentIDs {
			wg.Add(1)
			go func(studentID id.StudentID) {
				defer wg.Done()
				<-start
				_, err := stack.register(studentID, offeringID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					admitted++
				case dErrors.HasCode(err, dErrors.CodeConflict):
					conflicts++
				default:
					other = append(other, err)
				}
			}(studentID)
		}
		close(start)
		wg.Wait()

		require.Empty(t, other)
		assert.Equal(t, 10, admitted)
		assert.Equal(t, 40, conflicts)
		count, err := stack.repo.CountActiveByOffering(ctx, offeringID)
		require.NoError(t, err)
		assert.Equal(t, 10, count)
	})

	t.Run("one student racing with itself is admitted once", func(t *testing.T) {
		stack := newAdmissionStack(t)
		offeringID := stack.offering(t, 30)
		studentID := stack.student("Grace Hopper")

		var wg sync.WaitGroup
		errs := make([]error, 20)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = stack.register(studentID, offeringID)
			}(i)
		}
		wg.Wait()

		admitted := 0
		for _, err := range errs {
			if err == nil {
				admitted++
				continue
			}
			requireCode(t, err, dErrors.CodeConflict, "already enrolled")
		}
		assert.Equal(t, 1, admitted)
	})

	t.Run("racing complete and cancel has exactly one winner", func(t *testing.T) {
		stack := newAdmissionStack(t)
		enrollmentID, err := stack.register(stack.student("Grace Hopper"), stack.offering(t, 30))
		require.NoError(t, err)

		var wg sync.WaitGroup
		var completeErr, cancelErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			completeErr = stack.svc.CompleteEnrollment(ctx, enrollmentID, "system", "term end")
		}()
		go func() {
			defer wg.Done()
			cancelErr = stack.svc.CancelEnrollment(ctx, enrollmentID, "advisor", "dropped")
		}()
		wg.Wait()

		require.True(t, (completeErr == nil) != (cancelErr == nil), "complete=%v cancel=%v", completeErr, cancelErr)
		loser := completeErr
		if loser == nil {
			loser = cancelErr
		}
		assert.True(t, dErrors.HasCode(loser, dErrors.CodeInvalidState))

		history, err := stack.svc.GetHistory(ctx, enrollmentID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("cancelled context commits nothing", func(t *testing.T) {
		stack := newAdmissionStack(t)
		offeringID := stack.offering(t, 30)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := stack.svc.RegisterEnrollment(cctx, RegisterRequest{
			StudentID:  stack.student("Grace Hopper"),
			OfferingID: offeringID,
			Actor:      "registrar",
		})
		require.Error(t, err)
		count, err := stack.repo.CountActiveByOffering(ctx, offeringID)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, stack.outbox.All())
	})
}
