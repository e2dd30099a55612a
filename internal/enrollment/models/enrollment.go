package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// Enrollment is the aggregate root for one student's seat in one offering.
// It is the only writer of its own status and history.
//
// Invariants:
//   - Status moves Enrolled -> Completed or Enrolled -> Cancelled, never back
//   - every successful transition appends exactly one history entry
//   - CompletedAt is set iff Status is Completed; CancelledAt iff Cancelled
//   - a cancellation always carries a non-empty reason
//
// Transitions on one instance are not goroutine-safe. Concurrent callers are
// serialized by the store's per-enrollment transaction.
type Enrollment struct {
	id          id.EnrollmentID
	studentID   id.StudentID
	offeringID  id.OfferingID
	status      Status
	enrolledAt  time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	history     History
}

type initialMetadata struct {
	InitialNote string `json:"initial_note"`
}

// NewEnrollment builds an Enrolled aggregate seeded with its first history
// entry. A non-blank note is kept as entry metadata.
func NewEnrollment(studentID id.StudentID, offeringID id.OfferingID, actor, note string, now time.Time) (*Enrollment, error) {
	if studentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "student id is required")
	}
	if offeringID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "offering id is required")
	}
	actor, err := normalizeActor(actor)
	if err != nil {
		return nil, err
	}

	var metadata json.RawMessage
	if note = strings.TrimSpace(note); note != "" {
		metadata, err = json.Marshal(initialMetadata{InitialNote: note})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode enrollment metadata")
		}
	}

	now = now.UTC()
	e := &Enrollment{
		id:         id.NewEnrollmentID(),
		studentID:  studentID,
		offeringID: offeringID,
		status:     StatusEnrolled,
		enrolledAt: now,
	}
	e.history.append(HistoryEntry{
		EnrollmentID: e.id,
		Status:       StatusEnrolled,
		ChangedAt:    now,
		ChangedBy:    actor,
		Reason:       InitialEnrollmentReason,
		Metadata:     metadata,
	})
	return e, nil
}

// Complete moves an Enrolled enrollment to Completed. Reason is optional.
func (e *Enrollment) Complete(actor, reason string, now time.Time) error {
	actor, err := normalizeActor(actor)
	if err != nil {
		return err
	}
	reason, err = normalizeReason(reason)
	if err != nil {
		return err
	}
	switch e.status {
	case StatusCancelled:
		return dErrors.New(dErrors.CodeInvalidState, "cancelled enrollments cannot be completed")
	case StatusCompleted:
		return dErrors.New(dErrors.CodeInvalidState, "already completed")
	}

	entry := e.transition(StatusCompleted, actor, reason, now)
	e.completedAt = &entry.ChangedAt
	return nil
}

// Cancel moves an Enrolled enrollment to Cancelled. Reason is required.
func (e *Enrollment) Cancel(actor, reason string, now time.Time) error {
	actor, err := normalizeActor(actor)
	if err != nil {
		return err
	}
	reason, err = normalizeReason(reason)
	if err != nil {
		return err
	}
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "cancellation reason is required")
	}
	switch e.status {
	case StatusCompleted:
		return dErrors.New(dErrors.CodeInvalidState, "completed enrollments cannot be cancelled")
	case StatusCancelled:
		return dErrors.New(dErrors.CodeInvalidState, "already cancelled")
	}

	entry := e.transition(StatusCancelled, actor, reason, now)
	e.cancelledAt = &entry.ChangedAt
	return nil
}

func (e *Enrollment) transition(next Status, actor, reason string, now time.Time) HistoryEntry {
	e.status = next
	return e.history.append(HistoryEntry{
		EnrollmentID: e.id,
		Status:       next,
		ChangedAt:    now.UTC(),
		ChangedBy:    actor,
		Reason:       reason,
	})
}

// IsActive reports whether the enrollment holds a seat (anything but Cancelled).
func (e *Enrollment) IsActive() bool { return e.status != StatusCancelled }

func (e *Enrollment) IsCompleted() bool { return e.status == StatusCompleted }

func (e *Enrollment) ID() id.EnrollmentID       { return e.id }
func (e *Enrollment) StudentID() id.StudentID   { return e.studentID }
func (e *Enrollment) OfferingID() id.OfferingID { return e.offeringID }
func (e *Enrollment) Status() Status            { return e.status }
func (e *Enrollment) EnrolledAt() time.Time     { return e.enrolledAt }
func (e *Enrollment) CompletedAt() *time.Time   { return copyTime(e.completedAt) }
func (e *Enrollment) CancelledAt() *time.Time   { return copyTime(e.cancelledAt) }

// History returns a copy of the ledger ordered by ChangedAt ascending.
func (e *Enrollment) History() []HistoryEntry { return e.history.Entries() }

// HistoryLen is the number of recorded transitions.
func (e *Enrollment) HistoryLen() int { return e.history.Len() }

// PendingHistory returns entries appended since the aggregate was built or
// last persisted. Stores insert exactly these rows.
func (e *Enrollment) PendingHistory() []HistoryEntry { return e.history.pending() }

// MarkPersisted is called by stores once PendingHistory has been written.
func (e *Enrollment) MarkPersisted() { e.history.markPersisted() }

// Snapshot is the stored row shape of an enrollment.
type Snapshot struct {
	ID          id.EnrollmentID
	StudentID   id.StudentID
	OfferingID  id.OfferingID
	Status      Status
	EnrolledAt  time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// Snapshot returns the current row shape.
func (e *Enrollment) Snapshot() Snapshot {
	return Snapshot{
		ID:          e.id,
		StudentID:   e.studentID,
		OfferingID:  e.offeringID,
		Status:      e.status,
		EnrolledAt:  e.enrolledAt,
		CompletedAt: copyTime(e.completedAt),
		CancelledAt: copyTime(e.cancelledAt),
	}
}

// Rehydrate rebuilds an aggregate from stored state. Only stores call it.
// The returned aggregate has no pending history.
func Rehydrate(s Snapshot, entries []HistoryEntry) (*Enrollment, error) {
	if !s.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("unknown enrollment status %q", s.Status))
	}
	if len(entries) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "enrollment has no history")
	}
	sorted := make([]HistoryEntry, len(entries))
	copy(sorted, entries)
	// Entries can share a timestamp after clamping; Enrolled always precedes
	// the terminal entry.
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ChangedAt.Equal(sorted[j].ChangedAt) {
			return sorted[i].ChangedAt.Before(sorted[j].ChangedAt)
		}
		return !sorted[i].Status.IsTerminal() && sorted[j].Status.IsTerminal()
	})
	if last := sorted[len(sorted)-1]; last.Status != s.Status {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("enrollment status %s disagrees with last history entry %s", s.Status, last.Status))
	}

	e := &Enrollment{
		id:          s.ID,
		studentID:   s.StudentID,
		offeringID:  s.OfferingID,
		status:      s.Status,
		enrolledAt:  s.EnrolledAt,
		completedAt: copyTime(s.CompletedAt),
		cancelledAt: copyTime(s.CancelledAt),
		history:     History{entries: sorted},
	}
	e.history.markPersisted()
	return e, nil
}

// ValidateChangedBy checks an actor before any collaborator is consulted.
func ValidateChangedBy(actor string) error {
	_, err := normalizeActor(actor)
	return err
}

func normalizeActor(actor string) (string, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "", dErrors.New(dErrors.CodeValidation, "changed by is required")
	}
	if utf8.RuneCountInString(actor) > MaxChangedByLength {
		return "", dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("changed by must be %d characters or less", MaxChangedByLength))
	}
	return actor, nil
}

func normalizeReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return "", dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("reason must be %d characters or less", MaxReasonLength))
	}
	return reason, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
