package service

import (
	"context"
	"encoding/json"
	"time"

	"registrar/internal/enrollment/models"
	"registrar/pkg/platform/middleware/metadata"
	"registrar/pkg/platform/outbox"
	"registrar/pkg/requestcontext"
)

const (
	AggregateType = "enrollment"

	EventEnrolled  = "enrollment.enrolled"
	EventCompleted = "enrollment.completed"
	EventCancelled = "enrollment.cancelled"
)

// EnrollmentEvent is the payload published for every lifecycle transition.
type EnrollmentEvent struct {
	EnrollmentID string    `json:"enrollment_id"`
	StudentID    string    `json:"student_id"`
	OfferingID   string    `json:"offering_id"`
	Status       string    `json:"status"`
	ChangedAt    time.Time `json:"changed_at"`
	ChangedBy    string    `json:"changed_by"`
	Reason       string    `json:"reason,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	ClientIP     string    `json:"client_ip,omitempty"`
	ClientAgent  string    `json:"client_agent,omitempty"`
}

func eventTypeFor(status models.Status) string {
	switch status {
	case models.StatusCompleted:
		return EventCompleted
	case models.StatusCancelled:
		return EventCancelled
	default:
		return EventEnrolled
	}
}

// newTransitionEvent describes the newest history entry of e.
func newTransitionEvent(ctx context.Context, e *models.Enrollment) (outbox.Entry, error) {
	history := e.History()
	last := history[len(history)-1]
	payload, err := json.Marshal(EnrollmentEvent{
		EnrollmentID: e.ID().String(),
		StudentID:    e.StudentID().String(),
		OfferingID:   e.OfferingID().String(),
		Status:       string(last.Status),
		ChangedAt:    last.ChangedAt,
		ChangedBy:    last.ChangedBy,
		Reason:       last.Reason,
		RequestID:    requestcontext.RequestID(ctx),
		ClientIP:     requestcontext.ClientIP(ctx),
		ClientAgent:  metadata.DescribeAgent(requestcontext.UserAgent(ctx)),
	})
	if err != nil {
		return outbox.Entry{}, err
	}
	return outbox.NewEntry(AggregateType, e.ID().String(), eventTypeFor(last.Status), payload, last.ChangedAt), nil
}
