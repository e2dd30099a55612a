package models

import (
	"strings"

	dErrors "registrar/pkg/domain-errors"
)

// Status is the lifecycle state of an enrollment.
type Status string

const (
	StatusEnrolled  Status = "Enrolled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

var allStatuses = []Status{StatusEnrolled, StatusCompleted, StatusCancelled}

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusEnrolled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo encodes the state machine: Enrolled -> Completed | Cancelled.
// Completed and Cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusEnrolled && (next == StatusCompleted || next == StatusCancelled)
}

// ParseStatus matches case-insensitively against the known statuses.
func ParseStatus(raw string) (Status, error) {
	trimmed := strings.TrimSpace(raw)
	for _, s := range allStatuses {
		if strings.EqualFold(trimmed, string(s)) {
			return s, nil
		}
	}
	names := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		names[i] = string(s)
	}
	return "", dErrors.New(dErrors.CodeValidation,
		"invalid status filter: must be one of "+strings.Join(names, ", "))
}
