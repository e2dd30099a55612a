// Package offering is the read side of the course offering catalog. The
// enrollment core only consumes capacity and status through Directory; the
// write rules here exist so seed data and the catalog table stay consistent.
package offering

import (
	"context"
	"strings"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusCancelled Status = "Cancelled"
)

// Directory resolves offerings by id. Implementations return
// sentinel.ErrNotFound for unknown ids.
type Directory interface {
	GetOffering(ctx context.Context, offeringID id.OfferingID) (*Offering, error)
}

// Offering is a (course, semester) teaching instance with a seat cap.
//
// Invariants:
//   - MaxCapacity >= 1
//   - Credits in [1, 10]
//   - a cancelled offering cannot be updated or cancelled again
type Offering struct {
	ID          id.OfferingID
	CourseCode  string
	SemesterID  string
	Credits     int
	MaxCapacity int
	Instructor  string
	Status      Status
}

func NewOffering(offeringID id.OfferingID, courseCode, semesterID string, credits, maxCapacity int, instructor string) (*Offering, error) {
	courseCode = strings.TrimSpace(courseCode)
	if courseCode == "" || len(courseCode) > 10 {
		return nil, dErrors.New(dErrors.CodeValidation, "course code must be 1 to 10 characters")
	}
	semesterID = strings.TrimSpace(semesterID)
	if semesterID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "semester id is required")
	}
	if err := validate(credits, maxCapacity); err != nil {
		return nil, err
	}
	return &Offering{
		ID:          offeringID,
		CourseCode:  courseCode,
		SemesterID:  semesterID,
		Credits:     credits,
		MaxCapacity: maxCapacity,
		Instructor:  strings.TrimSpace(instructor),
		Status:      StatusActive,
	}, nil
}

func (o *Offering) IsActive() bool { return o.Status == StatusActive }

// Update changes the mutable terms of an active offering. Lowering capacity
// below the current active count is allowed; it only blocks new admissions.
func (o *Offering) Update(credits, maxCapacity int, instructor string) error {
	if !o.IsActive() {
		return dErrors.New(dErrors.CodeInvalidState, "cannot update cancelled offering")
	}
	if err := validate(credits, maxCapacity); err != nil {
		return err
	}
	o.Credits = credits
	o.MaxCapacity = maxCapacity
	o.Instructor = strings.TrimSpace(instructor)
	return nil
}

func (o *Offering) Cancel() error {
	if !o.IsActive() {
		return dErrors.New(dErrors.CodeInvalidState, "offering already cancelled")
	}
	o.Status = StatusCancelled
	return nil
}

func validate(credits, maxCapacity int) error {
	if credits < 1 || credits > 10 {
		return dErrors.New(dErrors.CodeValidation, "credits must be between 1 and 10")
	}
	if maxCapacity < 1 {
		return dErrors.New(dErrors.CodeValidation, "max capacity must be greater than 0")
	}
	return nil
}
