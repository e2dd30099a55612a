package models

import (
	"time"

	"registrar/internal/offering"
	id "registrar/pkg/domain"
)

// EnrollmentView is the read model returned by student listings. Course
// fields come from the offering catalog at read time.
type EnrollmentView struct {
	ID          id.EnrollmentID
	StudentID   id.StudentID
	StudentName string
	OfferingID  id.OfferingID
	CourseCode  string
	SemesterID  string
	Credits     int
	Instructor  string
	Status      Status
	EnrolledAt  time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// NewEnrollmentView flattens an aggregate and its offering for listing.
func NewEnrollmentView(e *Enrollment, studentName string, off *offering.Offering) *EnrollmentView {
	v := &EnrollmentView{
		ID:          e.ID(),
		StudentID:   e.StudentID(),
		StudentName: studentName,
		OfferingID:  e.OfferingID(),
		Status:      e.Status(),
		EnrolledAt:  e.EnrolledAt(),
		CompletedAt: e.CompletedAt(),
		CancelledAt: e.CancelledAt(),
	}
	if off != nil {
		v.CourseCode = off.CourseCode
		v.SemesterID = off.SemesterID
		v.Credits = off.Credits
		v.Instructor = off.Instructor
	}
	return v
}
