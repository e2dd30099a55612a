package handler

import (
	"encoding/json"
	"time"

	"registrar/internal/enrollment/models"
)

type registerRequest struct {
	StudentID   string `json:"student_id"`
	OfferingID  string `json:"offering_id"`
	EnrolledBy  string `json:"enrolled_by"`
	InitialNote string `json:"initial_note,omitempty"`
}

type registerResponse struct {
	EnrollmentID string `json:"enrollment_id"`
}

type completeRequest struct {
	CompletedBy string `json:"completed_by"`
	Reason      string `json:"reason,omitempty"`
}

type cancelRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason"`
}

type historyEntryResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	ChangedAt time.Time       `json:"changed_at"`
	ChangedBy string          `json:"changed_by"`
	Reason    string          `json:"reason,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

type enrollmentResponse struct {
	ID          string                 `json:"id"`
	StudentID   string                 `json:"student_id"`
	StudentName string                 `json:"student_name,omitempty"`
	OfferingID  string                 `json:"offering_id"`
	CourseCode  string                 `json:"course_code,omitempty"`
	SemesterID  string                 `json:"semester_id,omitempty"`
	Credits     int                    `json:"credits,omitempty"`
	Instructor  string                 `json:"instructor,omitempty"`
	Status      string                 `json:"status"`
	EnrolledAt  time.Time              `json:"enrolled_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	CancelledAt *time.Time             `json:"cancelled_at,omitempty"`
	History     []historyEntryResponse `json:"history,omitempty"`
}

type listResponse struct {
	Enrollments []enrollmentResponse `json:"enrollments"`
	Total       int                  `json:"total"`
}

func toEnrollmentResponse(e *models.Enrollment) enrollmentResponse {
	history := e.History()
	resp := enrollmentResponse{
		ID:          e.ID().String(),
		StudentID:   e.StudentID().String(),
		OfferingID:  e.OfferingID().String(),
		Status:      string(e.Status()),
		EnrolledAt:  e.EnrolledAt(),
		CompletedAt: e.CompletedAt(),
		CancelledAt: e.CancelledAt(),
		History:     make([]historyEntryResponse, 0, len(history)),
	}
	for _, h := range history {
		resp.History = append(resp.History, historyEntryResponse{
			ID:        h.ID.String(),
			Status:    string(h.Status),
			ChangedAt: h.ChangedAt,
			ChangedBy: h.ChangedBy,
			Reason:    h.Reason,
			Metadata:  h.Metadata,
		})
	}
	return resp
}

func toListResponse(views []*models.EnrollmentView) listResponse {
	resp := listResponse{Enrollments: make([]enrollmentResponse, 0, len(views)), Total: len(views)}
	for _, v := range views {
		resp.Enrollments = append(resp.Enrollments, enrollmentResponse{
			ID:          v.ID.String(),
			StudentID:   v.StudentID.String(),
			StudentName: v.StudentName,
			OfferingID:  v.OfferingID.String(),
			CourseCode:  v.CourseCode,
			SemesterID:  v.SemesterID,
			Credits:     v.Credits,
			Instructor:  v.Instructor,
			Status:      string(v.Status),
			EnrolledAt:  v.EnrolledAt,
			CompletedAt: v.CompletedAt,
			CancelledAt: v.CancelledAt,
		})
	}
	return resp
}
