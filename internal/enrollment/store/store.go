package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/outbox"
)

// Repository is the enrollment persistence port. Inside a unit of work it sees
// that unit's own writes.
//
// Errors:
//   - sentinel.ErrNotFound: unknown enrollment id
//   - sentinel.ErrConflict: the (student, offering) pair already has an active enrollment
//   - sentinel.ErrInvalidState: the stored row moved on since it was loaded
type Repository interface {
	Insert(ctx context.Context, e *models.Enrollment) error
	Update(ctx context.Context, e *models.Enrollment) error
	FindByID(ctx context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error)
	CountActiveByOffering(ctx context.Context, offeringID id.OfferingID) (int, error)
	HasActiveForPair(ctx context.Context, studentID id.StudentID, offeringID id.OfferingID) (bool, error)
	// ListByStudent returns the student's enrollments, most recent first. An
	// empty statuses slice matches every status.
	ListByStudent(ctx context.Context, studentID id.StudentID, statuses []models.Status) ([]*models.Enrollment, error)
}

// Stores is what a unit of work hands to its callback.
type Stores struct {
	Enrollments Repository
	Events      outbox.Writer
}

const uniqueViolation = "23505"

// isUniqueViolation recognises a unique-index rejection from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
