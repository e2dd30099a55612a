package offering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	txcontext "registrar/pkg/platform/tx"
)

// PostgresStore reads and writes the course_offerings table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetOffering(ctx context.Context, offeringID id.OfferingID) (*Offering, error) {
	query := `
		SELECT offering_id, course_code, semester_id, credits, max_capacity, COALESCE(instructor, ''), status
		FROM course_offerings
		WHERE offering_id = $1
	`
	var (
		o   Offering
		raw uuid.UUID
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(offeringID)).Scan(
		&raw, &o.CourseCode, &o.SemesterID, &o.Credits, &o.MaxCapacity, &o.Instructor, &o.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find offering: %w", err)
	}
	o.ID = id.OfferingID(raw)
	return &o, nil
}

// Put upserts an offering. Used by seeding and tests.
func (s *PostgresStore) Put(ctx context.Context, o *Offering) error {
	query := `
		INSERT INTO course_offerings (offering_id, course_code, semester_id, credits, max_capacity, instructor, status)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		ON CONFLICT (offering_id) DO UPDATE SET
			credits = EXCLUDED.credits,
			max_capacity = EXCLUDED.max_capacity,
			instructor = EXCLUDED.instructor,
			status = EXCLUDED.status
	`
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(o.ID), o.CourseCode, o.SemesterID, o.Credits, o.MaxCapacity, o.Instructor, string(o.Status),
	)
	if err != nil {
		return fmt.Errorf("upsert offering: %w", err)
	}
	return nil
}
