package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	txcontext "registrar/pkg/platform/tx"
)

// PostgresStore persists enrollments and their history. Every statement runs
// on the transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, e *models.Enrollment) error {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	snap := e.Snapshot()
	_, err := exec.ExecContext(ctx, `
		INSERT INTO enrollments (id, student_id, offering_id, status, enrolled_at, completed_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		uuid.UUID(snap.ID),
		uuid.UUID(snap.StudentID),
		uuid.UUID(snap.OfferingID),
		string(snap.Status),
		snap.EnrolledAt,
		nullTime(snap.CompletedAt),
		nullTime(snap.CancelledAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert enrollment: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	if err := insertHistory(ctx, exec, e.PendingHistory()); err != nil {
		return err
	}
	e.MarkPersisted()
	return nil
}

// Update writes a transition. The WHERE clause only matches a row that is
// still Enrolled, so a lost race surfaces as ErrInvalidState instead of a
// second terminal transition.
func (s *PostgresStore) Update(ctx context.Context, e *models.Enrollment) error {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	snap := e.Snapshot()
	res, err := exec.ExecContext(ctx, `
		UPDATE enrollments
		SET status = $2, completed_at = $3, cancelled_at = $4
		WHERE id = $1 AND status = $5
	`,
		uuid.UUID(snap.ID),
		string(snap.Status),
		nullTime(snap.CompletedAt),
		nullTime(snap.CancelledAt),
		string(models.StatusEnrolled),
	)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update enrollment rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM enrollments WHERE id = $1)`, uuid.UUID(snap.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("check enrollment: %w", err)
		}
		if !exists {
			return fmt.Errorf("update enrollment %s: %w", snap.ID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("update enrollment %s: %w", snap.ID, sentinel.ErrInvalidState)
	}
	if err := insertHistory(ctx, exec, e.PendingHistory()); err != nil {
		return err
	}
	e.MarkPersisted()
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, student_id, offering_id, status, enrolled_at, completed_at, cancelled_at
		FROM enrollments
		WHERE id = $1
	`, uuid.UUID(enrollmentID))
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}

	histories, err := loadHistory(ctx, exec, []id.EnrollmentID{enrollmentID})
	if err != nil {
		return nil, err
	}
	return models.Rehydrate(snap, histories[enrollmentID])
}

func (s *PostgresStore) CountActiveByOffering(ctx context.Context, offeringID id.OfferingID) (int, error) {
	var n int
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM enrollments WHERE offering_id = $1 AND status <> $2
	`, uuid.UUID(offeringID), string(models.StatusCancelled)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) HasActiveForPair(ctx context.Context, studentID id.StudentID, offeringID id.OfferingID) (bool, error) {
	var exists bool
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND offering_id = $2 AND status <> $3
		)
	`, uuid.UUID(studentID), uuid.UUID(offeringID), string(models.StatusCancelled)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListByStudent(ctx context.Context, studentID id.StudentID, statuses []models.Status) ([]*models.Enrollment, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	filter := make([]string, len(statuses))
	for i, st := range statuses {
		filter[i] = string(st)
	}
	rows, err := exec.QueryContext(ctx, `
		SELECT id, student_id, offering_id, status, enrolled_at, completed_at, cancelled_at
		FROM enrollments
		WHERE student_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
		ORDER BY enrolled_at DESC, id
	`, uuid.UUID(studentID), pq.Array(filter))
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var snaps []models.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}

	ids := make([]id.EnrollmentID, len(snaps))
	for i, snap := range snaps {
		ids[i] = snap.ID
	}
	histories, err := loadHistory(ctx, exec, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Enrollment, 0, len(snaps))
	for _, snap := range snaps {
		e, err := models.Rehydrate(snap, histories[snap.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (models.Snapshot, error) {
	var (
		snap                     models.Snapshot
		eid, sid, oid            uuid.UUID
		status                   string
		completedAt, cancelledAt sql.NullTime
	)
	if err := row.Scan(&eid, &sid, &oid, &status, &snap.EnrolledAt, &completedAt, &cancelledAt); err != nil {
		return models.Snapshot{}, err
	}
	snap.ID = id.EnrollmentID(eid)
	snap.StudentID = id.StudentID(sid)
	snap.OfferingID = id.OfferingID(oid)
	snap.Status = models.Status(status)
	snap.EnrolledAt = snap.EnrolledAt.UTC()
	snap.CompletedAt = timePtr(completedAt)
	snap.CancelledAt = timePtr(cancelledAt)
	return snap, nil
}

func insertHistory(ctx context.Context, exec txcontext.Executor, entries []models.HistoryEntry) error {
	for _, h := range entries {
		var metadata any
		if len(h.Metadata) > 0 {
			metadata = string(h.Metadata)
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO enrollment_status_history (id, enrollment_id, status, changed_at, changed_by, reason, metadata)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7::jsonb)
		`,
			uuid.UUID(h.ID),
			uuid.UUID(h.EnrollmentID),
			string(h.Status),
			h.ChangedAt,
			h.ChangedBy,
			h.Reason,
			metadata,
		)
		if err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
	}
	return nil
}

func loadHistory(ctx context.Context, exec txcontext.Executor, ids []id.EnrollmentID) (map[id.EnrollmentID][]models.HistoryEntry, error) {
	raw := make([]string, len(ids))
	for i, eid := range ids {
		raw[i] = eid.String()
	}
	rows, err := exec.QueryContext(ctx, `
		SELECT id, enrollment_id, status, changed_at, changed_by, COALESCE(reason, ''), metadata
		FROM enrollment_status_history
		WHERE enrollment_id = ANY($1::uuid[])
		ORDER BY enrollment_id, changed_at, CASE status WHEN 'Enrolled' THEN 0 ELSE 1 END
	`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}
	defer rows.Close()

	out := make(map[id.EnrollmentID][]models.HistoryEntry, len(ids))
	for rows.Next() {
		var (
			h        models.HistoryEntry
			hid, eid uuid.UUID
			status   string
			metadata []byte
		)
		if err := rows.Scan(&hid, &eid, &status, &h.ChangedAt, &h.ChangedBy, &h.Reason, &metadata); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		h.ID = id.HistoryID(hid)
		h.EnrollmentID = id.EnrollmentID(eid)
		h.Status = models.Status(status)
		h.ChangedAt = h.ChangedAt.UTC()
		if len(metadata) > 0 {
			h.Metadata = metadata
		}
		out[h.EnrollmentID] = append(out[h.EnrollmentID], h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history: %w", err)
	}
	return out, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
