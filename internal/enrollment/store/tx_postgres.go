package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/outbox"
	"registrar/pkg/platform/sentinel"
	txcontext "registrar/pkg/platform/tx"
)

// PostgresTx runs units of work in a database transaction. An offering-scoped
// unit takes a transaction-level advisory lock on the offering id before the
// callback runs; admissions into the same offering therefore queue, and each
// one counts seats only after every earlier admission has committed.
type PostgresTx struct {
	db          *sql.DB
	enrollments *PostgresStore
	events      outbox.Writer
	timeout     time.Duration
}

func NewPostgresTx(db *sql.DB, enrollments *PostgresStore, events outbox.Writer) *PostgresTx {
	return &PostgresTx{db: db, enrollments: enrollments, events: events, timeout: defaultTxTimeout}
}

func (t *PostgresTx) RunInOfferingTx(ctx context.Context, offeringID id.OfferingID, fn func(ctx context.Context, stores Stores) error) error {
	return t.run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, offeringID.String()); err != nil {
			return fmt.Errorf("lock offering: %w", err)
		}
		return nil
	}, fn)
}

func (t *PostgresTx) RunInEnrollmentTx(ctx context.Context, enrollmentID id.EnrollmentID, fn func(ctx context.Context, stores Stores) error) error {
	return t.run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM enrollments WHERE id = $1 FOR UPDATE`, uuid.UUID(enrollmentID)).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock enrollment: %w", err)
		}
		return nil
	}, fn)
}

func (t *PostgresTx) run(ctx context.Context, lock func(context.Context, *sql.Tx) error, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := lock(ctx, tx); err != nil {
		return err
	}
	if err := fn(txcontext.WithTx(ctx, tx), Stores{Enrollments: t.enrollments, Events: t.events}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("commit transaction: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
