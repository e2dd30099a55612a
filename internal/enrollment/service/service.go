package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"registrar/internal/enrollment/metrics"
	"registrar/internal/enrollment/models"
	"registrar/internal/enrollment/store"
	"registrar/internal/offering"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// StudentDirectory is the anti-corruption port to the student registry.
type StudentDirectory interface {
	Exists(ctx context.Context, studentID id.StudentID) (bool, error)
	Name(ctx context.Context, studentID id.StudentID) (name string, found bool, err error)
}

// OfferingDirectory resolves capacity and status of an offering.
type OfferingDirectory interface {
	GetOffering(ctx context.Context, offeringID id.OfferingID) (*offering.Offering, error)
}

// EnrollmentReader serves the read-only queries outside any unit of work.
type EnrollmentReader interface {
	FindByID(ctx context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID id.StudentID, statuses []models.Status) ([]*models.Enrollment, error)
}

// EnrollmentStoreTx provides the transactional boundaries the service needs.
// RunInOfferingTx must hold a lock scoped to the offering for the whole
// callback; RunInEnrollmentTx must serialize callbacks per enrollment id.
// Writes made through the stores passed to fn commit only if fn returns nil.
type EnrollmentStoreTx interface {
	RunInOfferingTx(ctx context.Context, offeringID id.OfferingID, fn func(ctx context.Context, stores store.Stores) error) error
	RunInEnrollmentTx(ctx context.Context, enrollmentID id.EnrollmentID, fn func(ctx context.Context, stores store.Stores) error) error
}

const defaultCollaboratorTimeout = 2 * time.Second

// Service runs the admission protocol and lifecycle transitions.
type Service struct {
	enrollments         EnrollmentReader
	tx                  EnrollmentStoreTx
	students            StudentDirectory
	offerings           OfferingDirectory
	collaboratorTimeout time.Duration
	logger              *slog.Logger
	metrics             *metrics.Metrics
	tracer              trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for span instrumentation. A nil tracer keeps the
// default noop tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithCollaboratorTimeout bounds each student or offering lookup.
func WithCollaboratorTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.collaboratorTimeout = d
		}
	}
}

func New(enrollments EnrollmentReader, tx EnrollmentStoreTx, students StudentDirectory, offerings OfferingDirectory, opts ...Option) (*Service, error) {
	if enrollments == nil {
		return nil, errors.New("enrollment reader is required")
	}
	if tx == nil {
		return nil, errors.New("enrollment store tx is required")
	}
	if students == nil {
		return nil, errors.New("student directory is required")
	}
	if offerings == nil {
		return nil, errors.New("offering directory is required")
	}
	s := &Service{
		enrollments:         enrollments,
		tx:                  tx,
		students:            students,
		offerings:           offerings,
		collaboratorTimeout: defaultCollaboratorTimeout,
		logger:              slog.Default(),
		tracer:              noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterRequest is the input of RegisterEnrollment.
type RegisterRequest struct {
	StudentID  id.StudentID
	OfferingID id.OfferingID
	Actor      string
	Note       string
}

// RegisterEnrollment admits a student into an offering or rejects with
// exactly one reason. Preconditions are checked in order: student exists,
// offering exists, offering active, no active enrollment for the pair, a seat
// is free. The last two checks and the insert run under the offering lock.
func (s *Service) RegisterEnrollment(ctx context.Context, req RegisterRequest) (enrollmentID id.EnrollmentID, err error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.register", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("student_id", req.StudentID.String()),
		attribute.String("offering_id", req.OfferingID.String()),
	)

	if err := models.ValidateChangedBy(req.Actor); err != nil {
		return id.EnrollmentID{}, err
	}

	if err := s.requireStudent(ctx, req.StudentID); err != nil {
		s.metrics.IncRejected("student")
		return id.EnrollmentID{}, err
	}

	off, err := s.lookupOffering(ctx, req.OfferingID)
	if err != nil {
		s.metrics.IncRejected("offering")
		return id.EnrollmentID{}, err
	}
	if !off.IsActive() {
		s.metrics.IncRejected("offering_inactive")
		return id.EnrollmentID{}, dErrors.New(dErrors.CodeValidation, "offering not active")
	}

	start := time.Now()
	err = s.tx.RunInOfferingTx(ctx, req.OfferingID, func(ctx context.Context, stores store.Stores) error {
		duplicate, err := stores.Enrollments.HasActiveForPair(ctx, req.StudentID, req.OfferingID)
		if err != nil {
			return err
		}
		if duplicate {
			return dErrors.New(dErrors.CodeConflict, "already enrolled")
		}

		active, err := stores.Enrollments.CountActiveByOffering(ctx, req.OfferingID)
		if err != nil {
			return err
		}
		if active >= off.MaxCapacity {
			return dErrors.New(dErrors.CodeConflict, "capacity reached")
		}

		e, err := models.NewEnrollment(req.StudentID, req.OfferingID, req.Actor, req.Note, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := stores.Enrollments.Insert(ctx, e); err != nil {
			return err
		}
		if err := s.appendEvent(ctx, stores, e); err != nil {
			return err
		}
		enrollmentID = e.ID()
		return nil
	})
	s.metrics.ObserveAdmission(time.Since(start).Seconds())
	if err != nil {
		err = s.translate(ctx, err, errMessages{conflict: "already enrolled", internal: "failed to register enrollment"})
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.IncRejected(dErrors.MessageOf(err))
		}
		return id.EnrollmentID{}, err
	}

	s.metrics.IncRegistered()
	s.logger.InfoContext(ctx, "enrollment registered",
		"request_id", requestcontext.RequestID(ctx),
		"enrollment_id", enrollmentID.String(),
		"student_id", req.StudentID.String(),
		"offering_id", req.OfferingID.String(),
	)
	return enrollmentID, nil
}

// CompleteEnrollment moves an Enrolled enrollment to Completed.
func (s *Service) CompleteEnrollment(ctx context.Context, enrollmentID id.EnrollmentID, actor, reason string) (err error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.complete", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("enrollment_id", enrollmentID.String()))

	return s.transition(ctx, enrollmentID, models.StatusCompleted, func(e *models.Enrollment, now time.Time) error {
		return e.Complete(actor, reason, now)
	})
}

// CancelEnrollment moves an Enrolled enrollment to Cancelled. The seat is
// released for later registrations; nobody is admitted in its place.
func (s *Service) CancelEnrollment(ctx context.Context, enrollmentID id.EnrollmentID, actor, reason string) (err error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.cancel", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("enrollment_id", enrollmentID.String()))

	return s.transition(ctx, enrollmentID, models.StatusCancelled, func(e *models.Enrollment, now time.Time) error {
		return e.Cancel(actor, reason, now)
	})
}

func (s *Service) transition(ctx context.Context, enrollmentID id.EnrollmentID, target models.Status, apply func(*models.Enrollment, time.Time) error) error {
	err := s.tx.RunInEnrollmentTx(ctx, enrollmentID, func(ctx context.Context, stores store.Stores) error {
		e, err := stores.Enrollments.FindByID(ctx, enrollmentID)
		if err != nil {
			return err
		}
		if err := apply(e, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := stores.Enrollments.Update(ctx, e); err != nil {
			return err
		}
		return s.appendEvent(ctx, stores, e)
	})
	if err != nil {
		return s.translate(ctx, err, errMessages{
			notFound: "enrollment not found",
			conflict: "enrollment changed concurrently",
			internal: "failed to update enrollment",
		})
	}

	s.metrics.IncTransition(string(target))
	s.logger.InfoContext(ctx, "enrollment transitioned",
		"request_id", requestcontext.RequestID(ctx),
		"enrollment_id", enrollmentID.String(),
		"status", string(target),
	)
	return nil
}

// ListEnrollmentsForStudent returns the student's enrollments, most recent
// first, optionally filtered by status.
func (s *Service) ListEnrollmentsForStudent(ctx context.Context, studentID id.StudentID, statusFilter *models.Status) (views []*models.EnrollmentView, err error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.list_for_student", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() { endSpan(span, err) }()

	name, err := s.studentName(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var statuses []models.Status
	if statusFilter != nil {
		if !statusFilter.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid status filter")
		}
		statuses = []models.Status{*statusFilter}
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID, statuses)
	if err != nil {
		return nil, s.translate(ctx, err, errMessages{notFound: "student not found", internal: "failed to list enrollments"})
	}

	// Rows whose offering no longer resolves are left out; any other lookup
	// failure fails the whole listing.
	offerings := make(map[id.OfferingID]*offering.Offering)
	views = make([]*models.EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		off, seen := offerings[e.OfferingID()]
		if !seen {
			off, err = s.lookupOffering(ctx, e.OfferingID())
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				s.logger.WarnContext(ctx, "enrollment offering missing from catalog",
					"request_id", requestcontext.RequestID(ctx),
					"enrollment_id", e.ID().String(),
					"offering_id", e.OfferingID().String(),
				)
				off, err = nil, nil
			}
			if err != nil {
				return nil, err
			}
			offerings[e.OfferingID()] = off
		}
		if off == nil {
			continue
		}
		views = append(views, models.NewEnrollmentView(e, name, off))
	}
	return views, nil
}

// GetEnrollment loads one enrollment with its history.
func (s *Service) GetEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error) {
	e, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, s.translate(ctx, err, errMessages{notFound: "enrollment not found", internal: "failed to load enrollment"})
	}
	return e, nil
}

// GetHistory returns the status history ledger of one enrollment.
func (s *Service) GetHistory(ctx context.Context, enrollmentID id.EnrollmentID) ([]models.HistoryEntry, error) {
	e, err := s.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	return e.History(), nil
}

func (s *Service) appendEvent(ctx context.Context, stores store.Stores, e *models.Enrollment) error {
	if stores.Events == nil {
		return nil
	}
	entry, err := newTransitionEvent(ctx, e)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode enrollment event")
	}
	return stores.Events.Append(ctx, entry)
}

// errMessages names the client-facing message for each translated sentinel.
// An empty message falls back to a generic one.
type errMessages struct {
	notFound string
	conflict string
	internal string
}

// translate turns store and context errors into coded errors. Coded errors
// pass through untouched; raw storage errors never leave the service.
func (s *Service) translate(ctx context.Context, err error, msgs errMessages) error {
	if _, ok := dErrors.CodeOf(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, orDefault(msgs.notFound, "not found"))
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, orDefault(msgs.conflict, "conflict"))
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, orDefault(msgs.conflict, "invalid state"))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	}
	internal := orDefault(msgs.internal, "internal error")
	s.logger.ErrorContext(ctx, internal,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

func orDefault(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
