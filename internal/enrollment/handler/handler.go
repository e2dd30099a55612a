package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"registrar/internal/enrollment/models"
	"registrar/internal/enrollment/service"
	"registrar/internal/platform/metrics"
	"registrar/internal/platform/middleware"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/platform/middleware/metadata"
	"registrar/pkg/platform/middleware/requesttime"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the enrollment operations exposed over HTTP.
type Service interface {
	RegisterEnrollment(ctx context.Context, req service.RegisterRequest) (id.EnrollmentID, error)
	CompleteEnrollment(ctx context.Context, enrollmentID id.EnrollmentID, actor, reason string) error
	CancelEnrollment(ctx context.Context, enrollmentID id.EnrollmentID, actor, reason string) error
	GetEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error)
	ListEnrollmentsForStudent(ctx context.Context, studentID id.StudentID, statusFilter *models.Status) ([]*models.EnrollmentView, error)
}

const (
	defaultRequestTimeout = 30 * time.Second
	maxBodyBytes          = 64 << 10
)

// Handler serves the enrollment endpoints.
type Handler struct {
	logger         *slog.Logger
	enrollments    Service
	metrics        *metrics.Metrics
	requestTimeout time.Duration
}

// New creates an enrollment Handler. A zero requestTimeout uses the default.
func New(enrollments Service, logger *slog.Logger, m *metrics.Metrics, requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Handler{
		logger:         logger,
		enrollments:    enrollments,
		metrics:        m,
		requestTimeout: requestTimeout,
	}
}

// Register mounts the enrollment routes on r.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(requesttime.Middleware)
	router.Use(metadata.ClientMetadata)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(h.requestTimeout))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.LatencyMiddleware(h.metrics))

	router.Post("/enrollments", h.handleRegister)
	router.Get("/enrollments/{enrollmentID}", h.handleGet)
	router.Post("/enrollments/{enrollmentID}/complete", h.handleComplete)
	router.Post("/enrollments/{enrollmentID}/cancel", h.handleCancel)
	router.Get("/students/{studentID}/enrollments", h.handleListForStudent)

	r.Mount("/", router)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	studentID, err := id.ParseStudentID(req.StudentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	offeringID, err := id.ParseOfferingID(req.OfferingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	enrollmentID, err := h.enrollments.RegisterEnrollment(ctx, service.RegisterRequest{
		StudentID:  studentID,
		OfferingID: offeringID,
		Actor:      req.EnrolledBy,
		Note:       req.InitialNote,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "register enrollment", err)
		return
	}

	w.Header().Set("Location", "/enrollments/"+enrollmentID.String())
	httputil.WriteJSON(w, http.StatusCreated, registerResponse{EnrollmentID: enrollmentID.String()})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	enrollmentID, err := id.ParseEnrollmentID(chi.URLParam(r, "enrollmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req completeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.enrollments.CompleteEnrollment(ctx, enrollmentID, req.CompletedBy, req.Reason); err != nil {
		h.writeServiceError(ctx, w, "complete enrollment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	enrollmentID, err := id.ParseEnrollmentID(chi.URLParam(r, "enrollmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req cancelRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.enrollments.CancelEnrollment(ctx, enrollmentID, req.CancelledBy, req.Reason); err != nil {
		h.writeServiceError(ctx, w, "cancel enrollment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	enrollmentID, err := id.ParseEnrollmentID(chi.URLParam(r, "enrollmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.enrollments.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		h.writeServiceError(ctx, w, "get enrollment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEnrollmentResponse(e))
}

func (h *Handler) handleListForStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID, err := id.ParseStudentID(chi.URLParam(r, "studentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var filter *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter = &status
	}

	views, err := h.enrollments.ListEnrollmentsForStudent(ctx, studentID, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "list enrollments", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(views))
}

// decode reads a JSON body into dst. An empty body leaves dst zero-valued so
// domain validation reports the missing fields.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code, _ := dErrors.CodeOf(err)
	attrs := []any{
		"request_id", middleware.GetRequestID(ctx),
		"operation", op,
		"error", err.Error(),
	}
	switch httputil.StatusFor(code) {
	case http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		h.logger.ErrorContext(ctx, "enrollment request failed", attrs...)
	default:
		h.logger.WarnContext(ctx, "enrollment request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}
