package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"registrar/internal/enrollment/handler/mocks"
	"registrar/internal/enrollment/models"
	"registrar/internal/enrollment/service"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(svc, logger, nil, time.Second).Register(r)
	return r, svc
}

func TestHandleRegister(t *testing.T) {
	studentID := id.NewStudentID()
	offeringID := id.NewOfferingID()
	body := map[string]string{
		"student_id":   studentID.String(),
		"offering_id":  offeringID.String(),
		"enrolled_by":  "registrar",
		"initial_note": "transfer credit pending",
	}

	t.Run("admitted registration returns 201 with the new id", func(t *testing.T) {
		router, svc := newTestRouter(t)
		enrollmentID := id.NewEnrollmentID()
		svc.EXPECT().RegisterEnrollment(gomock.Any(), service.RegisterRequest{
			StudentID:  studentID,
			OfferingID: offeringID,
			Actor:      "registrar",
			Note:       "transfer credit pending",
		}).Return(enrollmentID, nil)

		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodPost, "/enrollments", body))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		resp := testutil.DecodeJSON[registerResponse](t, rr)
		assert.Equal(t, enrollmentID.String(), resp.EnrollmentID)
		assert.Equal(t, "/enrollments/"+enrollmentID.String(), rr.Header().Get("Location"))
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("service errors map to statuses", func(t *testing.T) {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"student not found", dErrors.New(dErrors.CodeNotFound, "student not found"), http.StatusNotFound, "not_found"},
			{"offering not active", dErrors.New(dErrors.CodeValidation, "offering not active"), http.StatusBadRequest, "validation_error"},
			{"capacity reached", dErrors.New(dErrors.CodeConflict, "capacity reached"), http.StatusConflict, "conflict"},
			{"directory unavailable", dErrors.New(dErrors.CodeUnavailable, "student directory unavailable"), http.StatusServiceUnavailable, "unavailable"},
			{"timeout", dErrors.New(dErrors.CodeTimeout, "operation timed out"), http.StatusGatewayTimeout, "timeout"},
			{"internal", dErrors.New(dErrors.CodeInternal, "failed to register enrollment"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				router, svc := newTestRouter(t)
				svc.EXPECT().RegisterEnrollment(gomock.Any(), gomock.Any()).Return(id.EnrollmentID{}, tc.err)

				rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodPost, "/enrollments", body))
				testutil.AssertError(t, rr, tc.status, tc.code)
			})
		}
	})

	t.Run("internal errors hide their description", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().RegisterEnrollment(gomock.Any(), gomock.Any()).
			Return(id.EnrollmentID{}, dErrors.New(dErrors.CodeInternal, "pq: relation does not exist"))

		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodPost, "/enrollments", body))
		assert.NotContains(t, rr.Body.String(), "relation")
	})

	t.Run("malformed student id is rejected before the service", func(t *testing.T) {
		router, _ := newTestRouter(t)
		bad := map[string]string{"student_id": "nope", "offering_id": offeringID.String(), "enrolled_by": "registrar"}

		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodPost, "/enrollments", bad))
		testutil.AssertError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rr := testutil.Serve(router, testutil.NewRawRequest(http.MethodPost, "/enrollments", "application/json", "{"))
		testutil.AssertError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("non json content type is refused", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rr := testutil.Serve(router, testutil.NewRawRequest(http.MethodPost, "/enrollments", "text/plain", "hello"))
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})
}

func TestHandleTransitions(t *testing.T) {
	enrollmentID := id.NewEnrollmentID()

	t.Run("complete returns 204", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().CompleteEnrollment(gomock.Any(), enrollmentID, "system", "term end").Return(nil)

		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodPost,
			"/enrollments/"+enrollmentID.String()+"/complete",
			map[string]string{"completed_by": "system", "reason": "term end"}))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("cancel of a completed enrollment is a state conflict", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().CancelEnrollment(gomock.Any(), enrollmentID, "advisor", "dropped").
			Return(dErrors.New(dErrors.CodeInvalidState, "completed enrollments cannot be cancelled"))

		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodPost,
			"/enrollments/"+enrollmentID.String()+"/cancel",
			map[string]string{"cancelled_by": "advisor", "reason": "dropped"}))
		testutil.AssertError(t, rr, http.StatusConflict, "invalid_state")
	})

	t.Run("cancel without a body reaches domain validation", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().CancelEnrollment(gomock.Any(), enrollmentID, "", "").
			Return(dErrors.New(dErrors.CodeValidation, "changed by is required"))

		req := testutil.NewRawRequest(http.MethodPost, "/enrollments/"+enrollmentID.String()+"/cancel", "", "")
		rr := testutil.Serve(router, req)
		testutil.AssertError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("malformed enrollment id is rejected", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodPost,
			"/enrollments/42/complete", map[string]string{"completed_by": "system"}))
		testutil.AssertError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func TestHandleGet(t *testing.T) {
	router, svc := newTestRouter(t)
	e, err := models.NewEnrollment(id.NewStudentID(), id.NewOfferingID(), "registrar", "late add", time.Now())
	require.NoError(t, err)
	svc.EXPECT().GetEnrollment(gomock.Any(), e.ID()).Return(e, nil)

	rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodGet, "/enrollments/"+e.ID().String(), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := testutil.DecodeJSON[enrollmentResponse](t, rr)
	assert.Equal(t, "Enrolled", resp.Status)
	require.Len(t, resp.History, 1)
	assert.Equal(t, models.InitialEnrollmentReason, resp.History[0].Reason)
	assert.JSONEq(t, `{"initial_note":"late add"}`, string(resp.History[0].Metadata))
}

func TestHandleListForStudent(t *testing.T) {
	studentID := id.NewStudentID()

	t.Run("status filter is case insensitive", func(t *testing.T) {
		router, svc := newTestRouter(t)
		completed := models.StatusCompleted
		svc.EXPECT().ListEnrollmentsForStudent(gomock.Any(), studentID, &completed).
			Return([]*models.EnrollmentView{{
				ID:          id.NewEnrollmentID(),
				StudentID:   studentID,
				StudentName: "Grace Hopper",
				CourseCode:  "CS101",
				SemesterID:  "2026-FALL",
				Credits:     3,
				Instructor:  "Dr. Ada",
				Status:      completed,
			}}, nil)

		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodGet,
			"/students/"+studentID.String()+"/enrollments?status=completed", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := testutil.DecodeJSON[listResponse](t, rr)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, "Grace Hopper", resp.Enrollments[0].StudentName)
		assert.Equal(t, "CS101", resp.Enrollments[0].CourseCode)
		assert.Equal(t, "2026-FALL", resp.Enrollments[0].SemesterID)
		assert.Equal(t, 3, resp.Enrollments[0].Credits)
		assert.Equal(t, "Dr. Ada", resp.Enrollments[0].Instructor)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodGet,
			"/students/"+studentID.String()+"/enrollments?status=pending", nil))
		testutil.AssertError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("no filter lists everything", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().ListEnrollmentsForStudent(gomock.Any(), studentID, nil).Return(nil, nil)

		rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodGet,
			"/students/"+studentID.String()+"/enrollments", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"enrollments":[],"total":0}`, rr.Body.String())
	})
}

func TestTimeoutReachesService(t *testing.T) {
	router, svc := newTestRouter(t)
	enrollmentID := id.NewEnrollmentID()
	svc.EXPECT().GetEnrollment(gomock.Any(), enrollmentID).DoAndReturn(
		func(ctx context.Context, _ id.EnrollmentID) (*models.Enrollment, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil, dErrors.New(dErrors.CodeNotFound, "enrollment not found")
		})

	rr := testutil.Serve(router, testutil.NewJSONRequest(t, http.MethodGet, "/enrollments/"+enrollmentID.String(), nil))
	testutil.AssertError(t, rr, http.StatusNotFound, "not_found")
}
