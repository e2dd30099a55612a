package enrollment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext is what the enrollment steps need from the suite context.
type TestContext interface {
	POST(path string, body any) error
	PostStatus(path string, body any) (int, error)
	GET(path string) error
	Status() int
	ResponseField(field string) (any, error)
	Set(name, value string)
	Get(name string) (string, bool)
}

// Demo catalog loaded by the server when ENROLLMENT_SEED_DEMO=true.
var (
	offerings = map[string]string{
		"CS101":   "6f1c2a3e-0b7d-4e58-9a61-1d2f3c4b5a60",
		"MATH201": "8a9b0c1d-2e3f-4a5b-8c6d-7e8f9a0b1c2d",
	}
	students = map[string]string{
		"Grace Hopper":      "1b2c3d4e-5f60-4718-8293-a4b5c6d7e8f9",
		"Alan Turing":       "2c3d4e5f-6071-4829-93a4-b5c6d7e8f9a0",
		"Katherine Johnson": "3d4e5f60-7182-493a-a4b5-c6d7e8f9a0b1",
	}
)

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &steps{tc: tc}

	ctx.Step(`^"([^"]*)" registers for "([^"]*)"$`, s.register)
	ctx.Step(`^an unknown student registers for "([^"]*)"$`, s.registerUnknownStudent)
	ctx.Step(`^the enrollment is completed by "([^"]*)"$`, s.complete)
	ctx.Step(`^the enrollment is cancelled by "([^"]*)" with reason "([^"]*)"$`, s.cancel)
	ctx.Step(`^I fetch the enrollment$`, s.fetch)
	ctx.Step(`^I list enrollments of "([^"]*)" with status "([^"]*)"$`, s.listWithStatus)
	ctx.Step(`^"([^"]*)" sends (\d+) concurrent registrations for "([^"]*)"$`, s.concurrentRegistrations)

	ctx.Step(`^the response status should be (\d+)$`, s.statusShouldBe)
	ctx.Step(`^the error code should be "([^"]*)"$`, s.errorCodeShouldBe)
	ctx.Step(`^the enrollment status should be "([^"]*)"$`, s.enrollmentStatusShouldBe)
	ctx.Step(`^the history should have (\d+) entries$`, s.historyShouldHave)
	ctx.Step(`^the list should have (\d+) enrollments$`, s.listShouldHave)
	ctx.Step(`^no more than (\d+) registrations succeed$`, s.noMoreThanSucceed)
}

type steps struct {
	tc       TestContext
	admitted int
}

func (s *steps) register(ctx context.Context, student, course string) error {
	if err := s.tc.POST("/enrollments", map[string]string{
		"student_id":  students[student],
		"offering_id": offerings[course],
		"enrolled_by": "e2e",
	}); err != nil {
		return err
	}
	if v, err := s.tc.ResponseField("enrollment_id"); err == nil {
		s.tc.Set("enrollment_id", fmt.Sprint(v))
	}
	return nil
}

func (s *steps) registerUnknownStudent(ctx context.Context, course string) error {
	return s.tc.POST("/enrollments", map[string]string{
		"student_id":  uuid.NewString(),
		"offering_id": offerings[course],
		"enrolled_by": "e2e",
	})
}

func (s *steps) enrollmentPath() (string, error) {
	enrollmentID, ok := s.tc.Get("enrollment_id")
	if !ok {
		return "", fmt.Errorf("no enrollment registered in this scenario")
	}
	return "/enrollments/" + enrollmentID, nil
}

func (s *steps) complete(ctx context.Context, actor string) error {
	path, err := s.enrollmentPath()
	if err != nil {
		return err
	}
	return s.tc.POST(path+"/complete", map[string]string{"completed_by": actor})
}

func (s *steps) cancel(ctx context.Context, actor, reason string) error {
	path, err := s.enrollmentPath()
	if err != nil {
		return err
	}
	return s.tc.POST(path+"/cancel", map[string]string{"cancelled_by": actor, "reason": reason})
}

func (s *steps) fetch(ctx context.Context) error {
	path, err := s.enrollmentPath()
	if err != nil {
		return err
	}
	return s.tc.GET(path)
}

func (s *steps) listWithStatus(ctx context.Context, student, status string) error {
	return s.tc.GET("/students/" + students[student] + "/enrollments?status=" + status)
}

func (s *steps) concurrentRegistrations(ctx context.Context, student string, n int, course string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	s.admitted = 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := s.tc.PostStatus("/enrollments", map[string]string{
				"student_id":  students[student],
				"offering_id": offerings[course],
				"enrolled_by": "e2e",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				errs = append(errs, err)
			case status == http.StatusCreated:
				s.admitted++
			case status != http.StatusConflict:
				errs = append(errs, fmt.Errorf("unexpected status %d", status))
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (s *steps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.Status(); got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

func (s *steps) errorCodeShouldBe(ctx context.Context, want string) error {
	return s.fieldShouldBe("error", want)
}

func (s *steps) enrollmentStatusShouldBe(ctx context.Context, want string) error {
	return s.fieldShouldBe("status", want)
}

func (s *steps) fieldShouldBe(field, want string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(v) != want {
		return fmt.Errorf("expected %s %q, got %q", field, want, v)
	}
	return nil
}

func (s *steps) historyShouldHave(ctx context.Context, n int) error {
	return s.lengthShouldBe("history", n)
}

func (s *steps) listShouldHave(ctx context.Context, n int) error {
	return s.lengthShouldBe("enrollments", n)
}

func (s *steps) lengthShouldBe(field string, n int) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%s is not a list", field)
	}
	if len(items) != n {
		return fmt.Errorf("expected %d %s, got %d", n, field, len(items))
	}
	return nil
}

func (s *steps) noMoreThanSucceed(ctx context.Context, n int) error {
	if s.admitted > n {
		return fmt.Errorf("expected at most %d admissions, got %d", n, s.admitted)
	}
	return nil
}
