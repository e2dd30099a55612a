package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/circuit"
	"registrar/pkg/platform/sentinel"
)

const defaultHTTPTimeout = 2 * time.Second

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = fmt.Errorf("student registry circuit open: %w", sentinel.ErrUnavailable)

type studentDTO struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

type lookupResult struct {
	found bool
	name  string
}

// HTTPClient calls GET {base}/api/students/{id}. 200 means the student exists,
// 404 means it does not, anything else is unavailable. Concurrent lookups for
// the same id share one request.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	breaker *circuit.Breaker
	group   singleflight.Group
	logger  *slog.Logger
}

type HTTPOption func(*HTTPClient)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		h.http = c
	}
}

func WithBreaker(b *circuit.Breaker) HTTPOption {
	return func(h *HTTPClient) {
		h.breaker = b
	}
}

func WithLogger(logger *slog.Logger) HTTPOption {
	return func(h *HTTPClient) {
		h.logger = logger
	}
}

func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		breaker: circuit.New("student-registry"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Exists(ctx context.Context, studentID id.StudentID) (bool, error) {
	res, err := c.lookup(ctx, studentID)
	if err != nil {
		return false, err
	}
	return res.found, nil
}

func (c *HTTPClient) Name(ctx context.Context, studentID id.StudentID) (string, bool, error) {
	res, err := c.lookup(ctx, studentID)
	if err != nil {
		return "", false, err
	}
	return res.name, res.found, nil
}

func (c *HTTPClient) lookup(ctx context.Context, studentID id.StudentID) (lookupResult, error) {
	ch := c.group.DoChan(studentID.String(), func() (any, error) {
		// Detached so one caller's cancellation does not fail the shared call;
		// the per-request timeout still bounds it.
		return c.fetch(context.WithoutCancel(ctx), studentID)
	})
	select {
	case <-ctx.Done():
		return lookupResult{}, fmt.Errorf("student lookup: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return lookupResult{}, r.Err
		}
		return r.Val.(lookupResult), nil
	}
}

func (c *HTTPClient) fetch(ctx context.Context, studentID id.StudentID) (lookupResult, error) {
	if !c.breaker.Allow() {
		return lookupResult{}, ErrCircuitOpen
	}

	endpoint := c.baseURL + "/api/students/" + url.PathEscape(studentID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return lookupResult{}, fmt.Errorf("build student request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		return lookupResult{}, fmt.Errorf("student registry request: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.breaker.RecordSuccess()
		return lookupResult{found: false}, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var dto studentDTO
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
			c.recordFailure(ctx)
			return lookupResult{}, fmt.Errorf("decode student response: %w: %w", sentinel.ErrUnavailable, err)
		}
		c.breaker.RecordSuccess()
		return lookupResult{found: true, name: dto.Name}, nil
	default:
		c.recordFailure(ctx)
		return lookupResult{}, fmt.Errorf("student registry returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
}

func (c *HTTPClient) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "student registry circuit opened", "breaker", c.breaker.Name())
	}
}
