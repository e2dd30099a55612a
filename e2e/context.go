// Package e2e drives a running registrar over HTTP with godog scenarios.
// The server must be started with ENROLLMENT_SEED_DEMO=true.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestContext carries the last response and named values between steps.
type TestContext struct {
	BaseURL string
	client  *http.Client

	lastStatus int
	lastBody   []byte
	vars       map[string]string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		vars:    make(map[string]string),
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.vars = make(map[string]string)
}

func (tc *TestContext) POST(path string, body any) error {
	req, err := tc.newJSONRequest(path, body)
	if err != nil {
		return err
	}
	return tc.do(req)
}

// PostStatus sends a POST without recording the response, for parallel steps.
func (tc *TestContext) PostStatus(path string, body any) (int, error) {
	req, err := tc.newJSONRequest(path, body)
	if err != nil {
		return 0, err
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (tc *TestContext) newJSONRequest(path string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) Status() int { return tc.lastStatus }

// ResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", string(tc.lastBody), err)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from %s", field, string(tc.lastBody))
	}
	return v, nil
}

func (tc *TestContext) Set(name, value string) { tc.vars[name] = value }

func (tc *TestContext) Get(name string) (string, bool) {
	v, ok := tc.vars[name]
	return v, ok
}
