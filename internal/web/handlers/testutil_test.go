package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/appraisal-gallery/internal/classify"
	"github.com/kozaktomas/appraisal-gallery/internal/config"
)

// testConfig creates a config with the embedded layout defaults
func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Layout.Capacities = config.CapacitiesConfig{Portrait: 9, Landscape: 12, TailFitThreshold: 6}
	return cfg
}

// stubProber classifies by URL: references containing "wide" are landscape.
// References containing "slow" block until the context is cancelled and
// signal started first.
type stubProber struct {
	once    sync.Once
	started chan struct{}
}

func newStubProber() *stubProber {
	return &stubProber{started: make(chan struct{})}
}

func (p *stubProber) Probe(ctx context.Context, ref string) (classify.Dimensions, error) {
	if strings.Contains(ref, "slow") {
		p.once.Do(func() { close(p.started) })
		<-ctx.Done()
		return classify.Dimensions{}, ctx.Err()
	}
	if strings.Contains(ref, "wide") {
		return classify.Dimensions{Width: 400, Height: 300}, nil
	}
	return classify.Dimensions{Width: 300, Height: 400}, nil
}

// newTestLayoutHandler creates a layout handler backed by prober
func newTestLayoutHandler(t *testing.T, prober classify.Prober) *LayoutHandler {
	t.Helper()
	sessions := classify.NewSessions(classify.NewClassifier(prober), time.Minute)
	h, err := NewLayoutHandler(testConfig(), sessions)
	if err != nil {
		t.Fatalf("failed to create layout handler: %v", err)
	}
	return h
}

// jsonRequest creates a request with body encoded as JSON
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
