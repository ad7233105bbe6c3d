// Package testutil holds helpers shared by the HTTP handler tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// NewRequest builds a test request with a JSON body. Empty header values are
// skipped so callers can pass optional headers unconditionally.
func NewRequest(method, target, body string, header map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return req
}

func ExecuteRequest(req *http.Request, handler http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func CheckResponseCode(t testing.TB, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

// CheckStatus is CheckResponseCode that also prints the body on a mismatch.
func CheckStatus(t testing.TB, expected int, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, rr.Code, strings.TrimSpace(rr.Body.String()))
	}
}

func DecodeJSONBody(t testing.TB, body io.Reader, dst any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
}

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// ParseEvents splits a text/event-stream body into its events.
func ParseEvents(t testing.TB, body string) []Event {
	t.Helper()
	var events []Event
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev Event
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.Name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.Data = strings.TrimPrefix(line, "data: ")
			}
		}
		if ev.Name == "" {
			t.Fatalf("malformed event block %q", block)
		}
		events = append(events, ev)
	}
	return events
}

// EventNames joins the event names with commas, for compact assertions.
func EventNames(events []Event) string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	return strings.Join(names, ",")
}
