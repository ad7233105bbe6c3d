package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestMiddlewareIssuesSessionID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected generated UUID, got %q", seen)
	}
	if got := rr.Header().Get(Header); got != seen {
		t.Fatalf("expected response header %q, got %q", seen, got)
	}
}

func TestMiddlewareKeepsValidSessionID(t *testing.T) {
	want := uuid.NewString()
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, want)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != want {
		t.Fatalf("expected %q, got %q", want, seen)
	}
}

func TestMiddlewareReplacesMalformedSessionID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, "../../etc/passwd")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen == "../../etc/passwd" || seen == "" {
		t.Fatalf("expected a fresh id, got %q", seen)
	}
}
