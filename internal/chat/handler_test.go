package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gradecalc/internal/apperr"
	"gradecalc/internal/assistant"
	"gradecalc/internal/handlers"
	"gradecalc/internal/session"
	"gradecalc/internal/testutil"
)

func TestMain(m *testing.M) {
	if err := InitMetrics(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// scriptedProvider streams fixed chunks and remembers every prompt it saw.
type scriptedProvider struct {
	chunks  []string
	err     error
	openErr error

	mu      sync.Mutex
	prompts []assistant.Prompt
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Stream(_ context.Context, prompt assistant.Prompt) (assistant.TokenStream, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	return assistant.NewSliceStream(p.chunks, p.err), nil
}

func (p *scriptedProvider) lastPrompt(t *testing.T) assistant.Prompt {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prompts) == 0 {
		t.Fatal("provider was never called")
	}
	return p.prompts[len(p.prompts)-1]
}

func newTestRouter(p assistant.Provider, opts Options) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(p, session.NewMemoryStore(time.Hour, opts.Greeting), assistant.RuneCounter{}, opts))
	return r
}

func send(t *testing.T, h http.Handler, method, path, body, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewRequest(method, path, body, map[string]string{session.Header: sessionID})
	return testutil.ExecuteRequest(req, h)
}

func history(t *testing.T, h http.Handler, sessionID string) HistoryResponse {
	t.Helper()
	w := send(t, h, http.MethodGet, "/assistant/history", "", sessionID)
	testutil.CheckStatus(t, http.StatusOK, w)

	var got HistoryResponse
	testutil.DecodeJSONBody(t, w.Body, &got)
	return got
}

func TestAskStreamsTokensAndRecordsHistory(t *testing.T) {
	provider := &scriptedProvider{chunks: []string{"Study ", "more."}}
	router := newTestRouter(provider, Options{})
	id := uuid.NewString()

	w := send(t, router, http.MethodPost, "/assistant/ask",
		`{"question":"  How do I pass?  ","mode":"overall","context":{"exam_score":"70"}}`, id)
	testutil.CheckStatus(t, http.StatusOK, w)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", ct)
	}

	events := testutil.ParseEvents(t, w.Body.String())
	if got := testutil.EventNames(events); got != "token,token,done" {
		t.Fatalf("unexpected events %s", got)
	}

	var tok tokenEvent
	if err := json.Unmarshal([]byte(events[1].Data), &tok); err != nil {
		t.Fatalf("decoding token event: %v", err)
	}
	if tok.Text != "more." || tok.Index != 1 {
		t.Fatalf("unexpected token %+v", tok)
	}

	var done doneEvent
	if err := json.Unmarshal([]byte(events[2].Data), &done); err != nil {
		t.Fatalf("decoding done event: %v", err)
	}
	if done.Message.Content != "Study more." || done.Message.Truncated || done.Tokens != 2 {
		t.Fatalf("unexpected done event %+v", done)
	}

	prompt := provider.lastPrompt(t)
	if prompt.Question != "How do I pass?" {
		t.Fatalf("expected trimmed question, got %q", prompt.Question)
	}
	if !strings.Contains(prompt.System, "- exam_score: 70") {
		t.Fatalf("expected context in system prompt, got %q", prompt.System)
	}

	got := history(t, router, id)
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %+v", got.Messages)
	}
	if got.Messages[0].Role != assistant.RoleUser || got.Messages[0].Content != "How do I pass?" {
		t.Fatalf("unexpected question message %+v", got.Messages[0])
	}
	if got.Messages[1].Role != assistant.RoleAssistant || got.Messages[1].Content != "Study more." {
		t.Fatalf("unexpected answer message %+v", got.Messages[1])
	}
	if got.Tokens == 0 {
		t.Fatal("expected a token count for the conversation")
	}
}

func TestAskInterruptedStreamKeepsPartialAnswer(t *testing.T) {
	provider := &scriptedProvider{chunks: []string{"Hel", "lo"}, err: errors.New("connection reset")}
	router := newTestRouter(provider, Options{})
	id := uuid.NewString()

	w := send(t, router, http.MethodPost, "/assistant/ask", `{"question":"hi"}`, id)
	testutil.CheckStatus(t, http.StatusOK, w)

	events := testutil.ParseEvents(t, w.Body.String())
	if got := testutil.EventNames(events); got != "token,token,error,done" {
		t.Fatalf("unexpected events %s", got)
	}

	var errEv errorEvent
	if err := json.Unmarshal([]byte(events[2].Data), &errEv); err != nil {
		t.Fatalf("decoding error event: %v", err)
	}
	if errEv.Code != apperr.ErrExternalService.Code {
		t.Fatalf("expected %s, got %+v", apperr.ErrExternalService.Code, errEv)
	}

	got := history(t, router, id)
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %+v", got.Messages)
	}
	last := got.Messages[1]
	if last.Content != "Hello" || !last.Truncated {
		t.Fatalf("expected truncated partial answer, got %+v", last)
	}
}

func TestAskRejectedBeforeStreamingIsJSON(t *testing.T) {
	provider := &scriptedProvider{chunks: []string{"ok"}}
	router := newTestRouter(assistant.NewRateLimited(provider, 0.001, 1), Options{})
	id := uuid.NewString()

	w := send(t, router, http.MethodPost, "/assistant/ask", `{"question":"first"}`, id)
	testutil.CheckStatus(t, http.StatusOK, w)

	w = send(t, router, http.MethodPost, "/assistant/ask", `{"question":"second"}`, id)
	testutil.CheckStatus(t, http.StatusTooManyRequests, w)

	var body handlers.ErrorBody
	testutil.DecodeJSONBody(t, w.Body, &body)
	if body.Code != "RATE_LIMITED" {
		t.Fatalf("expected RATE_LIMITED, got %+v", body)
	}

	if got := history(t, router, id); len(got.Messages) != 2 {
		t.Fatalf("rejected question changed the history: %+v", got.Messages)
	}
}

func TestAskUpstreamRefusal(t *testing.T) {
	provider := &scriptedProvider{openErr: apperr.Wrap(errors.New("status 500"), apperr.ErrExternalService, "")}
	w := send(t, newTestRouter(provider, Options{}), http.MethodPost, "/assistant/ask", `{"question":"hi"}`, uuid.NewString())
	testutil.CheckStatus(t, http.StatusBadGateway, w)
}

func TestAskValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "blank question", body: `{"question":"   "}`},
		{name: "missing question", body: `{"mode":"predict"}`},
		{name: "unknown field", body: `{"question":"hi","temperature":2}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := &scriptedProvider{chunks: []string{"x"}}
			w := send(t, newTestRouter(provider, Options{}), http.MethodPost, "/assistant/ask", tc.body, uuid.NewString())
			testutil.CheckStatus(t, http.StatusBadRequest, w)
			if len(provider.prompts) != 0 {
				t.Fatal("provider called for an invalid question")
			}
		})
	}
}

func TestAskTrimsHistoryToBudget(t *testing.T) {
	provider := &scriptedProvider{chunks: []string{"an answer that is long enough to matter"}}
	router := newTestRouter(provider, Options{HistoryTokens: 12})
	id := uuid.NewString()

	for _, q := range []string{"first question", "second question", "third question"} {
		w := send(t, router, http.MethodPost, "/assistant/ask", `{"question":"`+q+`"}`, id)
		testutil.CheckStatus(t, http.StatusOK, w)
	}

	if got := history(t, router, id); len(got.Messages) != 6 {
		t.Fatalf("expected the full conversation to be kept, got %d messages", len(got.Messages))
	}

	sent := provider.lastPrompt(t).History
	if len(sent) == 0 || len(sent) >= 4 {
		t.Fatalf("expected a trimmed history, got %d messages", len(sent))
	}
	if sent[len(sent)-1].Role != assistant.RoleAssistant {
		t.Fatalf("expected the newest message to be kept, got %+v", sent[len(sent)-1])
	}
}

func TestClearHistoryRestoresGreeting(t *testing.T) {
	const greeting = "Hi! Ask me anything about your grades."
	router := newTestRouter(&scriptedProvider{chunks: []string{"sure"}}, Options{Greeting: greeting})
	id := uuid.NewString()

	if got := history(t, router, id); len(got.Messages) != 1 || got.Messages[0].Content != greeting {
		t.Fatalf("expected a fresh conversation to hold the greeting, got %+v", got.Messages)
	}

	w := send(t, router, http.MethodPost, "/assistant/ask", `{"question":"hello"}`, id)
	testutil.CheckStatus(t, http.StatusOK, w)

	w = send(t, router, http.MethodDelete, "/assistant/history", "", id)
	testutil.CheckStatus(t, http.StatusOK, w)

	var got HistoryResponse
	testutil.DecodeJSONBody(t, w.Body, &got)
	if len(got.Messages) != 1 || got.Messages[0].Role != assistant.RoleAssistant || got.Messages[0].Content != greeting {
		t.Fatalf("expected only the greeting after clearing, got %+v", got.Messages)
	}
}

func TestAskOfflineRestatesContext(t *testing.T) {
	router := newTestRouter(assistant.OfflineProvider{}, Options{})

	w := send(t, router, http.MethodPost, "/assistant/ask",
		`{"question":"what now?","mode":"predict","context":{"class_standing":"80"}}`, uuid.NewString())
	testutil.CheckStatus(t, http.StatusOK, w)

	events := testutil.ParseEvents(t, w.Body.String())
	var done doneEvent
	if err := json.Unmarshal([]byte(events[len(events)-1].Data), &done); err != nil {
		t.Fatalf("decoding done event: %v", err)
	}
	if done.Provider != "offline" || !strings.Contains(done.Message.Content, "class_standing: 80") {
		t.Fatalf("unexpected offline answer %+v", done)
	}
}

// droppingWriter accepts limit body writes and then fails like a closed socket.
type droppingWriter struct {
	*httptest.ResponseRecorder
	limit  int
	writes int
}

func (d *droppingWriter) Write(b []byte) (int, error) {
	if d.writes >= d.limit {
		return 0, errors.New("write: broken pipe")
	}
	d.writes++
	return d.ResponseRecorder.Write(b)
}

func TestAskClientDisconnectKeepsPartialAnswer(t *testing.T) {
	provider := &scriptedProvider{chunks: []string{"Hel", "lo", "!"}}
	router := newTestRouter(provider, Options{})
	id := uuid.NewString()

	w := &droppingWriter{ResponseRecorder: httptest.NewRecorder(), limit: 1}
	req := testutil.NewRequest(http.MethodPost, "/assistant/ask", `{"question":"hi"}`, map[string]string{session.Header: id})
	router.ServeHTTP(w, req)

	events := testutil.ParseEvents(t, w.Body.String())
	if got := testutil.EventNames(events); got != "token" {
		t.Fatalf("expected only the first token before the client left, got %s", got)
	}

	got := history(t, router, id)
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %+v", got.Messages)
	}
	last := got.Messages[1]
	if last.Content != "Hello" || !last.Truncated {
		t.Fatalf("expected truncated partial answer, got %+v", last)
	}
}
