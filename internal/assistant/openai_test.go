package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradecalc/internal/apperr"
)

func sseServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})
	t.Cleanup(func() {
		p.httpClient.CloseIdleConnections()
		srv.Close()
	})
	return p
}

func writeChunk(w http.ResponseWriter, text string) {
	fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", text)
	w.(http.Flusher).Flush()
}

func TestOpenAIProviderStreamsTokens(t *testing.T) {
	var got openAIRequest
	p := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		writeChunk(w, "Hel")
		fmt.Fprint(w, ": keep-alive\n\n")
		writeChunk(w, "lo")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	history := History{}.Append(Message{Role: RoleUser, Content: "earlier"})
	stream, err := p.Stream(context.Background(), BuildPrompt("predict", nil, "hi", history))
	require.NoError(t, err)

	msg, err := Collect(context.Background(), stream, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello", msg.Content)

	assert.True(t, got.Stream)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "earlier", got.Messages[1].Content)
	assert.Equal(t, "hi", got.Messages[2].Content)
}

func TestOpenAIProviderTruncatedStream(t *testing.T) {
	p := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeChunk(w, "part")
	})

	stream, err := p.Stream(context.Background(), Prompt{Question: "q"})
	require.NoError(t, err)

	msg, err := Collect(context.Background(), stream, nil)
	assert.ErrorIs(t, err, apperr.ErrExternalService)
	assert.Equal(t, "part", msg.Content)
	assert.True(t, msg.Truncated)
}

func TestOpenAIProviderStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   *apperr.Error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: apperr.ErrRateLimited},
		{name: "server error", status: http.StatusInternalServerError, want: apperr.ErrExternalService},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			})

			_, err := p.Stream(context.Background(), Prompt{Question: "q"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{}).Stream(context.Background(), Prompt{})
	assert.ErrorIs(t, err, apperr.ErrExternalService)
}

func TestRateLimitedRejectsBurst(t *testing.T) {
	p := NewRateLimited(OfflineProvider{}, 0.001, 1)

	stream, err := p.Stream(context.Background(), Prompt{})
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	_, err = p.Stream(context.Background(), Prompt{})
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
	assert.Equal(t, "offline", p.Name())
}
