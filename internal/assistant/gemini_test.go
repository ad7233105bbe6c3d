package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradecalc/internal/apperr"
)

type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func geminiServer(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := srv.Client()
	p, err := NewGeminiProvider(context.Background(), GeminiConfig{
		APIKey:     "test-key",
		Model:      "test-model",
		BaseURL:    srv.URL,
		HTTPClient: client,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		client.CloseIdleConnections()
		srv.Close()
	})
	return p
}

func writeGeminiChunk(w http.ResponseWriter, text string) {
	fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":%q}]}}]}\n\n", text)
	w.(http.Flusher).Flush()
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}

func TestGeminiProviderStreamsTokens(t *testing.T) {
	var got geminiRequest
	p := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "test-model:streamGenerateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		writeGeminiChunk(w, "Hel")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[]}}]}\n\n")
		writeGeminiChunk(w, "lo")
	})

	history := History{}.
		Append(Message{Role: RoleUser, Content: "earlier"}).
		Append(Message{Role: RoleAssistant, Content: "answer"})
	stream, err := p.Stream(context.Background(), BuildPrompt("predict", nil, "hi", history))
	require.NoError(t, err)

	var tokens []string
	msg, err := Collect(context.Background(), stream, func(tok Token) error {
		tokens = append(tokens, tok.Text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", msg.Content)
	assert.Equal(t, []string{"Hel", "lo"}, tokens)
	assert.False(t, msg.Truncated)

	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "answer", got.Contents[1].Parts[0].Text)
	assert.Equal(t, "user", got.Contents[2].Role)
	assert.Equal(t, "hi", got.Contents[2].Parts[0].Text)
}

func TestGeminiProviderTruncatedStream(t *testing.T) {
	p := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeGeminiChunk(w, "part")
		fmt.Fprint(w, "data: {\"candidates\":\n\n")
	})

	stream, err := p.Stream(context.Background(), Prompt{Question: "q"})
	require.NoError(t, err)

	msg, err := Collect(context.Background(), stream, nil)
	assert.ErrorIs(t, err, apperr.ErrExternalService)
	assert.Equal(t, "part", msg.Content)
	assert.True(t, msg.Truncated)
}
