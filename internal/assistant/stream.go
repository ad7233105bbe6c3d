// Package assistant is the companion explainer: it turns the numbers on screen
// into a prompt, streams an answer from a chat-completion provider, and keeps
// the conversation history within a token budget.
package assistant

import (
	"context"
	"io"
)

// Token is one chunk of streamed answer text.
type Token struct {
	Text  string
	Index int
}

// TokenStream yields tokens in arrival order. Next returns io.EOF once the
// provider has finished.
type TokenStream interface {
	Next(ctx context.Context) (*Token, error)
	io.Closer
}

// Provider starts a streamed completion for a prompt.
type Provider interface {
	Name() string
	Stream(ctx context.Context, p Prompt) (TokenStream, error)
}

// sliceStream replays fixed chunks, optionally failing after them.
type sliceStream struct {
	chunks []string
	err    error
	next   int
}

// NewSliceStream returns a stream that yields chunks and then err, or io.EOF
// when err is nil.
func NewSliceStream(chunks []string, err error) TokenStream {
	return &sliceStream{chunks: chunks, err: err}
}

func (s *sliceStream) Next(ctx context.Context) (*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next < len(s.chunks) {
		tok := &Token{Text: s.chunks[s.next], Index: s.next}
		s.next++
		return tok, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func (s *sliceStream) Close() error { return nil }
