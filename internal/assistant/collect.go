package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"gradecalc/internal/apperr"
)

// Collect drains stream, calling onToken for each token in arrival order, and
// returns the assistant message built from the text received. When the stream
// fails part way the partial text is still returned, marked Truncated, along
// with the error. A failing onToken is reported as apperr.ErrClientClosed.
// Nothing is retried.
func Collect(ctx context.Context, stream TokenStream, onToken func(Token) error) (Message, error) {
	defer stream.Close()

	var b strings.Builder
	msg := Message{Role: RoleAssistant}

	finish := func(err error) (Message, error) {
		msg.Content = b.String()
		msg.At = time.Now().UTC()
		if err != nil {
			msg.Truncated = true
			if !errors.Is(err, apperr.ErrRateLimited) && !errors.Is(err, apperr.ErrExternalService) &&
				!errors.Is(err, apperr.ErrClientClosed) {
				err = apperr.Wrap(err, apperr.ErrExternalService, "assistant response was interrupted")
			}
		}
		return msg, err
	}

	for {
		tok, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			return finish(nil)
		}
		if err != nil {
			return finish(err)
		}
		b.WriteString(tok.Text)
		if onToken != nil {
			if err := onToken(*tok); err != nil {
				return finish(apperr.Wrap(err, apperr.ErrClientClosed, ""))
			}
		}
	}
}
