package assistant

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// TokenCounter estimates how many model tokens a piece of text costs.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// RuneCounter approximates four characters per token.
type RuneCounter struct{}

func (RuneCounter) Count(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// NewTokenCounter returns a tiktoken counter for model, falling back to the
// gpt-4o encoding and then to RuneCounter when encodings cannot be loaded.
func NewTokenCounter(model string, logger *zap.Logger) TokenCounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Debug("no tiktoken encoding for model, trying gpt-4o", zap.String("model", model), zap.Error(err))
		enc, err = tiktoken.EncodingForModel("gpt-4o")
	}
	if err != nil {
		logger.Warn("tiktoken unavailable, estimating tokens from rune count", zap.Error(err))
		return RuneCounter{}
	}
	return tiktokenCounter{enc: enc}
}
