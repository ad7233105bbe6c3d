package assistant

import (
	"context"
	"strings"
)

// OfflineProvider answers without a network call by restating the numbers in
// the prompt. Used when no provider key is configured.
type OfflineProvider struct{}

func (OfflineProvider) Name() string { return "offline" }

func (OfflineProvider) Stream(ctx context.Context, p Prompt) (TokenStream, error) {
	var lines []string
	for _, line := range strings.Split(p.System, "\n") {
		if strings.HasPrefix(line, "- ") {
			lines = append(lines, strings.TrimPrefix(line, "- "))
		}
	}

	answer := "The assistant is running offline, so it cannot answer free-form questions."
	if len(lines) > 0 {
		answer += " Here is what it can see: " + strings.Join(lines, "; ") + "."
	}

	words := strings.SplitAfter(answer, " ")
	return NewSliceStream(words, nil), nil
}
