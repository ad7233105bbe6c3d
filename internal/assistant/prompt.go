package assistant

import (
	"fmt"
	"sort"
	"strings"
)

// Prompt is what a provider sends upstream: a system instruction, prior turns
// and the new question.
type Prompt struct {
	System   string
	History  []Message
	Question string
}

// BuildPrompt describes the active calculator mode and its current inputs to
// the model. Context keys are listed in sorted order so the same inputs always
// give the same prompt.
func BuildPrompt(mode string, context map[string]string, question string, history History) Prompt {
	var b strings.Builder
	b.WriteString("You are a friendly assistant helping a student understand their grades.\n")
	b.WriteString("Explain results plainly and show the arithmetic when it helps.\n")
	if mode != "" {
		fmt.Fprintf(&b, "\nThe student is using the %s calculator.\n", mode)
	}
	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("Current values:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, context[k])
		}
	}

	return Prompt{
		System:   b.String(),
		History:  append([]Message(nil), history.Messages...),
		Question: strings.TrimSpace(question),
	}
}
