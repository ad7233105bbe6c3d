package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lenCounter struct{}

func (lenCounter) Count(text string) int { return len(text) }

func contents(h History) []string {
	out := make([]string, 0, h.Len())
	for _, m := range h.Messages {
		out = append(out, m.Content)
	}
	return out
}

func TestHistoryTrimKeepsNewestWithinBudget(t *testing.T) {
	h := History{}.
		Append(Message{Role: RoleUser, Content: "aaaa"}).
		Append(Message{Role: RoleAssistant, Content: "bb"}).
		Append(Message{Role: RoleUser, Content: "cccccc"})

	assert.Equal(t, []string{"bb", "cccccc"}, contents(h.Trim(lenCounter{}, 8)))
	assert.Equal(t, []string{"aaaa", "bb", "cccccc"}, contents(h.Trim(lenCounter{}, 100)))
}

func TestHistoryTrimNeverDropsLastMessage(t *testing.T) {
	h := History{}.Append(Message{Role: RoleUser, Content: "a very long question"})

	trimmed := h.Trim(lenCounter{}, 1)
	assert.Equal(t, []string{"a very long question"}, contents(trimmed))
	assert.Empty(t, History{}.Trim(lenCounter{}, 10).Messages)
}

func TestHistoryAppendDoesNotMutateReceiver(t *testing.T) {
	base := History{}.Append(Message{Role: RoleUser, Content: "one"})
	_ = base.Append(Message{Role: RoleAssistant, Content: "two"})

	require.Equal(t, 1, base.Len())
	assert.False(t, base.Messages[0].At.IsZero())
}

func TestCleared(t *testing.T) {
	assert.Zero(t, Cleared("").Len())

	h := Cleared("Hi! Ask me about your grades.")
	require.Equal(t, 1, h.Len())
	assert.Equal(t, RoleAssistant, h.Messages[0].Role)
}

func TestRuneCounter(t *testing.T) {
	assert.Equal(t, 0, RuneCounter{}.Count(""))
	assert.Equal(t, 1, RuneCounter{}.Count("abcd"))
	assert.Equal(t, 2, RuneCounter{}.Count("abcde"))
}
