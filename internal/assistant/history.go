package assistant

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation. Truncated marks an assistant answer
// cut short by a stream error.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Truncated bool      `json:"truncated,omitempty"`
	At        time.Time `json:"at"`
}

// History is the serialisable conversation kept per session.
type History struct {
	Messages []Message `json:"messages"`
}

// Append returns a history with m added. The receiver is not modified.
func (h History) Append(m Message) History {
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}
	msgs := make([]Message, 0, len(h.Messages)+1)
	msgs = append(msgs, h.Messages...)
	return History{Messages: append(msgs, m)}
}

// Cleared returns an empty history, or one holding only greeting when set.
func Cleared(greeting string) History {
	if greeting == "" {
		return History{}
	}
	return History{}.Append(Message{Role: RoleAssistant, Content: greeting})
}

// Trim keeps the newest messages whose combined token count fits budget. The
// most recent message is always kept, even when it alone exceeds the budget.
func (h History) Trim(counter TokenCounter, budget int) History {
	if len(h.Messages) == 0 {
		return h
	}
	start := len(h.Messages) - 1
	used := counter.Count(h.Messages[start].Content)
	for start > 0 {
		n := counter.Count(h.Messages[start-1].Content)
		if used+n > budget {
			break
		}
		used += n
		start--
	}
	return History{Messages: append([]Message(nil), h.Messages[start:]...)}
}

func (h History) Len() int { return len(h.Messages) }
