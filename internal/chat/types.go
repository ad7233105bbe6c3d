package chat

import "gradecalc/internal/assistant"

// AskRequest is the JSON body for POST /assistant/ask. Context carries the
// numbers currently entered in the calculator named by Mode.
type AskRequest struct {
	Question string            `json:"question" validate:"required,max=2000"`
	Mode     string            `json:"mode,omitempty" validate:"omitempty,max=40"`
	Context  map[string]string `json:"context,omitempty" validate:"max=32"`
}

type tokenEvent struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

type errorEvent struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type doneEvent struct {
	Message  assistant.Message `json:"message"`
	Provider string            `json:"provider"`
	Tokens   int               `json:"tokens"`
}

// HistoryResponse is the JSON response for the /assistant/history endpoints.
type HistoryResponse struct {
	Messages []assistant.Message `json:"messages"`
	Tokens   int                 `json:"tokens"`
}

func newHistoryResponse(h assistant.History, counter assistant.TokenCounter) HistoryResponse {
	msgs := h.Messages
	if msgs == nil {
		msgs = []assistant.Message{}
	}
	var tokens int
	for _, m := range msgs {
		tokens += counter.Count(m.Content)
	}
	return HistoryResponse{Messages: msgs, Tokens: tokens}
}
