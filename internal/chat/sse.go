package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Server-sent event names written by Ask.
const (
	EventToken = "token"
	EventError = "error"
	EventDone  = "done"
)

type eventWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// startEvents sends the event-stream headers. After this no JSON error body
// can be written; failures travel as error events instead.
func startEvents(w http.ResponseWriter) *eventWriter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ew := &eventWriter{w: w, rc: http.NewResponseController(w)}
	_ = ew.rc.Flush()
	return ew
}

func (e *eventWriter) send(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return e.rc.Flush()
}
