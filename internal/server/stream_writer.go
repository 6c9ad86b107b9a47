package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/karkeeg/productforge/internal/stream"
)

// eventWriter frames pipeline events onto an HTTP response as
// "data: <json>\n\n" records, flushing after each one. Headers are written
// lazily on the first event so request-level failures can still use a plain
// HTTP status.
type eventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

// newEventWriter wraps a ResponseWriter. Fails when the writer cannot flush.
func newEventWriter(w http.ResponseWriter) (*eventWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}
	return &eventWriter{w: w, flusher: flusher}, nil
}

// Send implements stream.Sink.
func (e *eventWriter) Send(ev stream.Event) error {
	if !e.started {
		h := e.w.Header()
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		e.w.WriteHeader(http.StatusOK)
		e.started = true
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

// Started reports whether any event has been written.
func (e *eventWriter) Started() bool {
	return e.started
}
