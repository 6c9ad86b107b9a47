// Package stream implements the token relay between the upstream LLM stream
// and the client connection: line reassembly, event framing, and final-result
// interpretation.
package stream

// Event status values. A stream carries zero or more processing events
// followed by exactly one terminal event (completed or error).
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Event is one frame of the outbound stream, serialized as the JSON payload
// of a "data: <json>\n\n" record.
type Event struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Chunk   string `json:"chunk,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Processing wraps one incremental token delta.
func Processing(chunk string) Event {
	return Event{Status: StatusProcessing, Message: "Generating content...", Chunk: chunk}
}

// Completed is the successful terminal event carrying the interpreted result.
func Completed(result any) Event {
	return Event{Status: StatusCompleted, Result: result}
}

// Failure is the terminal error event. The message is deliberately generic;
// upstream details stay in the server log.
func Failure(message string) Event {
	return Event{Status: StatusError, Message: message}
}

// Sink receives outbound events. Send returns an error when the consumer is
// gone (client disconnect), which aborts the relay.
type Sink interface {
	Send(Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event) error

// Send calls f(e).
func (f SinkFunc) Send(e Event) error { return f(e) }
