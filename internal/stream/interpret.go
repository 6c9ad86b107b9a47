package stream

import "encoding/json"

// ResultKind tags how an accumulated buffer was resolved into a final value.
type ResultKind string

// Result kinds.
const (
	// KindStructured means the buffer parsed as the expected JSON document.
	KindStructured ResultKind = "structured"
	// KindFallback means JSON was expected but did not parse; the raw text
	// was wrapped as {"content": ...}. Invalid upstream JSON is expected and
	// tolerated, never an error.
	KindFallback ResultKind = "fallback_wrapped"
	// KindRaw means the step produces free text, always wrapped as
	// {"content": ...}.
	KindRaw ResultKind = "raw"
)

// Interpret resolves the accumulated stream buffer into the value persisted
// for the step. Pure function, never fails.
func Interpret(expectJSON bool, buffer string) (json.RawMessage, ResultKind) {
	if expectJSON {
		var probe any
		if err := json.Unmarshal([]byte(buffer), &probe); err == nil {
			return json.RawMessage(buffer), KindStructured
		}
		return wrapContent(buffer), KindFallback
	}
	return wrapContent(buffer), KindRaw
}

func wrapContent(text string) json.RawMessage {
	wrapped, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		// Marshaling a map[string]string cannot fail.
		return json.RawMessage(`{"content":""}`)
	}
	return wrapped
}
