package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	dataPrefix = "data: "
	sentinel   = "[DONE]"

	readChunkSize = 4096
)

// ErrTruncated reports an upstream stream that closed before sending the
// [DONE] sentinel.
var ErrTruncated = errors.New("upstream closed before [DONE] sentinel")

// envelope is the shape of one upstream streaming chunk. Only the first
// choice's delta content is consumed.
type envelope struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Relay pumps the upstream byte stream into the sink as processing events
// while accumulating the full text. It returns the accumulated buffer once
// the [DONE] sentinel is seen; any remaining buffered bytes past the sentinel
// are discarded.
//
// Chunk boundaries are arbitrary: a logical line may be split across reads,
// so incomplete tails are carried into the next read. Lines that are not
// valid JSON envelopes are skipped silently.
func Relay(upstream io.Reader, sink Sink) (string, error) {
	var acc strings.Builder
	var carry string
	buf := make([]byte, readChunkSize)

	for {
		n, readErr := upstream.Read(buf)
		if n > 0 {
			carry += string(buf[:n])
			lines := strings.Split(carry, "\n")
			carry = lines[len(lines)-1]

			for _, line := range lines[:len(lines)-1] {
				line = strings.TrimSuffix(line, "\r")
				if !strings.HasPrefix(line, dataPrefix) {
					continue
				}
				payload := line[len(dataPrefix):]
				if payload == sentinel {
					return acc.String(), nil
				}

				var env envelope
				if err := json.Unmarshal([]byte(payload), &env); err != nil {
					// Malformed chunk; not fatal.
					continue
				}
				var delta string
				if len(env.Choices) > 0 {
					delta = env.Choices[0].Delta.Content
				}
				acc.WriteString(delta)
				if err := sink.Send(Processing(delta)); err != nil {
					return "", fmt.Errorf("write to client: %w", err)
				}
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				return "", ErrTruncated
			}
			return "", fmt.Errorf("read upstream: %w", readErr)
		}
	}
}
