package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectSink records every event it receives.
type collectSink struct {
	events []Event
	failAt int // fail the Nth send (1-based), 0 disables
}

func (s *collectSink) Send(e Event) error {
	s.events = append(s.events, e)
	if s.failAt > 0 && len(s.events) >= s.failAt {
		return errors.New("client gone")
	}
	return nil
}

func chunkLine(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}` + "\n\n"
}

func TestRelayAccumulatesAndEmitsDeltas(t *testing.T) {
	input := chunkLine("Hel") + chunkLine("lo") + "data: [DONE]\n\n"
	sink := &collectSink{}

	text, err := Relay(strings.NewReader(input), sink)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)

	require.Len(t, sink.events, 2)
	assert.Equal(t, StatusProcessing, sink.events[0].Status)
	assert.Equal(t, "Hel", sink.events[0].Chunk)
	assert.Equal(t, "lo", sink.events[1].Chunk)
}

func TestRelayChunkBoundaryInvariance(t *testing.T) {
	input := chunkLine("alpha") + chunkLine("beta") + chunkLine("gamma") + "data: [DONE]\n\n"

	whole := &collectSink{}
	wantText, err := Relay(strings.NewReader(input), whole)
	require.NoError(t, err)

	// One byte at a time is the worst possible chunking.
	bytewise := &collectSink{}
	gotText, err := Relay(iotest.OneByteReader(strings.NewReader(input)), bytewise)
	require.NoError(t, err)

	assert.Equal(t, wantText, gotText)
	assert.Equal(t, whole.events, bytewise.events)

	// And a few awkward fixed sizes.
	for _, size := range []int{2, 3, 7, 17} {
		sink := &collectSink{}
		text, err := Relay(fixedChunkReader{r: strings.NewReader(input), size: size}, sink)
		require.NoError(t, err, "chunk size %d", size)
		assert.Equal(t, wantText, text, "chunk size %d", size)
		assert.Equal(t, whole.events, sink.events, "chunk size %d", size)
	}
}

// fixedChunkReader delivers at most size bytes per Read call.
type fixedChunkReader struct {
	r    io.Reader
	size int
}

func (c fixedChunkReader) Read(p []byte) (int, error) {
	if len(p) > c.size {
		p = p[:c.size]
	}
	return c.r.Read(p)
}

func TestRelaySentinelStopsProcessing(t *testing.T) {
	// Bytes after the sentinel must not produce events.
	input := chunkLine("before") + "data: [DONE]\n\n" + chunkLine("after")
	sink := &collectSink{}

	text, err := Relay(strings.NewReader(input), sink)
	require.NoError(t, err)
	assert.Equal(t, "before", text)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "before", sink.events[0].Chunk)
}

func TestRelaySkipsMalformedPayloads(t *testing.T) {
	input := "data: {not json}\n" + chunkLine("ok") + "data: also not json\n" + "data: [DONE]\n\n"
	sink := &collectSink{}

	text, err := Relay(strings.NewReader(input), sink)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Len(t, sink.events, 1)
}

func TestRelayIgnoresNonDataLines(t *testing.T) {
	input := ": keepalive\n\n" + chunkLine("x") + "data: [DONE]\n\n"
	sink := &collectSink{}

	text, err := Relay(strings.NewReader(input), sink)
	require.NoError(t, err)
	assert.Equal(t, "x", text)
}

func TestRelayHandlesCRLF(t *testing.T) {
	input := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\r\n\r\ndata: [DONE]\r\n"
	sink := &collectSink{}

	text, err := Relay(strings.NewReader(input), sink)
	require.NoError(t, err)
	assert.Equal(t, "a", text)
}

func TestRelayEmitsEventForEmptyDelta(t *testing.T) {
	// Envelopes that don't match the delta shape still produce an empty
	// processing event, matching the upstream role/finish chunks.
	input := `data: {"choices":[{"finish_reason":"stop"}]}` + "\ndata: [DONE]\n"
	sink := &collectSink{}

	text, err := Relay(strings.NewReader(input), sink)
	require.NoError(t, err)
	assert.Equal(t, "", text)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "", sink.events[0].Chunk)
}

func TestRelayTruncatedStream(t *testing.T) {
	input := chunkLine("partial") // no sentinel
	sink := &collectSink{}

	_, err := Relay(strings.NewReader(input), sink)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestRelayReadFailure(t *testing.T) {
	boom := errors.New("connection reset")
	sink := &collectSink{}

	_, err := Relay(iotest.ErrReader(boom), sink)
	assert.ErrorIs(t, err, boom)
}

func TestRelayAbortsWhenSinkFails(t *testing.T) {
	input := chunkLine("a") + chunkLine("b") + "data: [DONE]\n\n"
	sink := &collectSink{failAt: 1}

	_, err := Relay(strings.NewReader(input), sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client gone")
	// No further events after the failed write.
	assert.Len(t, sink.events, 1)
}
