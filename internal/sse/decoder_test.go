package sse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelabs/stride/internal/tools"
)

type captured struct {
	deltas    []string
	toolCalls []tools.CallResult
	usageIn   int
	usageOut  int
	done      []string
	errMsg    string
	errCode   string
}

func (c *captured) handlers() Handlers {
	return Handlers{
		OnDelta:     func(s string) { c.deltas = append(c.deltas, s) },
		OnToolCalls: func(calls []tools.CallResult) { c.toolCalls = calls },
		OnUsage:     func(in, out int) { c.usageIn, c.usageOut = in, out },
		OnDone:      func(s string) { c.done = append(c.done, s) },
		OnError:     func(msg, code string) { c.errMsg, c.errCode = msg, code },
	}
}

func TestDecoderFullStream(t *testing.T) {
	t.Parallel()

	stream := "event: tool_calls\n" +
		`data: {"type":"tool_calls","tool_calls":[{"tool_name":"get_wellness_data","success":true,"result":[]}]}` + "\n\n" +
		"event: content_delta\n" +
		`data: {"type":"content_delta","text":"Your recovery "}` + "\n\n" +
		"event: content_delta\n" +
		`data: {"type":"content_delta","text":"looks good."}` + "\n\n" +
		"event: usage\n" +
		`data: {"type":"usage","input_tokens":750,"output_tokens":42}` + "\n\n" +
		"event: done\n" +
		`data: {"type":"done"}` + "\n\n"

	var c captured
	require.NoError(t, Decode(strings.NewReader(stream), c.handlers()))

	assert.Equal(t, []string{"Your recovery ", "Your recovery looks good."}, c.deltas)
	require.Len(t, c.toolCalls, 1)
	assert.Equal(t, "get_wellness_data", c.toolCalls[0].ToolName)
	assert.Equal(t, 750, c.usageIn)
	assert.Equal(t, 42, c.usageOut)
	assert.Equal(t, []string{"Your recovery looks good."}, c.done)
	assert.Empty(t, c.errMsg)
}

func TestDecoderPartialChunks(t *testing.T) {
	t.Parallel()

	stream := `data: {"type":"content_delta","text":"split across feeds"}` + "\n" +
		`data: {"type":"done"}` + "\n"

	var c captured
	d := NewDecoder(c.handlers())
	// Feed one byte at a time: no frame boundary alignment at all.
	for i := range len(stream) {
		d.Feed([]byte{stream[i]})
	}

	assert.Equal(t, []string{"split across feeds"}, c.deltas)
	assert.Equal(t, []string{"split across feeds"}, c.done)
}

func TestDecoderIgnoresGarbage(t *testing.T) {
	t.Parallel()

	stream := ": comment line\n" +
		"id: 7\n" +
		"data: not json at all\n" +
		`data: {"type":"heartbeat"}` + "\n" +
		`data: {"no_type_field":true}` + "\n" +
		`data: {"type":"content_delta","text":"still works"}` + "\n" +
		`data: {"type":"done"}` + "\n"

	var c captured
	require.NoError(t, Decode(strings.NewReader(stream), c.handlers()))

	assert.Equal(t, []string{"still works"}, c.deltas)
	assert.Equal(t, []string{"still works"}, c.done)
}

func TestDecoderCloseWithoutDone(t *testing.T) {
	t.Parallel()

	var c captured
	d := NewDecoder(c.handlers())
	d.Feed([]byte(`data: {"type":"content_delta","text":"truncated answer"}` + "\n"))
	d.Close()

	assert.Equal(t, []string{"truncated answer"}, c.done)

	// A second close must not redeliver.
	d.Close()
	assert.Len(t, c.done, 1)
}

func TestDecoderCloseWithoutContent(t *testing.T) {
	t.Parallel()

	var c captured
	d := NewDecoder(c.handlers())
	d.Close()

	assert.Empty(t, c.done)
}

func TestDecoderStopsAfterError(t *testing.T) {
	t.Parallel()

	stream := `data: {"type":"error","error":"model call failed","code":"UPSTREAM_ERROR"}` + "\n" +
		`data: {"type":"content_delta","text":"should never arrive"}` + "\n"

	var c captured
	require.NoError(t, Decode(strings.NewReader(stream), c.handlers()))

	assert.Equal(t, "model call failed", c.errMsg)
	assert.Equal(t, "UPSTREAM_ERROR", c.errCode)
	assert.Empty(t, c.deltas)
	assert.Empty(t, c.done)
}

func TestDecoderStopsAfterDone(t *testing.T) {
	t.Parallel()

	var c captured
	d := NewDecoder(c.handlers())
	d.Feed([]byte(`data: {"type":"done"}` + "\n"))
	d.Feed([]byte(`data: {"type":"content_delta","text":"late"}` + "\n"))

	assert.Empty(t, c.deltas)
	assert.Equal(t, []string{""}, c.done)
}

func TestDecoderCRLFLines(t *testing.T) {
	t.Parallel()

	var c captured
	d := NewDecoder(c.handlers())
	d.Feed([]byte("data: {\"type\":\"content_delta\",\"text\":\"crlf\"}\r\n"))
	d.Feed([]byte("data: {\"type\":\"done\"}\r\n"))

	assert.Equal(t, []string{"crlf"}, c.deltas)
	assert.Equal(t, []string{"crlf"}, c.done)
}
