package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stridelabs/stride/internal/tools"
)

// Handlers receives decoded stream events. Nil handlers are skipped.
// OnDelta is called with the full accumulated content after each delta,
// not just the new fragment, so UIs can rerender without bookkeeping.
type Handlers struct {
	OnDelta     func(accumulated string)
	OnToolCalls func(calls []tools.CallResult)
	OnUsage     func(inputTokens, outputTokens int)
	OnDone      func(content string)
	OnError     func(message, code string)
}

// Decoder incrementally parses an SSE response stream. Feed accepts
// chunks of any size: partial lines are buffered until the rest
// arrives. Anything that is not a data line carrying a recognized event
// payload is ignored, so comments, event name lines and unrelated
// fields pass through harmlessly.
type Decoder struct {
	handlers   Handlers
	buf        []byte
	content    strings.Builder
	terminated bool
}

func NewDecoder(h Handlers) *Decoder {
	return &Decoder{handlers: h}
}

// Feed consumes the next chunk of the stream.
func (d *Decoder) Feed(p []byte) {
	if d.terminated {
		return
	}
	d.buf = append(d.buf, p...)
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			return
		}
		line := string(d.buf[:idx])
		d.buf = d.buf[idx+1:]
		d.handleLine(strings.TrimSuffix(line, "\r"))
		if d.terminated {
			return
		}
	}
}

// Close marks the end of the stream. A stream that ended without a done
// or error event still delivers what content it carried, so a dropped
// connection degrades to a truncated answer rather than nothing.
func (d *Decoder) Close() {
	if d.terminated {
		return
	}
	d.terminated = true
	if d.content.Len() > 0 && d.handlers.OnDone != nil {
		d.handlers.OnDone(d.content.String())
	}
}

func (d *Decoder) handleLine(line string) {
	payload, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return
	}

	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return
	}

	switch e.Type {
	case TypeContentDelta:
		d.content.WriteString(e.Text)
		if d.handlers.OnDelta != nil {
			d.handlers.OnDelta(d.content.String())
		}
	case TypeToolCalls:
		if d.handlers.OnToolCalls != nil {
			d.handlers.OnToolCalls(e.ToolCalls)
		}
	case TypeUsage:
		if d.handlers.OnUsage != nil {
			d.handlers.OnUsage(e.InputTokens, e.OutputTokens)
		}
	case TypeDone:
		d.terminated = true
		if d.handlers.OnDone != nil {
			d.handlers.OnDone(d.content.String())
		}
	case TypeError:
		d.terminated = true
		if d.handlers.OnError != nil {
			d.handlers.OnError(e.Message, e.Code)
		}
	}
}

// Content returns the text accumulated so far.
func (d *Decoder) Content() string {
	return d.content.String()
}

// Decode consumes an entire stream from r, dispatching events to h.
// The reader error, if any, is returned after the decoder is closed.
func Decode(r io.Reader, h Handlers) error {
	d := NewDecoder(h)
	defer d.Close()

	buf := make([]byte, 4096)
	br := bufio.NewReader(r)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			d.Feed(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
	}
}
