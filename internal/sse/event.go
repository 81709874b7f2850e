// Package sse implements the server-sent event stream used to deliver
// coaching responses, plus a client-side decoder for consuming it.
//
// A response stream carries, in order: one tool_calls event when any
// tools ran, one or more content_delta events, one usage event, and a
// terminal done event. Failures replace the remainder of the stream
// with a single error event.
package sse

import (
	"encoding/json"
	"fmt"

	"github.com/stridelabs/stride/internal/tools"
)

// Type identifies an event on the wire.
type Type string

const (
	TypeContentDelta Type = "content_delta"
	TypeToolCalls    Type = "tool_calls"
	TypeUsage        Type = "usage"
	TypeDone         Type = "done"
	TypeError        Type = "error"
)

// Event is one frame of the response stream. Which fields are populated
// depends on Type; MarshalJSON emits only the fields the type defines.
type Event struct {
	Type Type

	// content_delta
	Text string

	// tool_calls
	ToolCalls []tools.CallResult

	// usage
	InputTokens  int
	OutputTokens int

	// error
	Message string
	Code    string
}

// Delta builds a content_delta event.
func Delta(text string) Event {
	return Event{Type: TypeContentDelta, Text: text}
}

// ToolCalls builds a tool_calls event.
func ToolCalls(calls []tools.CallResult) Event {
	return Event{Type: TypeToolCalls, ToolCalls: calls}
}

// UsageEvent builds a usage event.
func UsageEvent(inputTokens, outputTokens int) Event {
	return Event{Type: TypeUsage, InputTokens: inputTokens, OutputTokens: outputTokens}
}

// Done builds the terminal done event.
func Done() Event {
	return Event{Type: TypeDone}
}

// ErrorEvent builds a terminal error event.
func ErrorEvent(message, code string) Event {
	return Event{Type: TypeError, Message: message, Code: code}
}

// MarshalJSON emits exactly the fields each event type defines. Usage
// events always carry both token counts, even when zero; done carries
// nothing beyond its type.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case TypeContentDelta:
		return json.Marshal(struct {
			Type Type   `json:"type"`
			Text string `json:"text"`
		}{e.Type, e.Text})
	case TypeToolCalls:
		return json.Marshal(struct {
			Type      Type               `json:"type"`
			ToolCalls []tools.CallResult `json:"tool_calls"`
		}{e.Type, e.ToolCalls})
	case TypeUsage:
		return json.Marshal(struct {
			Type         Type `json:"type"`
			InputTokens  int  `json:"input_tokens"`
			OutputTokens int  `json:"output_tokens"`
		}{e.Type, e.InputTokens, e.OutputTokens})
	case TypeDone:
		return json.Marshal(struct {
			Type Type `json:"type"`
		}{e.Type})
	case TypeError:
		return json.Marshal(struct {
			Type    Type   `json:"type"`
			Message string `json:"error"`
			Code    string `json:"code,omitempty"`
		}{e.Type, e.Message, e.Code})
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
}

// UnmarshalJSON parses a wire payload back into an Event, rejecting
// payloads whose type is missing or unknown.
func (e *Event) UnmarshalJSON(data []byte) error {
	var aux struct {
		Type         Type               `json:"type"`
		Text         string             `json:"text"`
		ToolCalls    []tools.CallResult `json:"tool_calls"`
		InputTokens  int                `json:"input_tokens"`
		OutputTokens int                `json:"output_tokens"`
		Message      string             `json:"error"`
		Code         string             `json:"code"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch aux.Type {
	case TypeContentDelta, TypeToolCalls, TypeUsage, TypeDone, TypeError:
	default:
		return fmt.Errorf("unknown event type %q", aux.Type)
	}
	*e = Event{
		Type:         aux.Type,
		Text:         aux.Text,
		ToolCalls:    aux.ToolCalls,
		InputTokens:  aux.InputTokens,
		OutputTokens: aux.OutputTokens,
		Message:      aux.Message,
		Code:         aux.Code,
	}
	return nil
}
