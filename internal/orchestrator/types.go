// Package orchestrator runs the coaching conversation loop: it composes
// the system prompt from the athlete's context, calls the model, executes
// the tool calls the model asks for, and loops until the model produces a
// final answer or the tool round budget runs out.
package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stridelabs/stride/internal/athlete"
	"github.com/stridelabs/stride/internal/tools"
)

// Validation errors for incoming chat requests.
var (
	ErrNoMessages   = errors.New("messages must not be empty")
	ErrInvalidRole  = errors.New("message role must be user or assistant")
	ErrFirstNotUser = errors.New("first message must be from the user")
	ErrBlankContent = errors.New("message content must not be blank")
)

// ChatMessage is one turn of the client-visible transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a coaching chat request. The athlete is identified by the
// authenticated caller, not by the body. A caller-supplied Context is
// used as-is (after enum sanitization) and skips the store lookup;
// otherwise the context is built fresh.
type Request struct {
	Messages []ChatMessage    `json:"messages"`
	Context  *athlete.Context `json:"athlete_context,omitempty"`
	Stream   bool             `json:"stream,omitempty"`
}

// Validate checks the transcript shape before any model call is made.
func (r *Request) Validate() error {
	if len(r.Messages) == 0 {
		return ErrNoMessages
	}
	if r.Messages[0].Role != "user" {
		return ErrFirstNotUser
	}
	for i, m := range r.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			return fmt.Errorf("message %d: %w (got %q)", i, ErrInvalidRole, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("message %d: %w", i, ErrBlankContent)
		}
	}
	return nil
}

// Usage counts tokens consumed across every model round of a request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (u *Usage) add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Response is the completed outcome of a coaching request: the final
// assistant text plus every tool call made along the way.
type Response struct {
	Content   string             `json:"content"`
	ToolCalls []tools.CallResult `json:"tool_calls,omitempty"`
	Usage     Usage              `json:"usage"`
}
