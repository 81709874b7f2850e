package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/firebase/genkit/go/ai"

	"github.com/stridelabs/stride/internal/athlete"
	"github.com/stridelabs/stride/internal/prompt"
	"github.com/stridelabs/stride/internal/tools"
)

const (
	defaultMaxToolRounds  = 5
	defaultRequestTimeout = 3 * time.Minute

	// emptyResponseMessage covers the rare case where the model returns
	// neither text nor tool requests.
	emptyResponseMessage = "I'm sorry, I couldn't come up with a response just now. " +
		"Could you rephrase your question?"

	// toolBudgetMessage is returned when the model keeps requesting
	// tools past the round budget.
	toolBudgetMessage = "I'm sorry, I couldn't finish working through your request. " +
		"I gathered some of your training data along the way, but ran out of room " +
		"to pull everything together. Could you try asking again, perhaps with a " +
		"narrower question?"
)

// ContextBuilder assembles the athlete context the system prompt is
// composed from.
type ContextBuilder interface {
	Build(ctx context.Context, athleteID string, opts athlete.Options) (*athlete.Context, error)
}

// ToolRunner executes a single tool call on behalf of an athlete.
type ToolRunner interface {
	Execute(ctx context.Context, athleteID, tool string, input map[string]any) tools.CallResult
}

// Config configures the conversation loop.
type Config struct {
	Provider Provider
	Builder  ContextBuilder
	Runner   ToolRunner
	Logger   *slog.Logger

	// MaxToolRounds caps provider round trips per request; a model
	// still requesting tools on the last round gets toolBudgetMessage.
	MaxToolRounds int
	// RequestTimeout bounds the whole request including every model
	// round and tool call.
	RequestTimeout time.Duration
}

func (c *Config) validate() error {
	if c.Provider == nil {
		return fmt.Errorf("provider is required")
	}
	if c.Builder == nil {
		return fmt.Errorf("context builder is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("tool runner is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Orchestrator drives coaching conversations end to end.
type Orchestrator struct {
	provider Provider
	builder  ContextBuilder
	runner   ToolRunner
	logger   *slog.Logger

	maxToolRounds  int
	requestTimeout time.Duration
}

func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = defaultMaxToolRounds
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	return &Orchestrator{
		provider:       cfg.Provider,
		builder:        cfg.Builder,
		runner:         cfg.Runner,
		logger:         cfg.Logger,
		maxToolRounds:  cfg.MaxToolRounds,
		requestTimeout: cfg.RequestTimeout,
	}, nil
}

// Run executes one coaching request: compose the system prompt, then
// alternate model rounds and tool rounds until the model answers in
// text or the round budget runs out. The transcript grows append-only;
// earlier turns are never rewritten.
func (o *Orchestrator) Run(ctx context.Context, athleteID string, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()

	actx := req.Context
	if actx == nil {
		built, err := o.builder.Build(ctx, athleteID, athlete.Options{IncludeCheckin: true})
		if err != nil {
			return nil, fmt.Errorf("building athlete context: %w", err)
		}
		actx = built
	} else {
		actx = actx.Sanitized()
	}
	system := prompt.Compose(actx)

	messages := make([]*ai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		part := ai.NewTextPart(m.Content)
		if m.Role == "assistant" {
			messages = append(messages, ai.NewModelMessage(part))
		} else {
			messages = append(messages, ai.NewUserMessage(part))
		}
	}

	// Tool handlers registered with the model runtime resolve the
	// athlete from the context, so it must be attached before the
	// first round.
	ctx = tools.ContextWithAthleteID(ctx, athleteID)

	// Each iteration is one provider round trip; the model requesting
	// tools on the final round counts as budget exhaustion, so no
	// request ever makes more than maxToolRounds model calls.
	var (
		usage Usage
		calls []tools.CallResult
	)
	for round := 0; round < o.maxToolRounds; round++ {
		turn, err := o.provider.Generate(ctx, system, messages)
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}
		usage.add(turn.Usage)

		if len(turn.ToolRequests) == 0 {
			content := turn.Text
			if strings.TrimSpace(content) == "" {
				o.logger.Warn("model returned empty response", "athlete_id", athleteID, "round", round)
				content = emptyResponseMessage
			}
			return &Response{Content: content, ToolCalls: calls, Usage: usage}, nil
		}

		if round == o.maxToolRounds-1 {
			break
		}

		messages = append(messages, turn.Message)
		results := o.runTools(ctx, athleteID, turn.ToolRequests)
		calls = append(calls, results...)
		messages = append(messages, toolResponseMessage(turn.ToolRequests, results))
	}

	o.logger.Warn("tool round budget exhausted",
		"athlete_id", athleteID, "rounds", o.maxToolRounds, "tool_calls", len(calls))
	return &Response{Content: toolBudgetMessage, ToolCalls: calls, Usage: usage}, nil
}

// runTools executes one round's requests concurrently, preserving
// request order in the results.
func (o *Orchestrator) runTools(ctx context.Context, athleteID string, requests []*ai.ToolRequest) []tools.CallResult {
	results := make([]tools.CallResult, len(requests))
	var wg sync.WaitGroup
	for i, tr := range requests {
		wg.Add(1)
		go func(i int, tr *ai.ToolRequest) {
			defer wg.Done()
			results[i] = o.runner.Execute(ctx, athleteID, tr.Name, toolInput(tr.Input))
		}(i, tr)
	}
	wg.Wait()
	return results
}

// toolResponseMessage wraps a round's results into the tool message the
// next model round consumes. Failures are passed back as readable text
// so the model can react instead of the request aborting.
func toolResponseMessage(requests []*ai.ToolRequest, results []tools.CallResult) *ai.Message {
	parts := make([]*ai.Part, len(results))
	for i, res := range results {
		var content string
		if res.Success {
			b, err := json.Marshal(res.Result)
			if err != nil {
				content = fmt.Sprintf("Error: could not encode %s result", res.ToolName)
			} else {
				content = string(b)
			}
		} else {
			content = "Error: " + res.Error
		}
		parts[i] = ai.NewToolResponsePart(&ai.ToolResponse{
			Name: requests[i].Name,
			Ref:  requests[i].Ref,
			Output: map[string]any{
				"content":  content,
				"is_error": !res.Success,
			},
		})
	}
	return ai.NewMessage(ai.RoleTool, nil, parts...)
}

// toolInput coerces the request payload into the map the executor
// validates. Non-object payloads come back nil and fail validation
// downstream.
func toolInput(input any) map[string]any {
	switch v := input.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil
		}
		return m
	}
}
