package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
)

// Turn is one model round: either final text, or a batch of tool
// requests the model wants executed before it continues.
type Turn struct {
	Text         string
	ToolRequests []*ai.ToolRequest
	Message      *ai.Message
	Usage        Usage
}

// Provider produces one model turn given the system prompt and the
// running transcript.
type Provider interface {
	Generate(ctx context.Context, system string, messages []*ai.Message) (*Turn, error)
}

// GenkitProviderConfig configures the Genkit-backed provider.
type GenkitProviderConfig struct {
	ModelName string
	Tools     []ai.Tool
	Retry     RetryConfig
	Breaker   CircuitBreakerConfig
	// RequestsPerSecond limits outbound model calls. Zero disables
	// the limiter.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// GenkitProvider calls the configured model through Genkit, returning
// tool requests to the caller instead of resolving them internally.
// Calls go through a rate limiter, retry with exponential backoff, and
// a circuit breaker, in that order.
type GenkitProvider struct {
	g         *genkit.Genkit
	modelName string
	toolRefs  []ai.ToolRef
	retry     RetryConfig
	breaker   *CircuitBreaker
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func NewGenkitProvider(g *genkit.Genkit, cfg GenkitProviderConfig) *GenkitProvider {
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialInterval == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	refs := make([]ai.ToolRef, len(cfg.Tools))
	for i, t := range cfg.Tools {
		refs[i] = t
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &GenkitProvider{
		g:         g,
		modelName: cfg.ModelName,
		toolRefs:  refs,
		retry:     cfg.Retry,
		breaker:   NewCircuitBreaker(cfg.Breaker),
		limiter:   limiter,
		logger:    cfg.Logger,
	}
}

// Generate runs one model round. Tool requests come back unresolved so
// the conversation loop can execute and record them itself.
func (p *GenkitProvider) Generate(ctx context.Context, system string, messages []*ai.Message) (*Turn, error) {
	if err := p.breaker.Allow(); err != nil {
		return nil, err
	}

	resp, err := p.generateWithRetry(ctx, system, messages)
	if err != nil {
		p.breaker.Failure()
		return nil, err
	}
	p.breaker.Success()

	turn := &Turn{
		Text:         resp.Text(),
		ToolRequests: resp.ToolRequests(),
		Message:      resp.Message,
	}
	if resp.Usage != nil {
		turn.Usage = Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		}
	}
	return turn, nil
}

// generateWithRetry calls the model with exponential backoff. Each
// attempt is rate limited separately so retries cannot burst past the
// provider quota.
func (p *GenkitProvider) generateWithRetry(ctx context.Context, system string, messages []*ai.Message) (*ai.ModelResponse, error) {
	var lastErr error
	delay := p.retry.InitialInterval
	start := time.Now()

	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		resp, err := genkit.Generate(ctx, p.g,
			ai.WithModelName(p.modelName),
			ai.WithSystem(system),
			ai.WithMessages(messages...),
			ai.WithTools(p.toolRefs...),
			ai.WithReturnToolRequests(true),
		)
		if err == nil {
			p.logger.Debug("model call succeeded",
				"attempts", attempt+1,
				"elapsed", time.Since(start),
			)
			return resp, nil
		}

		lastErr = err
		if !retryableError(err) {
			return nil, fmt.Errorf("generate: %w", err)
		}
		if attempt == p.retry.MaxRetries {
			break
		}

		p.logger.Debug("retrying model call",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, p.retry.MaxInterval)
		}
	}

	return nil, fmt.Errorf("generate after %d retries (elapsed: %v): %w",
		p.retry.MaxRetries, time.Since(start), lastErr)
}
