// Package api exposes the coaching service over HTTP: a JWT-protected
// chat endpoint with optional SSE streaming, conversation history reads,
// and health probes.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/stridelabs/stride/internal/conversation"
	"github.com/stridelabs/stride/internal/orchestrator"
)

// CoachRunner runs one coaching request end to end.
type CoachRunner interface {
	Run(ctx context.Context, athleteID string, req orchestrator.Request) (*orchestrator.Response, error)
}

// ConversationStore persists and reads chat history.
type ConversationStore interface {
	AppendTurn(ctx context.Context, conversationID uuid.UUID, athleteID, userContent, assistantContent string) error
	Messages(ctx context.Context, conversationID uuid.UUID, athleteID string) ([]conversation.Message, error)
}

// Config wires the server's dependencies.
type Config struct {
	Coach         CoachRunner
	Conversations ConversationStore
	AuthSecret    []byte
	Logger        *slog.Logger
	// Ready reports whether downstream dependencies are reachable.
	// Nil means the readiness probe always passes.
	Ready func(ctx context.Context) error
}

// Server is the HTTP surface of the coaching service.
type Server struct {
	coach         CoachRunner
	conversations ConversationStore
	authSecret    []byte
	logger        *slog.Logger
	ready         func(ctx context.Context) error
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Coach == nil {
		return nil, fmt.Errorf("coach runner is required")
	}
	if cfg.Conversations == nil {
		return nil, fmt.Errorf("conversation store is required")
	}
	if len(cfg.AuthSecret) == 0 {
		return nil, fmt.Errorf("auth secret is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Server{
		coach:         cfg.Coach,
		conversations: cfg.Conversations,
		authSecret:    cfg.AuthSecret,
		logger:        cfg.Logger,
		ready:         cfg.Ready,
	}, nil
}

// Handler builds the routing tree. Health probes are public; everything
// under /api/v1/ requires a bearer token.
func (s *Server) Handler() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("POST /api/v1/coach", s.handleCoach)
	protected.HandleFunc("GET /api/v1/conversations/{id}", s.handleConversation)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("/api/v1/", authMiddleware(s.authSecret, s.logger)(protected))

	return recoveryMiddleware(s.logger)(loggingMiddleware(s.logger)(mux))
}
