package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stridelabs/stride/internal/athlete"
	"github.com/stridelabs/stride/internal/orchestrator"
	"github.com/stridelabs/stride/internal/sse"
	"github.com/stridelabs/stride/internal/tools"
)

const (
	maxRequestBytes = 1 << 20

	persistTimeout = 10 * time.Second
)

type coachRequest struct {
	orchestrator.Request
	// ConversationID groups turns into one persisted conversation. A
	// fresh ID is assigned when absent.
	ConversationID string `json:"conversation_id,omitempty"`
}

type coachResponse struct {
	ConversationID string             `json:"conversation_id"`
	Content        string             `json:"content"`
	ToolCalls      []tools.CallResult `json:"tool_calls,omitempty"`
	Usage          orchestrator.Usage `json:"usage"`
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing authentication", s.logger)
		return
	}

	var req coachRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON", s.logger)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), s.logger)
		return
	}

	conversationID := uuid.New()
	if req.ConversationID != "" {
		parsed, err := uuid.Parse(req.ConversationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "conversation_id must be a UUID", s.logger)
			return
		}
		conversationID = parsed
	}

	if req.Stream {
		s.streamCoach(w, r, athleteID, conversationID, req.Request)
		return
	}

	resp, err := s.coach.Run(r.Context(), athleteID, req.Request)
	if err != nil {
		status, code := coachErrorStatus(err)
		writeError(w, status, code, coachErrorMessage(err), s.logger)
		return
	}
	s.persistTurn(r.Context(), conversationID, athleteID, req.Request, resp.Content)

	writeJSON(w, http.StatusOK, coachResponse{
		ConversationID: conversationID.String(),
		Content:        resp.Content,
		ToolCalls:      resp.ToolCalls,
		Usage:          resp.Usage,
	}, s.logger)
}

// streamCoach delivers the response as an SSE stream. The stream is
// opened before the model runs, so failures after that point arrive as
// an error event rather than an HTTP status.
func (s *Server) streamCoach(w http.ResponseWriter, r *http.Request, athleteID string, conversationID uuid.UUID, req orchestrator.Request) {
	writer, err := sse.NewWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming is not supported by this connection", s.logger)
		return
	}
	ctx := r.Context()

	resp, err := s.coach.Run(ctx, athleteID, req)
	if err != nil {
		_, code := coachErrorStatus(err)
		if sendErr := writer.Send(ctx, sse.ErrorEvent(coachErrorMessage(err), streamErrorCode(code))); sendErr != nil {
			s.logger.Debug("failed to write error event", "error", sendErr)
		}
		return
	}
	s.persistTurn(ctx, conversationID, athleteID, req, resp.Content)

	events := make([]sse.Event, 0, 4)
	if len(resp.ToolCalls) > 0 {
		events = append(events, sse.ToolCalls(resp.ToolCalls))
	}
	events = append(events,
		sse.Delta(resp.Content),
		sse.UsageEvent(resp.Usage.InputTokens, resp.Usage.OutputTokens),
		sse.Done(),
	)
	for _, e := range events {
		if err := writer.Send(ctx, e); err != nil {
			s.logger.Debug("stream interrupted", "error", err)
			return
		}
	}
}

// persistTurn records the latest exchange. Failures are logged, never
// surfaced: losing a history row should not fail the coaching reply.
func (s *Server) persistTurn(ctx context.Context, conversationID uuid.UUID, athleteID string, req orchestrator.Request, content string) {
	userContent := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			userContent = req.Messages[i].Content
			break
		}
	}

	// The request context may already be canceled by a disconnecting
	// client; the turn still happened and should be recorded.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.conversations.AppendTurn(ctx, conversationID, athleteID, userContent, content); err != nil {
		s.logger.Warn("failed to persist conversation turn",
			"conversation_id", conversationID, "athlete_id", athleteID, "error", err)
	}
}

func coachErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, athlete.ErrNotFound):
		return http.StatusNotFound, "athlete_not_found"
	case errors.Is(err, orchestrator.ErrNoMessages),
		errors.Is(err, orchestrator.ErrInvalidRole),
		errors.Is(err, orchestrator.ErrFirstNotUser),
		errors.Is(err, orchestrator.ErrBlankContent):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, orchestrator.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusBadGateway, "model_error"
	}
}

func coachErrorMessage(err error) string {
	switch {
	case errors.Is(err, athlete.ErrNotFound):
		return "athlete profile not found"
	case errors.Is(err, orchestrator.ErrCircuitOpen):
		return "the coaching model is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "the request took too long to complete"
	default:
		return "the coaching model could not complete the request"
	}
}

// streamErrorCode maps the HTTP-oriented error code to the uppercase
// codes carried on SSE error events.
func streamErrorCode(code string) string {
	switch code {
	case "athlete_not_found":
		return "NOT_FOUND"
	case "model_unavailable":
		return "UNAVAILABLE"
	case "timeout":
		return "TIMEOUT"
	default:
		return "UPSTREAM_ERROR"
	}
}
