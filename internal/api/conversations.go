package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/stridelabs/stride/internal/conversation"
)

type conversationResponse struct {
	ConversationID string                 `json:"conversation_id"`
	Messages       []conversation.Message `json:"messages"`
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := athleteIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing authentication", s.logger)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "conversation id must be a UUID", s.logger)
		return
	}

	messages, err := s.conversations.Messages(r.Context(), id, athleteID)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "conversation not found", s.logger)
			return
		}
		s.logger.Error("failed to load conversation", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load conversation", s.logger)
		return
	}

	if messages == nil {
		messages = []conversation.Message{}
	}
	writeJSON(w, http.StatusOK, conversationResponse{
		ConversationID: id.String(),
		Messages:       messages,
	}, s.logger)
}
