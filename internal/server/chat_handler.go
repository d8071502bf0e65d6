package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/campuslink/campuslink/internal/chat"
	"github.com/campuslink/campuslink/internal/provider"
)

// ChatRunner drives one conversational round trip.
type ChatRunner interface {
	Run(ctx context.Context, userID, message string, history []provider.Turn) (chat.Outcome, error)
}

// Wire DTOs. History is decoded turn by turn so one malformed entry
// degrades to a dropped turn instead of failing the request.
type chatRequest struct {
	Message string            `json:"message"`
	History []json.RawMessage `json:"history"`
}

type turnDTO struct {
	Role  string    `json:"role"`
	Parts []partDTO `json:"parts"`
}

type partDTO struct {
	Text            string         `json:"text,omitempty"`
	ToolCallRequest *toolCallDTO   `json:"toolCallRequest,omitempty"`
	ToolResult      *toolResultDTO `json:"toolResult,omitempty"`
}

type toolCallDTO struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type toolResultDTO struct {
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type chatResponse struct {
	AIMessage string     `json:"aiMessage"`
	Action    *actionDTO `json:"action,omitempty"`
}

type actionDTO struct {
	Type    string         `json:"type"`
	ModalID string         `json:"modalId"`
	Data    map[string]any `json:"data"`
}

// decodeHistory converts raw history entries to turns. Entries that do
// not decode are kept as empty turns; the normalizer drops them.
func decodeHistory(raw []json.RawMessage) []provider.Turn {
	turns := make([]provider.Turn, 0, len(raw))
	for _, entry := range raw {
		var dto turnDTO
		if err := json.Unmarshal(entry, &dto); err != nil {
			turns = append(turns, provider.Turn{})
			continue
		}
		turns = append(turns, dtoToTurn(dto))
	}
	return turns
}

func dtoToTurn(dto turnDTO) provider.Turn {
	turn := provider.Turn{Role: provider.Role(dto.Role)}
	for _, p := range dto.Parts {
		switch {
		case p.ToolCallRequest != nil:
			turn.Parts = append(turn.Parts, provider.Part{ToolCall: &provider.ToolCall{
				Name: p.ToolCallRequest.Name,
				Args: p.ToolCallRequest.Arguments,
			}})
		case p.ToolResult != nil:
			turn.Parts = append(turn.Parts, provider.Part{ToolResult: &provider.ToolResult{
				Name:    p.ToolResult.Name,
				Payload: p.ToolResult.Payload,
				Err:     p.ToolResult.Error,
			}})
		case p.Text != "":
			turn.Parts = append(turn.Parts, provider.Part{Text: p.Text})
		}
	}
	return turn
}

// handleChat is the assistant endpoint. Model-side failures come back
// as 200 with an in-band message: the assistant handled the turn even
// when it could not produce a useful answer. Only a model-service fault
// is a 500.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "message must not be empty")
		return
	}

	history := chat.NormalizeHistory(decodeHistory(req.History), s.historyLimit)

	outcome, err := s.runner.Run(r.Context(), userID, req.Message, history)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away; nothing useful to write.
			return
		}
		s.logger.Error("conversation failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "the assistant is unavailable right now")
		return
	}

	resp := chatResponse{AIMessage: chat.UserMessage(outcome)}
	if ui, ok := outcome.(chat.UIActionOutcome); ok {
		resp.Action = &actionDTO{
			Type:    "openModal",
			ModalID: ui.Directive.ModalID,
			Data:    ui.Directive.Data,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}
