package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ChatClient implements ports.ChatTransport. Each cloud backend speaks a
// slightly different dialect, so the client owns the per-provider endpoint
// selection and request shaping; callers only ever see ports.ChatRequest.
type ChatClient struct {
	baseClient
}

// NewChatClient creates a ChatClient for the given base URL. The HTTP
// timeout is left to the caller's context so a turn deadline can exceed
// the usual request timeout.
func NewChatClient(baseURL string, log zerolog.Logger) ports.ChatTransport {
	c := newBaseClient(baseURL, 0, log)
	return &ChatClient{baseClient: c}
}

type gcpNewMessage struct {
	Role  string `json:"role"`
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

// SendChatMessage posts one turn to the provider's backend and validates
// that the reply carries a string response field. Anything else is
// domain.ErrMalformedResponse.
func (c *ChatClient) SendChatMessage(ctx context.Context, req ports.ChatRequest) (*ports.ChatResponse, error) {
	path, body := shapeRequest(req)

	raw, status, err := c.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, raw); err != nil {
		return nil, fmt.Errorf("chat backend: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("chat backend: %w", domain.ErrMalformedResponse)
	}
	reply, ok := payload["response"].(string)
	if !ok {
		return nil, fmt.Errorf("chat backend: missing response field: %w", domain.ErrMalformedResponse)
	}

	resp := &ports.ChatResponse{SessionID: req.SessionID, Response: reply}
	if sid, ok := payload["session_id"].(string); ok && sid != "" {
		resp.SessionID = sid
	}
	return resp, nil
}

// shapeRequest maps the neutral request onto the provider's wire dialect.
func shapeRequest(req ports.ChatRequest) (string, any) {
	switch req.Provider {
	case domain.ProviderAWS:
		return "/api/aws-bedrock/chat", map[string]any{
			"message":    req.UserMessage,
			"session_id": req.SessionID,
			"history":    historyOrEmpty(req.History),
		}
	case domain.ProviderGCP:
		msg := gcpNewMessage{Role: "user"}
		msg.Parts = append(msg.Parts, struct {
			Text string `json:"text"`
		}{Text: req.UserMessage})
		return "/api/gcp-chat", map[string]any{
			"session_id":    req.SessionID,
			"new_message":   msg,
			"start_session": len(req.History) == 0,
		}
	default:
		return "/chat/", map[string]any{
			"session_id":   req.SessionID,
			"user_message": req.UserMessage,
			"history":      historyOrEmpty(req.History),
		}
	}
}

// historyOrEmpty keeps the wire payload an array even for a first turn.
func historyOrEmpty(h []ports.HistoryEntry) []ports.HistoryEntry {
	if h == nil {
		return []ports.HistoryEntry{}
	}
	return h
}
