package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aiforce/intelliops-console/internal/api/metrics"
	"github.com/aiforce/intelliops-console/internal/api/middleware"
	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ChatHandler exposes session continuity resolution and the turn protocol.
type ChatHandler struct {
	chat       ports.ChatService
	continuity ports.ContinuityService
}

func NewChatHandler(chat ports.ChatService, continuity ports.ContinuityService) *ChatHandler {
	return &ChatHandler{chat: chat, continuity: continuity}
}

type turnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"  validate:"required"`
	Provider  string `json:"provider" validate:"omitempty,oneof=aws azure gcp onprem"`
}

// Resolve decides which thread seeds the chat view: the one-shot handoff
// record wins, then the thread id in the URL, then a fresh session.
//
// @Summary      Resolve session continuity
// @Tags         chat
// @Produce      json
// @Param        thread  query     string  false  "Thread id from the URL"
// @Success      200     {object}  ports.Resolution
// @Router       /api/chat/resolve [get]
func (h *ChatHandler) Resolve(c echo.Context) error {
	res, err := h.continuity.Resolve(c.Request().Context(), middleware.ProfileID(c), c.QueryParam("thread"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// SendTurn runs one conversation turn. A failed turn still returns 200
// with the error-status message embedded in the thread; only protocol
// violations (empty message, concurrent turn) fail the request.
//
// @Summary      Send a chat message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      turnRequest  true  "Turn input"
// @Success      200   {object}  ports.TurnResult
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/chat/turns [post]
func (h *ChatHandler) SendTurn(c echo.Context) error {
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	provider, ok := domain.ParseProvider(req.Provider)
	if !ok {
		provider = domain.DefaultProvider
	}

	start := time.Now()
	result, err := h.chat.SendTurn(c.Request().Context(), middleware.ProfileID(c), ports.TurnInput{
		SessionID: req.SessionID,
		Message:   req.Message,
		Provider:  provider,
	})
	if err != nil {
		return err
	}

	outcome := "success"
	if result.Failed {
		outcome = "error"
	}
	metrics.ChatTurnsTotal.WithLabelValues(string(provider), outcome).Inc()
	metrics.ChatTurnDuration.WithLabelValues(string(provider)).Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, result)
}

// NewSession abandons the current session and mints a fresh one.
//
// @Summary      Start a new chat
// @Tags         chat
// @Produce      json
// @Success      200  {object}  ports.Resolution
// @Router       /api/chat/new [post]
func (h *ChatHandler) NewSession(c echo.Context) error {
	res, err := h.continuity.NewSession(c.Request().Context(), middleware.ProfileID(c))
	if err != nil {
		return err
	}
	metrics.NewChatsTotal.Inc()
	return c.JSON(http.StatusOK, res)
}
