package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aiforce/intelliops-console/internal/api/middleware"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ThreadHandler exposes the retained chat thread list.
type ThreadHandler struct {
	threads ports.ThreadRepository
}

func NewThreadHandler(threads ports.ThreadRepository) *ThreadHandler {
	return &ThreadHandler{threads: threads}
}

// List returns the profile's threads with the retention window applied.
//
// @Summary      List chat threads
// @Tags         threads
// @Produce      json
// @Success      200  {array}  domain.ChatThread
// @Router       /api/threads [get]
func (h *ThreadHandler) List(c echo.Context) error {
	threads, err := h.threads.List(c.Request().Context(), middleware.ProfileID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, threads)
}

// Remove deletes a single thread.
//
// @Summary      Delete a chat thread
// @Tags         threads
// @Param        id  path  string  true  "Thread id"
// @Success      204  "deleted"
// @Router       /api/threads/{id} [delete]
func (h *ThreadHandler) Remove(c echo.Context) error {
	if err := h.threads.Remove(c.Request().Context(), middleware.ProfileID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveAll clears the profile's entire thread history.
//
// @Summary      Clear chat history
// @Tags         threads
// @Success      204  "cleared"
// @Router       /api/threads [delete]
func (h *ThreadHandler) RemoveAll(c echo.Context) error {
	if err := h.threads.RemoveAll(c.Request().Context(), middleware.ProfileID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
