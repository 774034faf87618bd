package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aiforce/intelliops-console/internal/api/middleware"
	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// PromptHandler exposes the provider-scoped prompt catalog and the
// optimistic favorite toggle.
type PromptHandler struct {
	prompts ports.PromptService
	auth    ports.AuthService
}

func NewPromptHandler(prompts ports.PromptService, auth ports.AuthService) *PromptHandler {
	return &PromptHandler{prompts: prompts, auth: auth}
}

type favoriteResponse struct {
	PromptID  string `json:"prompt_id"`
	Favorited bool   `json:"favorited"`
}

// List returns prompts for the given provider, favorites first. An admin
// account sees the full catalog.
//
// @Summary      List prompts
// @Tags         prompts
// @Produce      json
// @Param        provider  query     string  false  "Cloud provider filter"
// @Param        category  query     string  false  "Category filter"
// @Success      200       {array}   domain.Prompt
// @Router       /api/prompts [get]
func (h *PromptHandler) List(c echo.Context) error {
	profileID := middleware.ProfileID(c)

	provider, ok := domain.ParseProvider(c.QueryParam("provider"))
	if !ok {
		provider = domain.DefaultProvider
	}

	admin := false
	if user := h.auth.CurrentUser(profileID); user != nil {
		admin = user.IsAdmin
	}

	prompts, err := h.prompts.ListForProvider(c.Request().Context(), profileID, c.QueryParam("category"), provider, admin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prompts)
}

// ToggleFavorite flips a prompt's favorite flag. The local state is
// already updated when this returns, even if server reconciliation is
// still pending.
//
// @Summary      Toggle prompt favorite
// @Tags         prompts
// @Produce      json
// @Param        id  path  string  true  "Prompt id"
// @Success      200  {object}  favoriteResponse
// @Router       /api/prompts/{id}/favorite [post]
func (h *PromptHandler) ToggleFavorite(c echo.Context) error {
	promptID := c.Param("id")
	favorited, err := h.prompts.ToggleFavorite(c.Request().Context(), middleware.ProfileID(c), promptID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favoriteResponse{PromptID: promptID, Favorited: favorited})
}

// Create adds a prompt to the catalog.
//
// @Summary      Create a prompt
// @Tags         prompts
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Prompt  true  "Prompt"
// @Success      201   {object}  domain.Prompt
// @Router       /api/prompts [post]
func (h *PromptHandler) Create(c echo.Context) error {
	var p domain.Prompt
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	created, err := h.prompts.Create(c.Request().Context(), middleware.ProfileID(c), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Update replaces a prompt's fields.
//
// @Summary      Update a prompt
// @Tags         prompts
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Prompt id"
// @Param        body  body      domain.Prompt  true  "Prompt"
// @Success      200   {object}  domain.Prompt
// @Router       /api/prompts/{id} [put]
func (h *PromptHandler) Update(c echo.Context) error {
	var p domain.Prompt
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.prompts.Update(c.Request().Context(), middleware.ProfileID(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a prompt.
//
// @Summary      Delete a prompt
// @Tags         prompts
// @Param        id  path  string  true  "Prompt id"
// @Success      204  "deleted"
// @Router       /api/prompts/{id} [delete]
func (h *PromptHandler) Delete(c echo.Context) error {
	if err := h.prompts.Delete(c.Request().Context(), middleware.ProfileID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
