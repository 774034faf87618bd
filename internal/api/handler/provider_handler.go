package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aiforce/intelliops-console/internal/api/middleware"
	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ProviderHandler exposes the active cloud provider preference.
type ProviderHandler struct {
	providers ports.ProviderService
}

func NewProviderHandler(providers ports.ProviderService) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

type providerResponse struct {
	Provider    domain.CloudProvider `json:"provider"`
	DisplayName string               `json:"display_name"`
}

type resolveProviderRequest struct {
	Access domain.ProviderAccess `json:"access"`
}

type setProviderRequest struct {
	Provider string                `json:"provider" validate:"required,oneof=aws azure gcp onprem"`
	Access   domain.ProviderAccess `json:"access"`
}

// Get returns the saved provider preference, falling back to the default.
//
// @Summary      Get active provider
// @Tags         provider
// @Produce      json
// @Success      200  {object}  providerResponse
// @Router       /api/provider [get]
func (h *ProviderHandler) Get(c echo.Context) error {
	p := h.providers.Get(c.Request().Context(), middleware.ProfileID(c))
	return c.JSON(http.StatusOK, providerResponse{Provider: p, DisplayName: p.DisplayName()})
}

// Resolve applies the mount-time resolution order against the caller's
// access map and persists the outcome.
//
// @Summary      Resolve provider from access map
// @Tags         provider
// @Accept       json
// @Produce      json
// @Param        body  body      resolveProviderRequest  true  "Per-user provider access"
// @Success      200   {object}  providerResponse
// @Router       /api/provider/resolve [post]
func (h *ProviderHandler) Resolve(c echo.Context) error {
	var req resolveProviderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	p, err := h.providers.Resolve(c.Request().Context(), middleware.ProfileID(c), req.Access)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, providerResponse{Provider: p, DisplayName: p.DisplayName()})
}

// Set persists an explicit provider switch.
//
// @Summary      Switch provider
// @Tags         provider
// @Accept       json
// @Produce      json
// @Param        body  body      setProviderRequest  true  "Provider to activate"
// @Success      200   {object}  providerResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/provider [put]
func (h *ProviderHandler) Set(c echo.Context) error {
	var req setProviderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := domain.CloudProvider(req.Provider)
	if err := h.providers.Set(c.Request().Context(), middleware.ProfileID(c), p, req.Access); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, providerResponse{Provider: p, DisplayName: p.DisplayName()})
}
