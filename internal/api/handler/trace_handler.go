package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aiforce/intelliops-console/internal/api/middleware"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

const defaultTraceLimit = 50

// TraceHandler serves the log viewer: recent request/response traces for
// the calling profile's chat turns.
type TraceHandler struct {
	traces ports.TraceService
}

func NewTraceHandler(traces ports.TraceService) *TraceHandler {
	return &TraceHandler{traces: traces}
}

// Recent lists the newest traces, newest first.
//
// @Summary      List recent chat traces
// @Tags         logs
// @Produce      json
// @Param        limit  query     int  false  "Maximum records (default 50)"
// @Success      200    {array}   ports.Trace
// @Router       /api/logs [get]
func (h *TraceHandler) Recent(c echo.Context) error {
	limit := int64(defaultTraceLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	traces, err := h.traces.Recent(c.Request().Context(), middleware.ProfileID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, traces)
}
