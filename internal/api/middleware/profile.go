package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// profileHeader carries the browser profile identity. Every console route
// is scoped to one profile; state never leaks across profiles.
const profileHeader = "X-Profile-ID"

const profileContextKey = "profile_id"

// Profile extracts the profile id header and injects it into the request
// context. Requests without one are rejected before any handler runs.
func Profile() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profileID := c.Request().Header.Get(profileHeader)
			if profileID == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing "+profileHeader+" header")
			}
			c.Set(profileContextKey, profileID)
			return next(c)
		}
	}
}

// ProfileID returns the profile id injected by Profile, or "" when the
// middleware did not run.
func ProfileID(c echo.Context) string {
	id, _ := c.Get(profileContextKey).(string)
	return id
}
