package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// guardResponse is the envelope for guard rejections. Redirect tells the
// client where to send the user instead of the requested page.
type guardResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// Guard gates routes on the auth state machine. It consults the machine's
// current state and never re-derives authentication itself:
//   - checking: the machine has not settled yet; 503 with Retry-After so
//     the client holds its loading state instead of bouncing to login.
//   - unauthenticated: 401 with a /login redirect hint.
//   - authenticated: pass through.
func Guard(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profileID := ProfileID(c)

			switch auth.State(profileID) {
			case domain.StateChecking:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, guardResponse{Error: "session check in progress"})
			case domain.StateUnauthenticated:
				return c.JSON(http.StatusUnauthorized, guardResponse{Error: "not authenticated", Redirect: "/login"})
			}
			return next(c)
		}
	}
}

// AdminOnly rejects non-administrator accounts. It assumes Guard already
// ran, so an absent user is treated as non-admin rather than re-checked.
func AdminOnly(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := auth.CurrentUser(ProfileID(c))
			if user == nil || !user.IsAdmin {
				return c.JSON(http.StatusForbidden, guardResponse{Error: "administrator access required", Redirect: "/chat"})
			}
			return next(c)
		}
	}
}
