package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// stubAuth implements the subset of ports.AuthService the guard consults.
type stubAuth struct {
	state domain.AuthState
	user  *domain.User
}

func (a *stubAuth) State(string) domain.AuthState        { return a.state }
func (a *stubAuth) CurrentUser(string) *domain.User      { return a.user }
func (a *stubAuth) Token(context.Context, string) string { return "" }

func (a *stubAuth) Login(context.Context, string, string, string) (*domain.User, error) {
	return nil, nil
}

func (a *stubAuth) Register(context.Context, string, string, string, string) (*domain.User, error) {
	return nil, nil
}

func (a *stubAuth) RefreshSession(context.Context, string) (*domain.User, error) { return nil, nil }
func (a *stubAuth) OnAuthStateChange(string, func(*domain.User)) func()          { return func() {} }
func (a *stubAuth) Logout(context.Context, string)                               {}
func (a *stubAuth) ReportAuthFailure(context.Context, string)                    {}

func runGuard(t *testing.T, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	req.Header.Set(profileHeader, "profile-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	chain := Profile()(mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	if err := chain(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decodeGuardResponse(t *testing.T, rec *httptest.ResponseRecorder) guardResponse {
	t.Helper()
	var body guardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestGuard_CheckingReturns503WithRetryAfter(t *testing.T) {
	rec := runGuard(t, Guard(&stubAuth{state: domain.StateChecking}))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while checking, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestGuard_UnauthenticatedRedirectsToLogin(t *testing.T) {
	rec := runGuard(t, Guard(&stubAuth{state: domain.StateUnauthenticated}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeGuardResponse(t, rec); body.Redirect != "/login" {
		t.Fatalf("expected /login redirect hint, got %q", body.Redirect)
	}
}

func TestGuard_AuthenticatedPassesThrough(t *testing.T) {
	rec := runGuard(t, Guard(&stubAuth{state: domain.StateAuthenticated}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestAdminOnly_NonAdminRedirectsToChat(t *testing.T) {
	auth := &stubAuth{state: domain.StateAuthenticated, user: &domain.User{ID: "u1"}}
	rec := runGuard(t, AdminOnly(auth))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if body := decodeGuardResponse(t, rec); body.Redirect != "/chat" {
		t.Fatalf("expected /chat redirect hint, got %q", body.Redirect)
	}
}

func TestAdminOnly_AdminPassesThrough(t *testing.T) {
	auth := &stubAuth{state: domain.StateAuthenticated, user: &domain.User{ID: "u1", IsAdmin: true}}
	rec := runGuard(t, AdminOnly(auth))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestProfile_MissingHeaderRejected(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Profile()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
