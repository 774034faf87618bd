package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// AuthClient implements ports.AuthAPI against the authentication backend.
type AuthClient struct {
	baseClient
}

// NewAuthClient creates an AuthClient for the given base URL.
func NewAuthClient(baseURL string, timeout time.Duration, log zerolog.Logger) ports.AuthAPI {
	return &AuthClient{baseClient: newBaseClient(baseURL, timeout, log)}
}

type sessionResponse struct {
	AccessToken string     `json:"access_token"`
	User        *userModel `json:"user"`
}

type userModel struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

func (m *userModel) toDomain() *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:              m.ID,
		Email:           m.Email,
		Name:            m.Name,
		IsAdmin:         m.IsAdmin,
		IsAuthenticated: true,
	}
}

// Login exchanges credentials for a bearer token. The backend speaks the
// OAuth2 password flow, so credentials go out form-encoded rather than as
// JSON.
func (c *AuthClient) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", domain.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return "", nil, domain.ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", nil, fmt.Errorf("login: %w", domain.ErrMalformedResponse)
	}
	if session.AccessToken == "" {
		return "", nil, fmt.Errorf("login: missing access token: %w", domain.ErrMalformedResponse)
	}
	return session.AccessToken, session.User.toDomain(), nil
}

// Register creates a new account and returns the initial session token.
func (c *AuthClient) Register(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	raw, status, err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body)
	if err != nil {
		return "", nil, err
	}
	if err := classifyStatus(status, raw); err != nil {
		return "", nil, fmt.Errorf("register: %w", err)
	}

	var session sessionResponse
	if err := json.Unmarshal(raw, &session); err != nil {
		return "", nil, fmt.Errorf("register: %w", domain.ErrMalformedResponse)
	}
	if session.AccessToken == "" {
		return "", nil, fmt.Errorf("register: missing access token: %w", domain.ErrMalformedResponse)
	}
	return session.AccessToken, session.User.toDomain(), nil
}

// GetProfile fetches the account behind a token. A 401 here is the signal
// the session no longer holds.
func (c *AuthClient) GetProfile(ctx context.Context, token string) (*domain.User, error) {
	raw, status, err := c.do(ctx, http.MethodGet, "/api/users/me", token, nil)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, raw); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var user userModel
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("get profile: %w", domain.ErrMalformedResponse)
	}
	return user.toDomain(), nil
}
