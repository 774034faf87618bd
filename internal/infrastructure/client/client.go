// Package client holds the HTTP clients for the external backends the
// console fronts: the authentication service, the chat backends, and the
// prompt catalog. All clients classify failures into the domain error
// taxonomy so callers can branch with errors.Is.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

const maxResponseBytes = 4 << 20

// baseClient carries the pieces every backend client shares.
type baseClient struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

func newBaseClient(baseURL string, timeout time.Duration, log zerolog.Logger) baseClient {
	return baseClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// do performs one JSON round trip and returns the raw body with its status
// code. Transport failures come back as domain.ErrTimeout when the context
// deadline ran out, domain.ErrNetwork otherwise.
func (c *baseClient) do(ctx context.Context, method, path, token string, body any) ([]byte, int, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, 0, fmt.Errorf("%s %s: %w", method, path, domain.ErrTimeout)
		}
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, domain.ErrNetwork)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", domain.ErrNetwork)
	}
	return raw, resp.StatusCode, nil
}

// classifyStatus maps backend failure responses onto the domain taxonomy.
// A 401 means the bearer token no longer holds; a deactivated-account
// rejection is kept distinct so the session-expiry machinery does not fall
// back to a cached user for it.
func classifyStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if bytes.Contains(bytes.ToLower(body), []byte("deactivated")) {
		return domain.ErrAccountDeactivated
	}
	if status == http.StatusUnauthorized {
		return domain.ErrAuth
	}
	return fmt.Errorf("unexpected status %d: %s", status, truncateBody(body))
}

func truncateBody(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
