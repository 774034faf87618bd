package domain

import "errors"

// Transport and auth failure classes. Infrastructure clients wrap their
// raw errors with one of these so services can branch with errors.Is
// without inspecting response bodies.
var (
	ErrNetwork            = errors.New("network failure")
	ErrTimeout            = errors.New("request timed out")
	ErrAuth               = errors.New("authentication failed")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrMalformedResponse  = errors.New("malformed upstream response")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrThreadNotFound     = errors.New("thread not found")
	ErrTurnInFlight       = errors.New("a chat turn is already in flight for this session")
	ErrEmptyMessage       = errors.New("message must not be empty")
	ErrProviderForbidden  = errors.New("no access to requested provider")
)

// UserMessage maps a turn failure to the string shown inside the chat as
// the error-status message. Unknown errors fall back to a generic retry
// prompt rather than leaking internals.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "The request is still processing and may complete later. Please check back."
	case errors.Is(err, ErrNetwork):
		return "Unable to reach the chat service. Please check your connection and try again."
	case errors.Is(err, ErrAuth):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrAccountDeactivated):
		return "Your account has been deactivated. Please contact an administrator."
	case errors.Is(err, ErrMalformedResponse):
		return "The chat service returned an unexpected response. Please try again."
	default:
		return "An unexpected error occurred. Please try again."
	}
}
