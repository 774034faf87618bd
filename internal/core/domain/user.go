package domain

// AuthState is the settled-ness of a browser profile's authentication.
type AuthState string

const (
	// StateChecking means a session refresh is still in flight. Guards must
	// not treat this as unauthenticated; doing so caused redirect races in
	// the console this gateway replaced.
	StateChecking        AuthState = "checking"
	StateAuthenticated   AuthState = "authenticated"
	StateUnauthenticated AuthState = "unauthenticated"
)

// Terminal reports whether the state machine has settled.
func (s AuthState) Terminal() bool {
	return s == StateAuthenticated || s == StateUnauthenticated
}

// User is the identity record owned by the auth state machine. It is
// created on login, registration or profile refresh and destroyed on
// logout or detected token expiry.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	IsAdmin         bool   `json:"is_admin"`
	IsAuthenticated bool   `json:"is_authenticated"`
}
