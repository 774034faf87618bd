package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

const defaultGracePeriod = 30 * time.Second

// AuthService owns the per-profile authentication state machine. A
// profile starts in checking; every refresh path settles it in a terminal
// state. A nil user observed while still checking is discarded rather
// than treated as a definitive unauthenticated signal, which is what used
// to bounce users to the login page mid-load.
type AuthService struct {
	api         ports.AuthAPI
	store       ports.ProfileStore
	bus         ports.Bus
	logger      zerolog.Logger
	gracePeriod time.Duration

	mu       sync.Mutex
	profiles map[string]*authProfile
}

type authProfile struct {
	state        domain.AuthState
	user         *domain.User
	token        string
	expiredFired bool

	nextListener int
	listeners    map[int]func(*domain.User)
}

func NewAuthService(api ports.AuthAPI, store ports.ProfileStore, bus ports.Bus, logger zerolog.Logger, gracePeriod time.Duration) *AuthService {
	if gracePeriod <= 0 {
		gracePeriod = defaultGracePeriod
	}
	return &AuthService{
		api:         api,
		store:       store,
		bus:         bus,
		logger:      logger,
		gracePeriod: gracePeriod,
		profiles:    make(map[string]*authProfile),
	}
}

func (s *AuthService) profile(profileID string) *authProfile {
	p, ok := s.profiles[profileID]
	if !ok {
		p = &authProfile{state: domain.StateChecking, listeners: make(map[int]func(*domain.User))}
		s.profiles[profileID] = p
	}
	return p
}

// State returns the machine's current state. No I/O.
func (s *AuthService) State(profileID string) domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile(profileID).state
}

// CurrentUser is a synchronous read of the in-memory user cache.
func (s *AuthService) CurrentUser(profileID string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile(profileID).user
}

// Token returns the bearer token for the profile, reading through to the
// store when the in-memory copy is empty.
func (s *AuthService) Token(ctx context.Context, profileID string) string {
	s.mu.Lock()
	if t := s.profile(profileID).token; t != "" {
		s.mu.Unlock()
		return t
	}
	s.mu.Unlock()

	raw, err := s.store.Get(ctx, profileID, ports.KeyAuthToken)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Login authenticates against the auth backend and persists the session.
// A deactivated account clears any cached credentials and is surfaced
// distinctly from generic auth failure.
func (s *AuthService) Login(ctx context.Context, profileID, email, password string) (*domain.User, error) {
	token, user, err := s.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrAccountDeactivated) {
			s.clearSession(ctx, profileID)
		}
		s.settle(profileID, domain.StateUnauthenticated, nil)
		return nil, err
	}
	s.saveSession(ctx, profileID, token, user)
	return user, nil
}

// Register creates an account and starts a session with the returned
// token, mirroring Login.
func (s *AuthService) Register(ctx context.Context, profileID, name, email, password string) (*domain.User, error) {
	token, user, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		s.settle(profileID, domain.StateUnauthenticated, nil)
		return nil, err
	}
	s.saveSession(ctx, profileID, token, user)
	return user, nil
}

// RefreshSession validates the stored token by fetching the profile from
// the auth backend. On auth-class failures the session is cleared; on
// transport failures a cached local user record is used as a best-effort
// fallback when it is admin-flagged. All paths settle the machine.
func (s *AuthService) RefreshSession(ctx context.Context, profileID string) (*domain.User, error) {
	raw, err := s.store.Get(ctx, profileID, ports.KeyAuthToken)
	if err != nil {
		s.settle(profileID, domain.StateUnauthenticated, nil)
		return nil, nil
	}
	token := string(raw)

	if tokenExpired(token) {
		s.logger.Info().Str("profile_id", profileID).Msg("stored token expired, clearing session")
		s.clearSession(ctx, profileID)
		s.settle(profileID, domain.StateUnauthenticated, nil)
		return nil, nil
	}

	user, err := s.api.GetProfile(ctx, token)
	if err == nil {
		s.saveSession(ctx, profileID, token, user)
		return user, nil
	}

	if errors.Is(err, domain.ErrAuth) || errors.Is(err, domain.ErrAccountDeactivated) {
		s.logger.Info().Err(err).Str("profile_id", profileID).Msg("token rejected by auth backend, clearing session")
		s.clearSession(ctx, profileID)
		s.settle(profileID, domain.StateUnauthenticated, nil)
		return nil, err
	}

	// Transport failure: the token may still be good. Fall back to the
	// cached local user record, but only when it is admin-flagged.
	if cached := s.cachedUser(ctx, profileID); cached != nil && cached.IsAdmin {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("profile fetch failed, using cached admin user")
		s.mu.Lock()
		s.profile(profileID).token = token
		s.mu.Unlock()
		s.settle(profileID, domain.StateAuthenticated, cached)
		return cached, nil
	}

	s.clearSession(ctx, profileID)
	s.settle(profileID, domain.StateUnauthenticated, nil)
	return nil, err
}

// OnAuthStateChange registers a listener invoked on every transition to a
// terminal state. If the machine has already settled, the listener is
// invoked immediately with the current user; while checking, nothing is
// delivered. The returned unsubscribe is idempotent.
func (s *AuthService) OnAuthStateChange(profileID string, fn func(*domain.User)) func() {
	s.mu.Lock()
	p := s.profile(profileID)
	id := p.nextListener
	p.nextListener++
	p.listeners[id] = fn
	state, user := p.state, p.user
	s.mu.Unlock()

	if state.Terminal() {
		fn(user)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.profile(profileID).listeners, id)
			s.mu.Unlock()
		})
	}
}

// Logout clears the token and user and settles unauthenticated.
func (s *AuthService) Logout(ctx context.Context, profileID string) {
	s.clearSession(ctx, profileID)
	s.settle(profileID, domain.StateUnauthenticated, nil)
}

// ReportAuthFailure is the process-wide 401 hook. The first report per
// expiry event clears the session and broadcasts session-expired with the
// grace period; further reports are no-ops until the next successful
// login or refresh rearms the latch.
func (s *AuthService) ReportAuthFailure(ctx context.Context, profileID string) {
	s.mu.Lock()
	p := s.profile(profileID)
	if p.expiredFired {
		s.mu.Unlock()
		return
	}
	p.expiredFired = true
	s.mu.Unlock()

	s.logger.Info().Str("profile_id", profileID).Msg("session expiry detected")
	s.clearSession(ctx, profileID)
	s.settle(profileID, domain.StateUnauthenticated, nil)
	s.bus.Publish(ports.EventSessionExpired, ports.SessionExpired{
		ProfileID:   profileID,
		GracePeriod: s.gracePeriod,
	})
}

func (s *AuthService) saveSession(ctx context.Context, profileID, token string, user *domain.User) {
	if err := s.store.Set(ctx, profileID, ports.KeyAuthToken, []byte(token)); err != nil {
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to persist auth token")
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := s.store.Set(ctx, profileID, ports.KeyAuthUser, raw); err != nil {
			s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to persist user record")
		}
	}

	s.mu.Lock()
	p := s.profile(profileID)
	p.token = token
	p.expiredFired = false
	s.mu.Unlock()

	s.settle(profileID, domain.StateAuthenticated, user)
}

func (s *AuthService) clearSession(ctx context.Context, profileID string) {
	if err := s.store.Delete(ctx, profileID, ports.KeyAuthToken); err != nil && !errors.Is(err, ports.ErrNotFound) {
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to delete auth token")
	}
	if err := s.store.Delete(ctx, profileID, ports.KeyAuthUser); err != nil && !errors.Is(err, ports.ErrNotFound) {
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to delete user record")
	}

	s.mu.Lock()
	s.profile(profileID).token = ""
	s.mu.Unlock()
}

func (s *AuthService) cachedUser(ctx context.Context, profileID string) *domain.User {
	raw, err := s.store.Get(ctx, profileID, ports.KeyAuthUser)
	if err != nil {
		return nil
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("corrupt cached user record")
		return nil
	}
	return &u
}

// settle moves the machine to a terminal state and notifies listeners.
// Listeners are snapshotted so subscribing or unsubscribing from within a
// callback cannot corrupt the iteration.
func (s *AuthService) settle(profileID string, state domain.AuthState, user *domain.User) {
	s.mu.Lock()
	p := s.profile(profileID)
	p.state = state
	p.user = user
	fns := make([]func(*domain.User), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

// tokenExpired inspects the token's exp claim locally, without verifying
// the signature; verification belongs to the auth backend. Tokens that do
// not parse or carry no exp claim are left for the backend to judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
