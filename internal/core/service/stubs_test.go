package service

import (
	"context"
	"sync"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Shared stubs
// ---------------------------------------------------------------------------

// memStore is an in-memory ports.ProfileStore.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	sets    int
	deletes []string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) key(profileID, key string) string { return profileID + ":" + key }

func (m *memStore) Get(_ context.Context, profileID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	raw, ok := m.data[m.key(profileID, key)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return raw, nil
}

func (m *memStore) Set(_ context.Context, profileID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[m.key(profileID, key)] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, profileID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(profileID, key)
	m.deletes = append(m.deletes, k)
	if _, ok := m.data[k]; !ok {
		return ports.ErrNotFound
	}
	delete(m.data, k)
	return nil
}

func (m *memStore) seed(profileID, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.key(profileID, key)] = value
}

func (m *memStore) stored(profileID, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[m.key(profileID, key)]
	return raw, ok
}

// stubBus records published events synchronously.
type stubBus struct {
	mu        sync.Mutex
	published []ports.Event
	payloads  []any
}

func (b *stubBus) Publish(event ports.Event, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	b.payloads = append(b.payloads, payload)
}

func (b *stubBus) Subscribe(ports.Event, func(any)) func() { return func() {} }

func (b *stubBus) count(event ports.Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.published {
		if e == event {
			n++
		}
	}
	return n
}

// stubAuthAPI scripts the external auth backend.
type stubAuthAPI struct {
	loginToken   string
	loginUser    *domain.User
	loginErr     error
	profileUser  *domain.User
	profileErr   error
	profileCalls int
}

func (a *stubAuthAPI) Login(context.Context, string, string) (string, *domain.User, error) {
	return a.loginToken, a.loginUser, a.loginErr
}

func (a *stubAuthAPI) Register(context.Context, string, string, string) (string, *domain.User, error) {
	return a.loginToken, a.loginUser, a.loginErr
}

func (a *stubAuthAPI) GetProfile(context.Context, string) (*domain.User, error) {
	a.profileCalls++
	return a.profileUser, a.profileErr
}

// stubAuth is a minimal ports.AuthService for services that only need the
// token and the 401 hook.
type stubAuth struct {
	token    string
	user     *domain.User
	failures int
}

func (a *stubAuth) State(string) domain.AuthState        { return domain.StateAuthenticated }
func (a *stubAuth) CurrentUser(string) *domain.User      { return a.user }
func (a *stubAuth) Token(context.Context, string) string { return a.token }

func (a *stubAuth) Login(context.Context, string, string, string) (*domain.User, error) {
	return a.user, nil
}

func (a *stubAuth) Register(context.Context, string, string, string, string) (*domain.User, error) {
	return a.user, nil
}

func (a *stubAuth) RefreshSession(context.Context, string) (*domain.User, error) {
	return a.user, nil
}

func (a *stubAuth) OnAuthStateChange(string, func(*domain.User)) func() { return func() {} }
func (a *stubAuth) Logout(context.Context, string)                      {}
func (a *stubAuth) ReportAuthFailure(context.Context, string)           { a.failures++ }

// stubTransport scripts the chat backend.
type stubTransport struct {
	resp     *ports.ChatResponse
	err      error
	requests []ports.ChatRequest
}

func (t *stubTransport) SendChatMessage(_ context.Context, req ports.ChatRequest) (*ports.ChatResponse, error) {
	t.requests = append(t.requests, req)
	if t.err != nil {
		return nil, t.err
	}
	return t.resp, nil
}

// stubSink collects enqueued traces.
type stubSink struct {
	mu     sync.Mutex
	traces []ports.Trace
}

func (s *stubSink) Enqueue(t ports.Trace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces = append(s.traces, t)
}
