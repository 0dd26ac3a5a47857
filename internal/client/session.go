package client

import (
	"context"
	"sync"
)

// storeKeyAccessToken is the key the access token is persisted under.
const storeKeyAccessToken = "access_token"

// TokenStore persists the access token between client processes. Get returns
// (nil, nil) when no token is stored.
type TokenStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// memoryTokenStore is the fallback when no durable store is configured.
type memoryTokenStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{data: make(map[string][]byte)}
}

func (m *memoryTokenStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (m *memoryTokenStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryTokenStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// session holds the in-memory access token. The generation counter moves on
// every explicit set or clear so that an async refresh outcome cannot
// resurrect a session that was signed out while the refresh was in flight.
type session struct {
	mu    sync.Mutex
	token string
	gen   uint64
	store TokenStore
}

func newSession(store TokenStore) *session {
	if store == nil {
		store = newMemoryTokenStore()
	}
	return &session{store: store}
}

// current returns the held token and the generation it belongs to.
func (s *session) current() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.gen
}

// replace installs a token unconditionally and moves the generation.
func (s *session) replace(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = token
	s.gen++
	s.mu.Unlock()
	s.persist(ctx, token)
}

// adopt installs a refreshed token only if the session generation has not
// moved since the refresh started. Returns false when the outcome was stale.
func (s *session) adopt(ctx context.Context, token string, fromGen uint64) bool {
	s.mu.Lock()
	if s.gen != fromGen {
		s.mu.Unlock()
		return false
	}
	s.token = token
	s.mu.Unlock()
	s.persist(ctx, token)
	return true
}

// clear drops the token, moves the generation, and deletes the persisted copy.
func (s *session) clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.gen++
	s.mu.Unlock()
	_ = s.store.Delete(ctx, storeKeyAccessToken)
}

// load restores the persisted token, if any.
func (s *session) load(ctx context.Context) error {
	v, err := s.store.Get(ctx, storeKeyAccessToken)
	if err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	s.mu.Lock()
	s.token = string(v)
	s.gen++
	s.mu.Unlock()
	return nil
}

func (s *session) persist(ctx context.Context, token string) {
	if token == "" {
		_ = s.store.Delete(ctx, storeKeyAccessToken)
		return
	}
	_ = s.store.Set(ctx, storeKeyAccessToken, []byte(token))
}
