package client

import (
	"strconv"
	"sync"
	"time"
)

// Storage keys shared with the browser build of the dashboard.
const (
	AccessTokenKey  = "spotify_access_token"
	RefreshTokenKey = "spotify_refresh_token"
	ExpiresAtKey    = "spotify_token_expires"
)

// Storage is a string key/value medium with localStorage semantics.
type Storage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStorage is a process-local [Storage].
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage returns an empty [MemoryStorage].
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// TokenStore persists a token pair and its absolute expiry in a [Storage].
//
// A nil storage models an environment without persistent storage: writes are
// dropped, reads report absence, and [TokenStore.IsExpired] is always true.
// The store never refreshes on its own.
type TokenStore struct {
	storage Storage
	now     func() time.Time
}

// StoreOption configures a [TokenStore].
type StoreOption func(*TokenStore)

// WithClock replaces the store's time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *TokenStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenStore creates a [TokenStore] over storage, which may be nil.
func NewTokenStore(storage Storage, opts ...StoreOption) *TokenStore {
	s := &TokenStore{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores the pair and converts expiresIn (seconds) to an absolute expiry in unix milliseconds.
func (s *TokenStore) Set(access, refresh string, expiresIn int) error {
	if s.storage == nil {
		return nil
	}

	expiresAt := s.now().Add(time.Duration(expiresIn) * time.Second).UnixMilli()
	if err := s.storage.SetItem(AccessTokenKey, access); err != nil {
		return err
	}
	if err := s.storage.SetItem(RefreshTokenKey, refresh); err != nil {
		return err
	}
	return s.storage.SetItem(ExpiresAtKey, strconv.FormatInt(expiresAt, 10))
}

// AccessToken returns the stored access token, if any.
func (s *TokenStore) AccessToken() (string, bool) {
	return s.get(AccessTokenKey)
}

// RefreshToken returns the stored refresh token, if any.
func (s *TokenStore) RefreshToken() (string, bool) {
	return s.get(RefreshTokenKey)
}

// ExpiresAt returns the stored absolute expiry.
func (s *TokenStore) ExpiresAt() (time.Time, bool) {
	raw, ok := s.get(ExpiresAtKey)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// IsExpired reports whether now >= expires_at. Missing or unreadable expiry counts as expired.
func (s *TokenStore) IsExpired() bool {
	expiresAt, ok := s.ExpiresAt()
	if !ok {
		return true
	}
	return !s.now().Before(expiresAt)
}

// Clear removes all three fields. It is safe to call on an empty store.
func (s *TokenStore) Clear() error {
	if s.storage == nil {
		return nil
	}
	for _, key := range []string{AccessTokenKey, RefreshTokenKey, ExpiresAtKey} {
		if err := s.storage.RemoveItem(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *TokenStore) get(key string) (string, bool) {
	if s.storage == nil {
		return "", false
	}
	v, ok := s.storage.GetItem(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
