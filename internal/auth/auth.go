// Package auth supplies the bearer token attached to backend requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrNoToken is returned when no token has been stored
var ErrNoToken = errors.New("no auth token")

// tokenKey is the settings key the token is persisted under
const tokenKey = "auth_token"

// TokenSource returns the current token. An empty token with a nil error
// means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token, typically from configuration
type StaticToken string

// Token returns the fixed token
func (t StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(t)), nil
}

// SettingsStore is the durable key/value storage the token lives in
type SettingsStore interface {
	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// StoreTokenSource reads the token from the durable settings store and
// keeps it in memory after the first read.
type StoreTokenSource struct {
	store  SettingsStore
	logger *logrus.Logger

	mu     sync.Mutex
	token  string
	loaded bool
}

// NewStoreTokenSource creates a token source backed by store
func NewStoreTokenSource(store SettingsStore, logger *logrus.Logger) *StoreTokenSource {
	return &StoreTokenSource{
		store:  store,
		logger: logger,
	}
}

// Token returns the stored token, or an empty string when none is stored
func (s *StoreTokenSource) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.token, nil
	}

	token, _, err := s.store.GetSetting(tokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read auth token: %w", err)
	}
	s.token = token
	s.loaded = true
	return token, nil
}

// Stored returns the stored token or ErrNoToken
func (s *StoreTokenSource) Stored(ctx context.Context) (string, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save persists token for later sessions
func (s *StoreTokenSource) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("refusing to save empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetSetting(tokenKey, token); err != nil {
		return fmt.Errorf("failed to save auth token: %w", err)
	}
	s.token = token
	s.loaded = true
	s.logger.Info("Auth token saved")
	return nil
}

// Clear forgets the stored token
func (s *StoreTokenSource) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteSetting(tokenKey); err != nil {
		return fmt.Errorf("failed to clear auth token: %w", err)
	}
	s.token = ""
	s.loaded = true
	s.logger.Info("Auth token cleared")
	return nil
}

// Chain returns the first non-empty token from sources, in order
type Chain []TokenSource

// Token implements TokenSource
func (c Chain) Token(ctx context.Context) (string, error) {
	for _, src := range c {
		token, err := src.Token(ctx)
		if err != nil {
			return "", err
		}
		if token != "" {
			return token, nil
		}
	}
	return "", nil
}
