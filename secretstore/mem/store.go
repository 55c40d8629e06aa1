// Package mem provides an in-memory vfsmount.SecretStore.
package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/c2fo/vfsmount"
)

// Store is an in-memory vfsmount.SecretStore.  Scopes keep the order in which they were first added, so the first
// added scope is the default scope.  Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	order  []string
	scopes map[string]map[string]string
}

// NewStore returns an empty Store
func NewStore() *Store {
	return &Store{scopes: make(map[string]map[string]string)}
}

// AddScope creates scope, if needed, and sets each secret in it
func (s *Store) AddScope(scope string, secrets map[string]string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scopes[scope]; !ok {
		s.scopes[scope] = make(map[string]string)
		s.order = append(s.order, scope)
	}
	for k, v := range secrets {
		s.scopes[scope][k] = v
	}
	return s
}

// DeleteSecret removes key from scope.  It is a no-op when either does not exist.
func (s *Store) DeleteSecret(scope, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if secrets, ok := s.scopes[scope]; ok {
		delete(secrets, key)
	}
}

// ListScopes implements vfsmount.SecretStore
func (s *Store) ListScopes(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scopes := make([]string, len(s.order))
	copy(scopes, s.order)
	return scopes, nil
}

// Get implements vfsmount.SecretStore
func (s *Store) Get(_ context.Context, scope, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secrets, ok := s.scopes[scope]
	if !ok {
		return "", fmt.Errorf("scope %q: %w", scope, vfsmount.ErrNoScopeConfigured)
	}
	v, ok := secrets[key]
	if !ok {
		return "", fmt.Errorf("key %q in scope %q: %w", key, scope, vfsmount.ErrCredentialNotFound)
	}
	return v, nil
}

var _ vfsmount.SecretStore = (*Store)(nil)
