// Package env provides a vfsmount.SecretStore backed by environment variables.
//
// Scopes are listed in VFSMOUNT_SECRET_SCOPES (comma separated, first is the default).  A secret named key in scope
// is read from VFSMOUNT_SECRET_<SCOPE>_<KEY>, where scope and key are upper-cased and every character that is not
// a letter or digit becomes an underscore.  For example the "tenant-id" key of scope "kv-databricks" is read from
// VFSMOUNT_SECRET_KV_DATABRICKS_TENANT_ID.
package env

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/c2fo/vfsmount"
)

const (
	// EnvScopes holds the comma separated scope list
	EnvScopes = "VFSMOUNT_SECRET_SCOPES"

	// DefaultPrefix prefixes every secret variable name
	DefaultPrefix = "VFSMOUNT_SECRET_"
)

// Options contains options for the environment secret store
type Options struct {
	// Scopes holds the scope names, in order
	Scopes []string

	// Prefix holds the variable name prefix.  DefaultPrefix is used when empty.
	Prefix string

	lookupEnv func(string) (string, bool)
}

// NewOptions returns Options with Scopes read from VFSMOUNT_SECRET_SCOPES
func NewOptions() Options {
	return Options{
		Scopes: splitScopes(os.Getenv(EnvScopes)),
		Prefix: DefaultPrefix,
	}
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(scopes, s) {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// Store is a vfsmount.SecretStore reading secrets from the process environment
type Store struct {
	options Options
}

// NewStore returns a Store for opts
func NewStore(opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.lookupEnv == nil {
		opts.lookupEnv = os.LookupEnv
	}
	return &Store{options: opts}
}

// ListScopes implements vfsmount.SecretStore
func (s *Store) ListScopes(_ context.Context) ([]string, error) {
	return slices.Clone(s.options.Scopes), nil
}

// Get implements vfsmount.SecretStore
func (s *Store) Get(_ context.Context, scope, key string) (string, error) {
	if !slices.Contains(s.options.Scopes, scope) {
		return "", fmt.Errorf("scope %q: %w", scope, vfsmount.ErrNoScopeConfigured)
	}
	name := s.VarName(scope, key)
	v, ok := s.options.lookupEnv(name)
	if !ok {
		return "", fmt.Errorf("key %q in scope %q (%s): %w", key, scope, name, vfsmount.ErrCredentialNotFound)
	}
	return v, nil
}

// VarName returns the environment variable name holding key in scope
func (s *Store) VarName(scope, key string) string {
	return s.options.Prefix + normalize(scope) + "_" + normalize(key)
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

var _ vfsmount.SecretStore = (*Store)(nil)
