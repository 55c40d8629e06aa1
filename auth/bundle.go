package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/utils"
)

// Secret store key names holding the service principal credentials.
const (
	KeyTenantID      = "tenant-id"
	KeyApplicationID = "application-id"
	KeySecret        = "secret"
)

// Bundle holds the service principal credentials used for the OAuth client-credentials flow.  A Bundle is a value:
// it is resolved once and passed into each mount operation.  It is never persisted and its String form redacts the
// secret so it can be handed to a logger safely.
type Bundle struct {
	// TenantID holds the Azure AD (Entra ID) directory id
	TenantID string

	// ApplicationID holds the application (client) id of the service principal
	ApplicationID string

	// ClientSecret holds the client secret of the service principal
	ClientSecret string
}

// String implements fmt.Stringer without exposing the client secret
func (b Bundle) String() string {
	return fmt.Sprintf("tenant=%s application=%s secret=%s", b.TenantID, b.ApplicationID, redact(b.ClientSecret))
}

// GoString implements fmt.GoStringer so %#v does not leak the client secret either
func (b Bundle) GoString() string {
	return fmt.Sprintf("auth.Bundle{TenantID:%q, ApplicationID:%q, ClientSecret:%q}",
		b.TenantID, b.ApplicationID, redact(b.ClientSecret))
}

// Validate returns an error when any field is empty
func (b Bundle) Validate() error {
	switch {
	case b.TenantID == "":
		return fmt.Errorf("%w: %s is empty", vfsmount.ErrCredentialNotFound, KeyTenantID)
	case b.ApplicationID == "":
		return fmt.Errorf("%w: %s is empty", vfsmount.ErrCredentialNotFound, KeyApplicationID)
	case b.ClientSecret == "":
		return fmt.Errorf("%w: %s is empty", vfsmount.ErrCredentialNotFound, KeySecret)
	}
	return nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// ResolveCredentials fetches the tenant id, application id and client secret from a secret store scope.
//
// When scope is empty the first scope returned by store.ListScopes is used.  When scope is set it must be one of
// the scopes the store lists.  An error wrapping vfsmount.ErrNoScopeConfigured is returned when no usable scope
// exists and one wrapping vfsmount.ErrCredentialNotFound when any of the three keys is missing or empty.
func ResolveCredentials(ctx context.Context, store vfsmount.SecretStore, scope string) (Bundle, error) {
	scope, err := selectScope(ctx, store, scope)
	if err != nil {
		return Bundle{}, err
	}

	values := make(map[string]string, 3)
	for _, key := range []string{KeyTenantID, KeyApplicationID, KeySecret} {
		v, err := store.Get(ctx, scope, key)
		if err != nil {
			if errors.Is(err, vfsmount.ErrCredentialNotFound) || errors.Is(err, vfsmount.ErrNoScopeConfigured) {
				return Bundle{}, fmt.Errorf("resolve %q from scope %q: %w", key, scope, err)
			}
			return Bundle{}, utils.WrapSecretError(err)
		}
		if v == "" {
			return Bundle{}, fmt.Errorf("resolve %q from scope %q: %w", key, scope, vfsmount.ErrCredentialNotFound)
		}
		values[key] = v
	}

	return Bundle{
		TenantID:      values[KeyTenantID],
		ApplicationID: values[KeyApplicationID],
		ClientSecret:  values[KeySecret],
	}, nil
}

func selectScope(ctx context.Context, store vfsmount.SecretStore, scope string) (string, error) {
	scopes, err := store.ListScopes(ctx)
	if err != nil {
		return "", utils.WrapSecretError(err)
	}
	if len(scopes) == 0 {
		return "", vfsmount.ErrNoScopeConfigured
	}
	if scope == "" {
		return scopes[0], nil
	}
	if !slices.Contains(scopes, scope) {
		return "", fmt.Errorf("scope %q: %w", scope, vfsmount.ErrNoScopeConfigured)
	}
	return scope, nil
}
