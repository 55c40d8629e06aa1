// Package keyvault provides a vfsmount.SecretStore in which every scope is an Azure Key Vault.  This mirrors a
// Key Vault backed secret scope: the scope name is an alias and the vault URL says where the secrets live.
package keyvault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/options"
)

// Scope maps a scope name onto a Key Vault
type Scope struct {
	// Name holds the scope name, ie kv-databricks
	Name string

	// VaultURL holds the vault URI, ie https://kv-databricks.vault.azure.net/
	VaultURL string
}

// ParseScopes parses a comma separated list of name=vaultURL pairs, ie
// "kv-databricks=https://kv-databricks.vault.azure.net/,kv-other=https://kv-other.vault.azure.net/".
func ParseScopes(raw string) ([]Scope, error) {
	var scopes []Scope
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, vaultURL, ok := strings.Cut(pair, "=")
		name, vaultURL = strings.TrimSpace(name), strings.TrimSpace(vaultURL)
		if !ok || name == "" || vaultURL == "" {
			return nil, fmt.Errorf("invalid scope %q, expected name=vaultURL", pair)
		}
		u, err := url.Parse(vaultURL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return nil, fmt.Errorf("invalid vault url %q for scope %q", vaultURL, name)
		}
		scopes = append(scopes, Scope{Name: name, VaultURL: vaultURL})
	}
	return scopes, nil
}

// SecretGetter is the subset of *azsecrets.Client used by Store
type SecretGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// ClientFactory creates the Key Vault client for a vault URL
type ClientFactory func(vaultURL string, cred azcore.TokenCredential) (SecretGetter, error)

// DefaultClientFactory builds an *azsecrets.Client
func DefaultClientFactory(vaultURL string, cred azcore.TokenCredential) (SecretGetter, error) {
	return azsecrets.NewClient(vaultURL, cred, &azsecrets.ClientOptions{ClientOptions: noRetry()})
}

// noRetry returns client options under which every request is attempted exactly once
func noRetry() azcore.ClientOptions {
	return azcore.ClientOptions{Retry: policy.RetryOptions{MaxRetries: -1}}
}

// Store is a vfsmount.SecretStore backed by one or more Azure Key Vaults
type Store struct {
	scopes        []Scope
	credential    azcore.TokenCredential
	clientFactory ClientFactory

	mu      sync.Mutex
	clients map[string]SecretGetter
}

// NewStore returns a Store configured by opts.  Without WithCredential the first Get builds an
// azidentity.DefaultAzureCredential.
func NewStore(opts ...options.Option[Store]) *Store {
	s := &Store{
		clientFactory: DefaultClientFactory,
		clients:       make(map[string]SecretGetter),
	}
	options.ApplyOptions(s, opts...)
	return s
}

// ListScopes implements vfsmount.SecretStore
func (s *Store) ListScopes(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(s.scopes))
	for _, sc := range s.scopes {
		names = append(names, sc.Name)
	}
	return names, nil
}

// Get implements vfsmount.SecretStore.  It returns the latest version of the secret.
func (s *Store) Get(ctx context.Context, scope, key string) (string, error) {
	client, err := s.client(scope)
	if err != nil {
		return "", err
	}

	resp, err := client.GetSecret(ctx, key, "", nil)
	if err != nil {
		return "", mapError(scope, key, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("key %q in scope %q has no value: %w", key, scope, vfsmount.ErrCredentialNotFound)
	}
	return *resp.Value, nil
}

func (s *Store) client(scope string) (SecretGetter, error) {
	var vaultURL string
	for _, sc := range s.scopes {
		if sc.Name == scope {
			vaultURL = sc.VaultURL
			break
		}
	}
	if vaultURL == "" {
		return nil, fmt.Errorf("scope %q: %w", scope, vfsmount.ErrNoScopeConfigured)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[vaultURL]; ok {
		return c, nil
	}
	if s.credential == nil {
		cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{ClientOptions: noRetry()})
		if err != nil {
			return nil, fmt.Errorf("key vault credential: %w", err)
		}
		s.credential = cred
	}
	c, err := s.clientFactory(vaultURL, s.credential)
	if err != nil {
		return nil, fmt.Errorf("key vault client for scope %q: %w", scope, err)
	}
	s.clients[vaultURL] = c
	return c, nil
}

func mapError(scope, key string, err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("key %q in scope %q: %w", key, scope, vfsmount.ErrCredentialNotFound)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("key vault for scope %q (%s): %w", scope, respErr.ErrorCode, vfsmount.ErrAuthentication)
		}
	}
	var authErr *azidentity.AuthenticationFailedError
	if errors.As(err, &authErr) {
		return fmt.Errorf("key vault for scope %q: %w", scope, vfsmount.ErrAuthentication)
	}
	return fmt.Errorf("get %q from scope %q: %w", key, scope, err)
}

var _ vfsmount.SecretStore = (*Store)(nil)
