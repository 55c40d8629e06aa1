package auth

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/c2fo/vfsmount"
)

// Hadoop ABFS configuration keys carried with every mount request.
const (
	ConfigKeyAuthType       = "fs.azure.account.auth.type"
	ConfigKeyProviderType   = "fs.azure.account.oauth.provider.type"
	ConfigKeyClientID       = "fs.azure.account.oauth2.client.id"
	ConfigKeyClientSecret   = "fs.azure.account.oauth2.client.secret"
	ConfigKeyClientEndpoint = "fs.azure.account.oauth2.client.endpoint"
)

// Fixed values of the OAuth configuration.
const (
	AuthTypeOAuth             = "OAuth"
	ClientCredsTokenProvider  = "org.apache.hadoop.fs.azurebfs.oauth2.ClientCredsTokenProvider"
	DefaultAuthorityHost      = "https://login.microsoftonline.com"
	tokenEndpointPathTemplate = "/%s/oauth2/token"
)

// ConfigKeys lists the five keys of an AuthConfig mapping.  It must stay sorted.
var ConfigKeys = []string{
	ConfigKeyAuthType,
	ConfigKeyProviderType,
	ConfigKeyClientEndpoint,
	ConfigKeyClientID,
	ConfigKeyClientSecret,
}

// AuthConfig is the OAuth client-credentials configuration handed to a host with each mount request.
type AuthConfig struct {
	AuthType      string
	ProviderType  string
	ClientID      string
	ClientSecret  string
	TokenEndpoint string
}

// TokenEndpoint returns the token endpoint for tenant on the public Azure cloud, ie
// https://login.microsoftonline.com/{tenant}/oauth2/token
func TokenEndpoint(tenantID string) string {
	return DefaultAuthorityHost + fmt.Sprintf(tokenEndpointPathTemplate, tenantID)
}

// BuildAuthConfig produces the fixed-shape OAuth configuration for bundle.  It has no side effects and the same
// bundle always yields an identical configuration.
func BuildAuthConfig(bundle Bundle) (AuthConfig, error) {
	if err := bundle.Validate(); err != nil {
		return AuthConfig{}, fmt.Errorf("%w: %w", vfsmount.ErrInvalidAuthConfig, err)
	}
	cfg := AuthConfig{
		AuthType:      AuthTypeOAuth,
		ProviderType:  ClientCredsTokenProvider,
		ClientID:      bundle.ApplicationID,
		ClientSecret:  bundle.ClientSecret,
		TokenEndpoint: TokenEndpoint(bundle.TenantID),
	}
	return cfg, cfg.Validate()
}

// Validate ensures every field is set and the fixed fields carry their fixed values
func (c AuthConfig) Validate() error {
	switch {
	case c.AuthType != AuthTypeOAuth:
		return fmt.Errorf("%w: %s must be %q", vfsmount.ErrInvalidAuthConfig, ConfigKeyAuthType, AuthTypeOAuth)
	case c.ProviderType != ClientCredsTokenProvider:
		return fmt.Errorf("%w: %s must be %q", vfsmount.ErrInvalidAuthConfig, ConfigKeyProviderType, ClientCredsTokenProvider)
	case c.ClientID == "":
		return fmt.Errorf("%w: %s is empty", vfsmount.ErrInvalidAuthConfig, ConfigKeyClientID)
	case c.ClientSecret == "":
		return fmt.Errorf("%w: %s is empty", vfsmount.ErrInvalidAuthConfig, ConfigKeyClientSecret)
	}
	if _, err := c.TenantID(); err != nil {
		return err
	}
	return nil
}

// TenantID extracts the tenant from the token endpoint
func (c AuthConfig) TenantID() (string, error) {
	u, err := url.Parse(c.TokenEndpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: %s must be an https url", vfsmount.ErrInvalidAuthConfig, ConfigKeyClientEndpoint)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] != "oauth2" || parts[2] != "token" {
		return "", fmt.Errorf("%w: %s must look like https://host/{tenant}/oauth2/token",
			vfsmount.ErrInvalidAuthConfig, ConfigKeyClientEndpoint)
	}
	return parts[0], nil
}

// AuthorityHost returns the scheme and host of the token endpoint, ie https://login.microsoftonline.com
func (c AuthConfig) AuthorityHost() string {
	u, err := url.Parse(c.TokenEndpoint)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Map returns the configuration as the five-key mapping a host expects
func (c AuthConfig) Map() map[string]string {
	return map[string]string{
		ConfigKeyAuthType:       c.AuthType,
		ConfigKeyProviderType:   c.ProviderType,
		ConfigKeyClientID:       c.ClientID,
		ConfigKeyClientSecret:   c.ClientSecret,
		ConfigKeyClientEndpoint: c.TokenEndpoint,
	}
}

// String implements fmt.Stringer without exposing the client secret
func (c AuthConfig) String() string {
	return fmt.Sprintf("%s=%s %s=%s %s=%s %s=%s %s=%s",
		ConfigKeyAuthType, c.AuthType,
		ConfigKeyProviderType, c.ProviderType,
		ConfigKeyClientID, c.ClientID,
		ConfigKeyClientSecret, redact(c.ClientSecret),
		ConfigKeyClientEndpoint, c.TokenEndpoint,
	)
}

// ParseAuthConfig converts a host's extra configuration mapping back into an AuthConfig.  The mapping must hold
// exactly the five configuration keys.
func ParseAuthConfig(m map[string]string) (AuthConfig, error) {
	var errs []error
	for k := range m {
		if !isConfigKey(k) {
			errs = append(errs, fmt.Errorf("unexpected key %q", k))
		}
	}
	for _, k := range ConfigKeys {
		if _, ok := m[k]; !ok {
			errs = append(errs, fmt.Errorf("missing key %q", k))
		}
	}
	if len(errs) > 0 {
		return AuthConfig{}, fmt.Errorf("%w: %w", vfsmount.ErrInvalidAuthConfig, errors.Join(errs...))
	}

	cfg := AuthConfig{
		AuthType:      m[ConfigKeyAuthType],
		ProviderType:  m[ConfigKeyProviderType],
		ClientID:      m[ConfigKeyClientID],
		ClientSecret:  m[ConfigKeyClientSecret],
		TokenEndpoint: m[ConfigKeyClientEndpoint],
	}
	if err := cfg.Validate(); err != nil {
		return AuthConfig{}, err
	}
	return cfg, nil
}

func isConfigKey(k string) bool {
	i := sort.SearchStrings(ConfigKeys, k)
	return i < len(ConfigKeys) && ConfigKeys[i] == k
}
