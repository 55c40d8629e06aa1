package azure

import (
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/c2fo/vfsmount/auth"
)

// Options contains options necessary for the azure client
type Options struct {
	// ServiceURL overrides the blob service endpoint derived from the source, ie for a private endpoint or an
	// emulator.  It must include the account when the endpoint expects one in the path.
	ServiceURL string

	// Anonymous skips authentication entirely.  It is only useful against public containers and emulators.
	Anonymous bool

	tokenCredentialFactory TokenCredentialFactory
}

// NewOptions returns Options populated from the environment
func NewOptions() *Options {
	return &Options{
		ServiceURL:             os.Getenv("VFSMOUNT_AZURE_SERVICE_URL"),
		tokenCredentialFactory: DefaultTokenCredentialFactory,
	}
}

// Credential returns the token credential for the OAuth client credentials in cfg, or nil when Anonymous is set
func (o *Options) Credential(cfg auth.AuthConfig) (azcore.TokenCredential, error) {
	if o.Anonymous {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tenantID, err := cfg.TenantID()
	if err != nil {
		return nil, err
	}

	factory := o.tokenCredentialFactory
	if factory == nil {
		factory = DefaultTokenCredentialFactory
	}
	return factory(tenantID, cfg.ClientID, cfg.ClientSecret, cfg.AuthorityHost())
}

// WithTokenCredentialFactory returns a copy of o using factory to build credentials
func (o Options) WithTokenCredentialFactory(factory TokenCredentialFactory) *Options {
	o.tokenCredentialFactory = factory
	return &o
}
