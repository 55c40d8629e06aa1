package keyvault

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/c2fo/vfsmount/options"
)

const (
	optionNameScopes        = "scopes"
	optionNameCredential    = "credential"
	optionNameClientFactory = "clientFactory"
)

// WithScopes returns an option adding scopes to the store.  The first scope added is the default scope.
func WithScopes(scopes ...Scope) options.Option[Store] {
	return &scopesOpt{scopes: scopes}
}

type scopesOpt struct {
	scopes []Scope
}

// Apply applies the scopes to the store
func (o *scopesOpt) Apply(s *Store) {
	s.scopes = append(s.scopes, o.scopes...)
}

// OptionName returns the name of the option
func (o *scopesOpt) OptionName() string {
	return optionNameScopes
}

// WithCredential returns an option setting the credential used to read from the vaults
func WithCredential(cred azcore.TokenCredential) options.Option[Store] {
	return &credentialOpt{cred: cred}
}

type credentialOpt struct {
	cred azcore.TokenCredential
}

// Apply applies the credential to the store
func (o *credentialOpt) Apply(s *Store) {
	s.credential = o.cred
}

// OptionName returns the name of the option
func (o *credentialOpt) OptionName() string {
	return optionNameCredential
}

// WithClientFactory returns an option replacing the Key Vault client factory.  It is mostly useful in tests.
func WithClientFactory(f ClientFactory) options.Option[Store] {
	return &clientFactoryOpt{factory: f}
}

type clientFactoryOpt struct {
	factory ClientFactory
}

// Apply applies the client factory to the store
func (o *clientFactoryOpt) Apply(s *Store) {
	s.clientFactory = o.factory
}

// OptionName returns the name of the option
func (o *clientFactoryOpt) OptionName() string {
	return optionNameClientFactory
}
