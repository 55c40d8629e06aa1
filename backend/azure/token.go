package azure

import (
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/c2fo/vfsmount/utils"
)

// TokenCredentialFactory creates azcore.TokenCredentials.  This function is provided to allow for mocking in unit tests.
type TokenCredentialFactory func(tenantID, clientID, clientSecret, authorityHost string) (azcore.TokenCredential, error)

// DefaultTokenCredentialFactory knows how to make azcore.TokenCredential structs for OAuth client-credentials
// authentication.  authorityHost may be empty, in which case the public Azure cloud is used.
func DefaultTokenCredentialFactory(tenantID, clientID, clientSecret, authorityHost string) (azcore.TokenCredential, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, errors.New("tenant id, client id and client secret are all required")
	}

	return azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, credentialOptions(authorityHost))
}

// credentialOptions disables retries of token requests and points the credential at authorityHost when set
func credentialOptions(authorityHost string) *azidentity.ClientSecretCredentialOptions {
	opts := &azidentity.ClientSecretCredentialOptions{}
	opts.Retry = policy.RetryOptions{MaxRetries: -1}
	if authorityHost != "" {
		opts.Cloud = cloud.Configuration{
			ActiveDirectoryAuthorityHost: utils.EnsureTrailingSlash(authorityHost),
			Services:                     cloud.AzurePublic.Services,
		}
	}
	return opts
}
