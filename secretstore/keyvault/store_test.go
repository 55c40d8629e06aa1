package keyvault

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/utils"
)

type fakeCredential struct{}

func (fakeCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "token"}, nil
}

type fakeVault struct {
	secrets map[string]string
	err     error
	calls   int
}

func (f *fakeVault) GetSecret(_ context.Context, name, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.calls++
	if f.err != nil {
		return azsecrets.GetSecretResponse{}, f.err
	}
	v, ok := f.secrets[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, responseError(http.StatusNotFound, "SecretNotFound")
	}
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: utils.Ptr(v)}}, nil
}

func responseError(status int, code string) error {
	return &azcore.ResponseError{
		ErrorCode:  code,
		StatusCode: status,
		RawResponse: &http.Response{
			StatusCode: status,
			Request:    httptest.NewRequest(http.MethodGet, "https://kv.vault.azure.net/secrets/x", nil),
		},
	}
}

type storeSuite struct {
	suite.Suite
	vaults map[string]*fakeVault
	store  *Store
}

func (s *storeSuite) SetupTest() {
	s.vaults = map[string]*fakeVault{
		"https://kv-databricks.vault.azure.net/": {secrets: map[string]string{
			"tenant-id":      "tenant",
			"application-id": "app",
		}},
		"https://kv-other.vault.azure.net/": {secrets: map[string]string{}},
	}
	s.store = NewStore(
		WithScopes(
			Scope{Name: "kv-databricks", VaultURL: "https://kv-databricks.vault.azure.net/"},
			Scope{Name: "kv-other", VaultURL: "https://kv-other.vault.azure.net/"},
		),
		WithCredential(fakeCredential{}),
		WithClientFactory(func(vaultURL string, _ azcore.TokenCredential) (SecretGetter, error) {
			return s.vaults[vaultURL], nil
		}),
	)
}

func (s *storeSuite) TestListScopes() {
	scopes, err := s.store.ListScopes(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"kv-databricks", "kv-other"}, scopes)
}

func (s *storeSuite) TestGet() {
	v, err := s.store.Get(context.Background(), "kv-databricks", "tenant-id")
	s.Require().NoError(err)
	s.Equal("tenant", v)

	_, err = s.store.Get(context.Background(), "kv-databricks", "application-id")
	s.Require().NoError(err)
	s.Equal(2, s.vaults["https://kv-databricks.vault.azure.net/"].calls, "client should be reused")
}

func (s *storeSuite) TestGet_MissingSecret() {
	_, err := s.store.Get(context.Background(), "kv-databricks", "secret")
	s.ErrorIs(err, vfsmount.ErrCredentialNotFound)
}

func (s *storeSuite) TestGet_UnknownScope() {
	_, err := s.store.Get(context.Background(), "kv-unknown", "secret")
	s.ErrorIs(err, vfsmount.ErrNoScopeConfigured)
}

func (s *storeSuite) TestGet_Forbidden() {
	s.vaults["https://kv-other.vault.azure.net/"].err = responseError(http.StatusForbidden, "Forbidden")

	_, err := s.store.Get(context.Background(), "kv-other", "secret")
	s.ErrorIs(err, vfsmount.ErrAuthentication)
}

func (s *storeSuite) TestGet_OtherError() {
	boom := errors.New("boom")
	s.vaults["https://kv-other.vault.azure.net/"].err = boom

	_, err := s.store.Get(context.Background(), "kv-other", "secret")
	s.ErrorIs(err, boom)
	s.NotErrorIs(err, vfsmount.ErrCredentialNotFound)
}

func TestStore(t *testing.T) {
	suite.Run(t, new(storeSuite))
}

func TestParseScopes(t *testing.T) {
	scopes, err := ParseScopes("kv-databricks=https://kv-databricks.vault.azure.net/, kv-other=https://kv-other.vault.azure.net/,")
	require.NoError(t, err)
	assert.Equal(t, []Scope{
		{Name: "kv-databricks", VaultURL: "https://kv-databricks.vault.azure.net/"},
		{Name: "kv-other", VaultURL: "https://kv-other.vault.azure.net/"},
	}, scopes)

	_, err = ParseScopes("kv-databricks")
	assert.Error(t, err, "missing vault url")

	_, err = ParseScopes("kv=http://insecure.vault.azure.net/")
	assert.Error(t, err, "vault url must be https")

	_, err = ParseScopes(" =https://v.vault.azure.net/")
	assert.Error(t, err, "blank scope name")

	_, err = ParseScopes("kv= ")
	assert.Error(t, err, "blank vault url")

	scopes, err = ParseScopes(" kv-databricks = https://kv-databricks.vault.azure.net/ ")
	require.NoError(t, err)
	assert.Equal(t, []Scope{{Name: "kv-databricks", VaultURL: "https://kv-databricks.vault.azure.net/"}}, scopes)
}

func TestNoRetry(t *testing.T) {
	assert.Equal(t, int32(-1), noRetry().Retry.MaxRetries, "key vault requests must never be retried")
}
