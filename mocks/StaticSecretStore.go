package mocks

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/c2fo/vfsmount"
)

// NewStaticSecretStore creates a SecretStore mock holding a single scope with the provided secrets.  Keys absent from
// secrets return an error wrapping vfsmount.ErrCredentialNotFound.
func NewStaticSecretStore(scope string, secrets map[string]string) *SecretStore {
	store := &SecretStore{}

	// Set default expectations for store operations
	store.On("ListScopes", mock.Anything).Return([]string{scope}, nil)
	store.On("Get", mock.Anything, scope, mock.Anything).Return(
		func(_ context.Context, _, key string) (string, error) {
			if v, ok := secrets[key]; ok {
				return v, nil
			}
			return "", fmt.Errorf("%s/%s: %w", scope, key, vfsmount.ErrCredentialNotFound)
		})

	return store
}
