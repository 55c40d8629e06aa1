package azure

import (
	"context"

	"github.com/c2fo/vfsmount/backend/azure/types"
)

// MockAzureClient is a mock implementation of types.Client.
type MockAzureClient struct {
	ProbeError     error
	ExpectedError  error
	ExpectedResult map[string][]types.Item
	ListCalls      []string
}

// List returns ExpectedResult[dir] if it exists, otherwise it returns ExpectedError.  dir is recorded in ListCalls.
func (a *MockAzureClient) List(_ context.Context, dir string) ([]types.Item, error) {
	a.ListCalls = append(a.ListCalls, dir)
	if items, ok := a.ExpectedResult[dir]; ok {
		return items, nil
	}
	if a.ExpectedError != nil {
		return nil, a.ExpectedError
	}
	return []types.Item{}, nil
}

// Probe returns the value of ProbeError
func (a *MockAzureClient) Probe(context.Context) error {
	return a.ProbeError
}

var _ types.Client = (*MockAzureClient)(nil)
