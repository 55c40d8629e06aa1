package testcontainers

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/azure/azurite"

	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/backend/azure"
	"github.com/c2fo/vfsmount/backend/azure/types"
	"github.com/c2fo/vfsmount/host"
	"github.com/c2fo/vfsmount/utils"
)

// Azurite is a running Azurite container
type Azurite struct {
	// ServiceURL holds the blob endpoint including the account path, ie http://127.0.0.1:32768/devstoreaccount1
	ServiceURL string

	client *azblob.Client
}

// StartAzurite runs Azurite with only the blob service enabled.  The container is removed when t completes.
func StartAzurite(t *testing.T) *Azurite {
	ctx := context.Background()
	is := require.New(t)

	ctr, err := azurite.Run(ctx, "mcr.microsoft.com/azure-storage/azurite:latest",
		testcontainers.WithName("vfsmount-azurite"),
		azurite.WithEnabledServices(azurite.BlobService),
	)
	testcontainers.CleanupContainer(t, ctr)
	is.NoError(err)

	ep, err := ctr.BlobServiceURL(ctx)
	is.NoError(err)

	cred, err := azblob.NewSharedKeyCredential(azurite.AccountName, azurite.AccountKey)
	is.NoError(err)

	u, err := url.JoinPath(ep, azurite.AccountName)
	is.NoError(err)

	cli, err := azblob.NewClientWithSharedKeyCredential(u, cred, nil)
	is.NoError(err)

	return &Azurite{ServiceURL: u, client: cli}
}

// CreateContainer creates a publicly listable container holding blobs, keyed by blob name.  Directories are
// implied by the slashes in the names.
func (a *Azurite) CreateContainer(t *testing.T, name string, blobs map[string]string) {
	ctx := context.Background()
	is := require.New(t)

	_, err := a.client.CreateContainer(ctx, name, &container.CreateOptions{
		Access: utils.Ptr(azblob.PublicAccessTypeContainer),
	})
	is.NoError(err)

	for blobName, content := range blobs {
		_, err := a.client.UploadStream(ctx, name, blobName, strings.NewReader(content), nil)
		is.NoError(err)
	}
}

// ClientFactory returns a host.ClientFactory listing containers of the emulator anonymously.  The account of the
// mounted source is ignored since Azurite serves a single account.
func (a *Azurite) ClientFactory() host.ClientFactory {
	return func(src azure.Source, cfg auth.AuthConfig) (types.Client, error) {
		return azure.NewClient(src, cfg, &azure.Options{ServiceURL: a.ServiceURL, Anonymous: true})
	}
}
