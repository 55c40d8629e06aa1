package azure

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/backend/azure/types"
	"github.com/c2fo/vfsmount/utils"
)

// DefaultClient is the main implementation that actually makes the calls to the storage account
type DefaultClient struct {
	serviceURL *url.URL
	container  string
	credential azcore.TokenCredential
}

// NewClient initializes a new DefaultClient for the container identified by src, authenticated with the OAuth
// client credentials in cfg.
func NewClient(src Source, cfg auth.AuthConfig, opts *Options) (*DefaultClient, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = NewOptions()
	}

	credential, err := opts.Credential(cfg)
	if err != nil {
		return nil, err
	}

	serviceURL := src.BlobServiceURL()
	if opts.ServiceURL != "" {
		serviceURL = opts.ServiceURL
	}
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service url %q: %w", serviceURL, err)
	}

	return &DefaultClient{
		serviceURL: u,
		container:  src.Container,
		credential: credential,
	}, nil
}

func (c *DefaultClient) containerClient() (*container.Client, error) {
	containerURL := c.serviceURL.JoinPath(c.container).String()

	// every call is attempted exactly once
	clientOptions := &container.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}

	if c.credential == nil {
		return container.NewClientWithNoCredential(containerURL, clientOptions)
	}
	return container.NewClient(containerURL, c.credential, clientOptions)
}

// List returns the blobs and virtual directories directly beneath dir
func (c *DefaultClient) List(ctx context.Context, dir string) ([]types.Item, error) {
	cli, err := c.containerClient()
	if err != nil {
		return nil, err
	}

	prefix := utils.RemoveLeadingSlash(dir)
	if prefix != "" {
		prefix = utils.EnsureTrailingSlash(prefix)
	}

	items := []types.Item{}
	pager := cli.NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{
		Prefix: &prefix,
	})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, MapError(err)
		}
		if resp.Segment == nil {
			continue
		}
		for _, p := range resp.Segment.BlobPrefixes {
			if p.Name == nil {
				continue
			}
			items = append(items, types.Item{Name: *p.Name})
		}
		for _, b := range resp.Segment.BlobItems {
			if b.Name == nil || strings.HasSuffix(*b.Name, "/") {
				continue
			}
			item := types.Item{Name: *b.Name}
			if b.Properties != nil {
				item.Size = utils.Deref(b.Properties.ContentLength)
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// Probe lists at most one item at the container root.  It proves the credentials are accepted and the container
// exists without walking the container.
func (c *DefaultClient) Probe(ctx context.Context) error {
	cli, err := c.containerClient()
	if err != nil {
		return err
	}

	var maxResults int32 = 1
	pager := cli.NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{
		MaxResults: &maxResults,
	})
	// we are just validating the credentials, so there is no need to iterate over the pages
	_, err = pager.NextPage(ctx)
	return MapError(err)
}

var _ types.Client = (*DefaultClient)(nil)
