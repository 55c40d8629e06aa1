package azure

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/utils"
)

const (
	// Scheme is the uri scheme of a TLS-secured ADLS Gen2 source
	Scheme = "abfss"

	// DFSEndpointSuffix is the host suffix of the data lake endpoint on the public Azure cloud
	DFSEndpointSuffix = "dfs.core.windows.net"
)

var (
	accountNameRE   = regexp.MustCompile(`^[a-z0-9]{3,24}$`)
	containerNameRE = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61})[a-z0-9]$`)
)

// Source identifies an ADLS Gen2 container (filesystem) in a storage account
type Source struct {
	// Container holds the container (filesystem) name
	Container string

	// Account holds the storage account name
	Account string

	// EndpointSuffix holds the host suffix, DFSEndpointSuffix unless the source was parsed from a URI on another
	// cloud.
	EndpointSuffix string
}

// NewSource returns a validated Source on the public Azure cloud
func NewSource(container, account string) (Source, error) {
	s := Source{Container: container, Account: account, EndpointSuffix: DFSEndpointSuffix}
	return s, s.Validate()
}

// ParseSource parses an abfss://{container}@{account}.{suffix}/ uri.  A path below the container root, a port, or a
// password are not allowed.
func ParseSource(uri string) (Source, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %w", vfsmount.ErrInvalidSource, err)
	}
	if u.Scheme != Scheme {
		return Source{}, fmt.Errorf("%w: scheme must be %q, got %q", vfsmount.ErrInvalidSource, Scheme, u.Scheme)
	}
	if p := utils.RemoveTrailingSlash(u.Path); p != "" {
		return Source{}, fmt.Errorf("%w: unexpected path %q", vfsmount.ErrInvalidSource, u.Path)
	}
	if u.Port() != "" {
		return Source{}, fmt.Errorf("%w: unexpected port %q", vfsmount.ErrInvalidSource, u.Port())
	}

	var container string
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			return Source{}, fmt.Errorf("%w: credentials are not allowed in the uri", vfsmount.ErrInvalidSource)
		}
		container = u.User.Username()
	}

	account, suffix, ok := strings.Cut(u.Hostname(), ".")
	if !ok || !strings.HasPrefix(suffix, "dfs.") {
		return Source{}, fmt.Errorf("%w: host %q is not a data lake endpoint", vfsmount.ErrInvalidSource, u.Hostname())
	}

	s := Source{
		Container:      container,
		Account:        account,
		EndpointSuffix: suffix,
	}
	return s, s.Validate()
}

// Validate checks container and account names against the Azure naming rules
func (s Source) Validate() error {
	if !accountNameRE.MatchString(s.Account) {
		return fmt.Errorf("%w: storage account %q must be 3-24 lowercase letters or digits", vfsmount.ErrInvalidSource, s.Account)
	}
	if !containerNameRE.MatchString(s.Container) || strings.Contains(s.Container, "--") {
		return fmt.Errorf("%w: container %q must be 3-63 lowercase letters, digits or single dashes", vfsmount.ErrInvalidSource, s.Container)
	}
	return nil
}

func (s Source) suffix() string {
	if s.EndpointSuffix == "" {
		return DFSEndpointSuffix
	}
	return s.EndpointSuffix
}

// URI returns the abfss uri of the container root, ie abfss://raw@account.dfs.core.windows.net/
func (s Source) URI() string {
	return fmt.Sprintf("%s://%s@%s.%s/", Scheme, s.Container, s.Account, s.suffix())
}

// String implements fmt.Stringer
func (s Source) String() string {
	return s.URI()
}

// BlobServiceURL returns the blob endpoint of the account, ie https://account.blob.core.windows.net.  The blob and
// dfs endpoints address the same hierarchical namespace, and the blob endpoint is the one azblob speaks.
func (s Source) BlobServiceURL() string {
	return fmt.Sprintf("https://%s.%s", s.Account, strings.Replace(s.suffix(), "dfs.", "blob.", 1))
}
