package vfsmount

import (
	"context"
	"fmt"
)

// SecretStore represents a scoped key/value secret store such as an Azure Key Vault backed secret scope.
type SecretStore interface {
	// ListScopes returns the identifiers of every configured scope, in the store's natural order. The first
	// element is what callers fall back to when no scope is named explicitly.
	ListScopes(ctx context.Context) ([]string, error)

	// Get returns the secret stored under key in scope. Implementations must return an error wrapping
	// ErrNoScopeConfigured when the scope does not exist and one wrapping ErrCredentialNotFound when the key
	// is absent from the scope.
	Get(ctx context.Context, scope, key string) (string, error)
}

// Host represents the filesystem host that owns the mount table. The mount table is shared, mutable state;
// callers must not assume it is unchanged between two calls.
type Host interface {
	// Mounts returns every active mount on the host.
	Mounts(ctx context.Context) ([]MountInfo, error)

	// Ls lists the entries directly beneath path. path may be a mount point or any directory below one.
	Ls(ctx context.Context, path string) ([]Entry, error)

	// Mount binds source to mountPoint using extraConfigs to authenticate against the source. It returns an
	// error wrapping ErrMountConflict when mountPoint is already bound and one wrapping ErrAuthentication when
	// the identity provider rejects the credentials.
	Mount(ctx context.Context, source, mountPoint string, extraConfigs map[string]string) error

	// Unmount removes the binding for mountPoint. It returns an error wrapping ErrNotMounted when mountPoint is
	// not bound.
	Unmount(ctx context.Context, mountPoint string) error
}

// MountInfo describes one row of a host's mount table.
type MountInfo struct {
	// Path is the local mount point, ie /mnt/raw
	Path string

	// Source is the remote URI, ie abfss://raw@account.dfs.core.windows.net/
	Source string

	// ConfigVersion is incremented by the host every time a mount is (re)established.
	ConfigVersion uint64
}

// String implements fmt.Stringer
func (m MountInfo) String() string {
	return fmt.Sprintf("%s -> %s", m.Path, m.Source)
}

// Entry is a single item returned by Host.Ls.
type Entry struct {
	// Path is the absolute local path of the entry. Directories end in a slash.
	Path string

	// Name is the base name of the entry. Directories end in a slash.
	Name string

	// Size holds the size in bytes for files and 0 for directories.
	Size int64
}

// IsDir returns true when the entry is a directory (virtual or real).
func (e Entry) IsDir() bool {
	return len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/'
}
