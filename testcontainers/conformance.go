package testcontainers

import (
	"context"
	"path"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/mount"
)

// ConformanceOptions describes the remote containers the conformance tests mount
type ConformanceOptions struct {
	// Account holds the storage account name used in source URIs
	Account string

	// First and Second name two distinct existing containers
	First  string
	Second string

	// SecondEntries lists the expected top-level entry names of Second, directories with a trailing slash
	SecondEntries []string

	// MountRoot holds the directory the test mount points are created beneath.  Defaults to /mnt/conformance.
	MountRoot string
}

// RunConformanceTests runs all conformance tests against h, which must start with an empty mount table.
// This is the main entry point for host conformance testing.
func RunConformanceTests(t *testing.T, h vfsmount.Host, opts ConformanceOptions) {
	t.Helper()
	if opts.MountRoot == "" {
		opts.MountRoot = "/mnt/conformance"
	}

	cfg, err := auth.BuildAuthConfig(auth.Bundle{
		TenantID:      "00000000-0000-0000-0000-000000000000",
		ApplicationID: "conformance",
		ClientSecret:  "conformance-secret",
	})
	require.NoError(t, err)

	t.Run("Host", func(t *testing.T) {
		RunHostTests(t, h, cfg, opts)
	})
	t.Run("Manager", func(t *testing.T) {
		RunManagerTests(t, h, cfg, opts)
	})
}

// RunHostTests exercises the vfsmount.Host contract directly
func RunHostTests(t *testing.T, h vfsmount.Host, cfg auth.AuthConfig, opts ConformanceOptions) {
	ctx := context.Background()
	mountPoint := path.Join(opts.MountRoot, "host")
	first := mount.Descriptor{Container: opts.First, StorageAccount: opts.Account, MountPath: mountPoint}
	second := mount.Descriptor{Container: opts.Second, StorageAccount: opts.Account, MountPath: mountPoint}

	t.Run("Mount", func(t *testing.T) {
		require.NoError(t, h.Mount(ctx, first.SourceURI(), mountPoint, cfg.Map()))
		mounts, err := h.Mounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.SourceURI(), findMount(t, mounts, mountPoint).Source)
	})

	t.Run("MountConflict", func(t *testing.T) {
		err := h.Mount(ctx, second.SourceURI(), mountPoint, cfg.Map())
		assert.ErrorIs(t, err, vfsmount.ErrMountConflict)
		mounts, err := h.Mounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.SourceURI(), findMount(t, mounts, mountPoint).Source, "table must be unchanged")
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		err := h.Mount(ctx, second.SourceURI(), path.Join(opts.MountRoot, "invalid"), map[string]string{})
		assert.ErrorIs(t, err, vfsmount.ErrInvalidAuthConfig)
	})

	t.Run("LsVirtual", func(t *testing.T) {
		entries, err := h.Ls(ctx, opts.MountRoot)
		require.NoError(t, err)
		assert.Contains(t, names(entries), "host/")
	})

	t.Run("Unmount", func(t *testing.T) {
		require.NoError(t, h.Unmount(ctx, mountPoint))
		mounts, err := h.Mounts(ctx)
		require.NoError(t, err)
		for _, m := range mounts {
			assert.NotEqual(t, mountPoint, m.Path)
		}
	})

	t.Run("UnmountNotMounted", func(t *testing.T) {
		assert.ErrorIs(t, h.Unmount(ctx, mountPoint), vfsmount.ErrNotMounted)
	})

	t.Run("LsNotMounted", func(t *testing.T) {
		_, err := h.Ls(ctx, mountPoint)
		assert.ErrorIs(t, err, vfsmount.ErrNotMounted)
	})
}

// RunManagerTests drives h through a mount.Manager the way an operator would
func RunManagerTests(t *testing.T, h vfsmount.Host, cfg auth.AuthConfig, opts ConformanceOptions) {
	ctx := context.Background()
	mgr := mount.NewManager(h)
	mountPoint := path.Join(opts.MountRoot, "datalake")

	old := mount.Descriptor{Container: opts.First, StorageAccount: opts.Account, MountPath: mountPoint}
	d := mount.Descriptor{Container: opts.Second, StorageAccount: opts.Account, MountPath: mountPoint}

	t.Run("EnsureMountUnmounted", func(t *testing.T) {
		require.NoError(t, mgr.EnsureMount(ctx, old, cfg))
		mounts, err := mgr.ListMounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, old.SourceURI(), findMount(t, mounts, mountPoint).Source)
	})

	t.Run("EnsureMountReplaces", func(t *testing.T) {
		require.NoError(t, mgr.EnsureMount(ctx, d, cfg))
		mounts, err := mgr.ListMounts(ctx)
		require.NoError(t, err)

		count := 0
		for _, m := range mounts {
			if m.Path == mountPoint {
				count++
			}
		}
		assert.Equal(t, 1, count)
		assert.Equal(t, d.SourceURI(), findMount(t, mounts, mountPoint).Source)
	})

	t.Run("VerifyMount", func(t *testing.T) {
		entries, err := mgr.VerifyMount(ctx, mountPoint)
		require.NoError(t, err)
		want := append([]string(nil), opts.SecondEntries...)
		sort.Strings(want)
		got := names(entries)
		sort.Strings(got)
		assert.Equal(t, want, got)
	})

	t.Run("UnmountGuarded", func(t *testing.T) {
		require.NoError(t, mgr.Unmount(ctx, mountPoint))
		assert.NoError(t, mgr.Unmount(ctx, mountPoint))
	})
}

func findMount(t *testing.T, mounts []vfsmount.MountInfo, p string) vfsmount.MountInfo {
	t.Helper()
	for _, m := range mounts {
		if m.Path == p {
			return m
		}
	}
	require.Failf(t, "mount not found", "%s is not in %v", p, mounts)
	return vfsmount.MountInfo{}
}

func names(entries []vfsmount.Entry) []string {
	n := make([]string, 0, len(entries))
	for _, e := range entries {
		n = append(n, e.Name)
	}
	return n
}
