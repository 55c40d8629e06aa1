// Package host holds the pieces shared by the vfsmount.Host implementations in host/mem and host/bolt: validating
// a mount request, probing the remote container, and resolving listings through the mount table.
package host

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/backend/azure"
	"github.com/c2fo/vfsmount/backend/azure/types"
	"github.com/c2fo/vfsmount/utils"
)

// ClientFactory creates the container client used to probe and list a mounted source
type ClientFactory func(src azure.Source, cfg auth.AuthConfig) (types.Client, error)

// DefaultClientFactory builds an azure.DefaultClient with options read from the environment
func DefaultClientFactory(src azure.Source, cfg auth.AuthConfig) (types.Client, error) {
	return azure.NewClient(src, cfg, azure.NewOptions())
}

// Request is a validated mount request
type Request struct {
	MountPoint string
	Source     azure.Source
	Config     auth.AuthConfig
}

// ParseRequest validates the arguments of vfsmount.Host.Mount
func ParseRequest(source, mountPoint string, extraConfigs map[string]string) (Request, error) {
	if err := utils.ValidateMountPath(mountPoint); err != nil {
		return Request{}, fmt.Errorf("%w: %w", vfsmount.ErrInvalidDescriptor, err)
	}
	src, err := azure.ParseSource(source)
	if err != nil {
		return Request{}, err
	}
	cfg, err := auth.ParseAuthConfig(extraConfigs)
	if err != nil {
		return Request{}, err
	}
	return Request{
		MountPoint: utils.CleanMountPath(mountPoint),
		Source:     src,
		Config:     cfg,
	}, nil
}

// Connect creates the client for req and probes the container so that rejected credentials surface at mount time
func Connect(ctx context.Context, factory ClientFactory, req Request) (types.Client, error) {
	if factory == nil {
		factory = DefaultClientFactory
	}
	client, err := factory(req.Source, req.Config)
	if err != nil {
		return nil, err
	}
	if err := client.Probe(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// FindMount returns the mount containing p.  When mounts are nested the deepest mount wins.
func FindMount(mounts []vfsmount.MountInfo, p string) (vfsmount.MountInfo, bool) {
	var found vfsmount.MountInfo
	ok := false
	for _, m := range mounts {
		if utils.IsWithin(m.Path, p) && len(m.Path) > len(found.Path) {
			found, ok = m, true
		}
	}
	return found, ok
}

// List lists p through client, where p lives within the mount at mountPath
func List(ctx context.Context, client types.Client, mountPath, p string) ([]vfsmount.Entry, error) {
	mountPath = utils.CleanMountPath(mountPath)
	rel := strings.TrimPrefix(utils.CleanMountPath(p), mountPath)

	items, err := client.List(ctx, rel)
	if err != nil {
		return nil, err
	}

	entries := make([]vfsmount.Entry, 0, len(items))
	for _, item := range items {
		name := path.Base(item.Name)
		full := mountPath + utils.EnsureLeadingSlash(item.Name)
		if item.IsDir() {
			name = utils.EnsureTrailingSlash(name)
		}
		entries = append(entries, vfsmount.Entry{Path: full, Name: name, Size: item.Size})
	}
	return entries, nil
}

// ListVirtual lists the directories leading to mount points beneath p, ie "/" lists "/mnt/" when "/mnt/raw" is
// mounted.  The root always lists, possibly empty; any other p returns an error wrapping vfsmount.ErrNotMounted when
// no mount point lives beneath it.
func ListVirtual(mounts []vfsmount.MountInfo, p string) ([]vfsmount.Entry, error) {
	dir := utils.EnsureTrailingSlash(utils.CleanMountPath(p))
	seen := make(map[string]bool)
	var entries []vfsmount.Entry
	for _, m := range mounts {
		if !strings.HasPrefix(m.Path, dir) {
			continue
		}
		child, _, _ := strings.Cut(strings.TrimPrefix(m.Path, dir), "/")
		if child == "" || seen[child] {
			continue
		}
		seen[child] = true
		entries = append(entries, vfsmount.Entry{
			Path: utils.EnsureTrailingSlash(dir + child),
			Name: utils.EnsureTrailingSlash(child),
		})
	}
	if len(entries) == 0 {
		if dir == "/" {
			return []vfsmount.Entry{}, nil
		}
		return nil, fmt.Errorf("%s: %w", p, vfsmount.ErrNotMounted)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// SortMounts orders mounts by path
func SortMounts(mounts []vfsmount.MountInfo) {
	sort.Slice(mounts, func(i, j int) bool { return mounts[i].Path < mounts[j].Path })
}
