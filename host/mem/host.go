// Package mem provides an in-process vfsmount.Host.  The mount table lives in memory for the lifetime of the Host;
// listings are resolved against the mounted containers through a host.ClientFactory.
package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/backend/azure/types"
	"github.com/c2fo/vfsmount/host"
	"github.com/c2fo/vfsmount/options"
	"github.com/c2fo/vfsmount/utils"
)

type mountEntry struct {
	info   vfsmount.MountInfo
	client types.Client
}

// Host is an in-memory vfsmount.Host.  It is safe for concurrent use.
type Host struct {
	clientFactory host.ClientFactory
	logger        logrus.FieldLogger

	mu      sync.RWMutex
	table   map[string]*mountEntry
	version uint64
}

// NewHost returns an empty Host
func NewHost(opts ...options.Option[Host]) *Host {
	h := &Host{
		clientFactory: host.DefaultClientFactory,
		logger:        logrus.StandardLogger(),
		table:         make(map[string]*mountEntry),
	}
	options.ApplyOptions(h, opts...)
	return h
}

// Mounts implements vfsmount.Host
func (h *Host) Mounts(_ context.Context) ([]vfsmount.MountInfo, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mounts(), nil
}

func (h *Host) mounts() []vfsmount.MountInfo {
	mounts := make([]vfsmount.MountInfo, 0, len(h.table))
	for _, e := range h.table {
		mounts = append(mounts, e.info)
	}
	host.SortMounts(mounts)
	return mounts
}

// Ls implements vfsmount.Host
func (h *Host) Ls(ctx context.Context, p string) ([]vfsmount.Entry, error) {
	h.mu.RLock()
	mounts := h.mounts()
	m, ok := host.FindMount(mounts, p)
	var client types.Client
	if ok {
		client = h.table[m.Path].client
	}
	h.mu.RUnlock()

	if !ok {
		return host.ListVirtual(mounts, p)
	}
	entries, err := host.List(ctx, client, m.Path, p)
	if err != nil {
		return nil, utils.WrapListError(fmt.Errorf("%s: %w", p, err))
	}
	return entries, nil
}

// Mount implements vfsmount.Host
func (h *Host) Mount(ctx context.Context, source, mountPoint string, extraConfigs map[string]string) error {
	req, err := host.ParseRequest(source, mountPoint, extraConfigs)
	if err != nil {
		return utils.WrapMountError(err)
	}
	if h.isMounted(req.MountPoint) {
		return utils.WrapMountError(fmt.Errorf("%s: %w", req.MountPoint, vfsmount.ErrMountConflict))
	}

	client, err := host.Connect(ctx, h.clientFactory, req)
	if err != nil {
		return utils.WrapMountError(fmt.Errorf("%s: %w", req.Source, err))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// another caller may have mounted the path while the container was probed
	if _, ok := h.table[req.MountPoint]; ok {
		return utils.WrapMountError(fmt.Errorf("%s: %w", req.MountPoint, vfsmount.ErrMountConflict))
	}
	h.version++
	h.table[req.MountPoint] = &mountEntry{
		info: vfsmount.MountInfo{
			Path:          req.MountPoint,
			Source:        req.Source.URI(),
			ConfigVersion: h.version,
		},
		client: client,
	}
	h.logger.WithFields(logrus.Fields{
		"mount_path": req.MountPoint,
		"source":     req.Source.URI(),
	}).Debug("mounted")
	return nil
}

func (h *Host) isMounted(mountPoint string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.table[mountPoint]
	return ok
}

// Unmount implements vfsmount.Host
func (h *Host) Unmount(_ context.Context, mountPoint string) error {
	mountPoint = utils.CleanMountPath(mountPoint)

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.table[mountPoint]; !ok {
		return utils.WrapUnmountError(fmt.Errorf("%s: %w", mountPoint, vfsmount.ErrNotMounted))
	}
	delete(h.table, mountPoint)
	h.logger.WithField("mount_path", mountPoint).Debug("unmounted")
	return nil
}

var _ vfsmount.Host = (*Host)(nil)
