package mount

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/options"
	"github.com/c2fo/vfsmount/utils"
)

// Manager ensures, removes, and verifies mounts on a vfsmount.Host.  It holds no mount state of its own.
type Manager struct {
	host   vfsmount.Host
	logger logrus.FieldLogger
}

// NewManager returns a Manager driving host
func NewManager(host vfsmount.Host, opts ...options.Option[Manager]) *Manager {
	m := &Manager{
		host:   host,
		logger: logrus.StandardLogger(),
	}
	options.ApplyOptions(m, opts...)
	return m
}

// ListMounts returns every active mount on the host
func (m *Manager) ListMounts(ctx context.Context) ([]vfsmount.MountInfo, error) {
	mounts, err := m.host.Mounts(ctx)
	if err != nil {
		return nil, utils.WrapMountsError(err)
	}
	return mounts, nil
}

// IsMounted reports whether path is currently a mount point on the host
func (m *Manager) IsMounted(ctx context.Context, path string) (bool, error) {
	_, ok, err := m.lookup(ctx, path)
	return ok, err
}

func (m *Manager) lookup(ctx context.Context, path string) (vfsmount.MountInfo, bool, error) {
	mounts, err := m.ListMounts(ctx)
	if err != nil {
		return vfsmount.MountInfo{}, false, err
	}
	path = utils.CleanMountPath(path)
	i := slices.IndexFunc(mounts, func(mi vfsmount.MountInfo) bool {
		return utils.CleanMountPath(mi.Path) == path
	})
	if i < 0 {
		return vfsmount.MountInfo{}, false, nil
	}
	return mounts[i], true, nil
}

// EnsureMount binds the container of d to d.MountPath using cfg.  An existing binding at d.MountPath is removed
// first, whatever its source.  On success the mount is visible through Host.Mounts and Host.Ls.
func (m *Manager) EnsureMount(ctx context.Context, d Descriptor, cfg auth.AuthConfig) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := m.logger.WithFields(logrus.Fields{
		"mount_path": d.Path(),
		"source":     d.SourceURI(),
	})

	if err := m.Unmount(ctx, d.Path()); err != nil {
		return err
	}

	if err := m.host.Mount(ctx, d.SourceURI(), d.Path(), cfg.Map()); err != nil {
		log.WithError(err).Error("mount failed")
		return fmt.Errorf("%s: %w", d, err)
	}
	log.Info("mounted")
	return nil
}

// Unmount removes the binding at path.  It checks the mount table first and returns nil when path is not mounted.
func (m *Manager) Unmount(ctx context.Context, path string) error {
	existing, ok, err := m.lookup(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	log := m.logger.WithFields(logrus.Fields{
		"mount_path": existing.Path,
		"source":     existing.Source,
	})
	if err := m.host.Unmount(ctx, existing.Path); err != nil {
		log.WithError(err).Error("unmount failed")
		return err
	}
	log.Info("unmounted")
	return nil
}

// VerifyMount lists the top-level entries of the mount at path
func (m *Manager) VerifyMount(ctx context.Context, path string) ([]vfsmount.Entry, error) {
	entries, err := m.host.Ls(ctx, utils.CleanMountPath(path))
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", path, err)
	}
	return entries, nil
}
