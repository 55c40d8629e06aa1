// Package bolt provides a vfsmount.Host whose mount table is persisted in a bbolt database, so the table is shared by
// every process that opens the same file and survives restarts.
//
// Client secrets are never written to the database.  A Host remembers the secrets of the mounts it created itself;
// to list a mount created by another process it asks the SecretFunc given with WithSecretFunc.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/backend/azure"
	"github.com/c2fo/vfsmount/host"
	"github.com/c2fo/vfsmount/options"
	"github.com/c2fo/vfsmount/utils"
)

var mountsBucket = []byte("mounts")

// ErrSecretUnavailable is returned by Ls when the client secret of a mount created by another process is unknown
var ErrSecretUnavailable = errors.New("client secret for mount is not available in this process")

// Record is the persisted form of one mount
type Record struct {
	Path          string    `json:"path"`
	Source        string    `json:"source"`
	ConfigVersion uint64    `json:"configVersion"`
	ClientID      string    `json:"clientId"`
	TokenEndpoint string    `json:"tokenEndpoint"`
	MountedAt     time.Time `json:"mountedAt"`
}

// Info returns the vfsmount.MountInfo view of the record
func (r Record) Info() vfsmount.MountInfo {
	return vfsmount.MountInfo{Path: r.Path, Source: r.Source, ConfigVersion: r.ConfigVersion}
}

// SecretFunc returns the client secret for a persisted mount
type SecretFunc func(ctx context.Context, r Record) (string, error)

// Host is a vfsmount.Host backed by a bbolt database
type Host struct {
	db            *bbolt.DB
	clientFactory host.ClientFactory
	secretFunc    SecretFunc
	logger        logrus.FieldLogger
	now           func() time.Time

	mu      sync.Mutex
	secrets map[string]string
}

// Open opens (creating if needed) the database at o.Path and returns a Host using it
func Open(o Options, opts ...options.Option[Host]) (*Host, error) {
	dbPath, err := homedir.Expand(o.Path)
	if err != nil {
		return nil, fmt.Errorf("expand db path %q: %w", o.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: o.LockTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(mountsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	h := &Host{
		db:            db,
		clientFactory: host.DefaultClientFactory,
		logger:        logrus.StandardLogger(),
		now:           time.Now,
		secrets:       make(map[string]string),
	}
	options.ApplyOptions(h, opts...)
	return h, nil
}

// Close releases the database
func (h *Host) Close() error {
	return h.db.Close()
}

// Path returns the database file path
func (h *Host) Path() string {
	return h.db.Path()
}

func (h *Host) records() ([]Record, error) {
	var records []Record
	err := h.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(mountsBucket).ForEach(func(_, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			records = append(records, r)
			return nil
		})
	})
	return records, err
}

// Mounts implements vfsmount.Host
func (h *Host) Mounts(_ context.Context) ([]vfsmount.MountInfo, error) {
	records, err := h.records()
	if err != nil {
		return nil, utils.WrapMountsError(err)
	}
	mounts := make([]vfsmount.MountInfo, 0, len(records))
	for _, r := range records {
		mounts = append(mounts, r.Info())
	}
	host.SortMounts(mounts)
	return mounts, nil
}

// Ls implements vfsmount.Host
func (h *Host) Ls(ctx context.Context, p string) ([]vfsmount.Entry, error) {
	records, err := h.records()
	if err != nil {
		return nil, utils.WrapListError(utils.WrapMountsError(err))
	}
	mounts := make([]vfsmount.MountInfo, 0, len(records))
	byPath := make(map[string]Record, len(records))
	for _, r := range records {
		mounts = append(mounts, r.Info())
		byPath[r.Path] = r
	}

	m, ok := host.FindMount(mounts, p)
	if !ok {
		return host.ListVirtual(mounts, p)
	}

	req, err := h.request(ctx, byPath[m.Path])
	if err != nil {
		return nil, utils.WrapListError(fmt.Errorf("%s: %w", p, err))
	}
	factory := h.clientFactory
	if factory == nil {
		factory = host.DefaultClientFactory
	}
	client, err := factory(req.Source, req.Config)
	if err != nil {
		return nil, utils.WrapListError(fmt.Errorf("%s: %w", p, err))
	}
	entries, err := host.List(ctx, client, m.Path, p)
	if err != nil {
		return nil, utils.WrapListError(fmt.Errorf("%s: %w", p, err))
	}
	return entries, nil
}

// request rebuilds the mount request of a persisted record, filling in the client secret
func (h *Host) request(ctx context.Context, r Record) (host.Request, error) {
	src, err := azure.ParseSource(r.Source)
	if err != nil {
		return host.Request{}, err
	}

	h.mu.Lock()
	secret, ok := h.secrets[r.Path]
	h.mu.Unlock()
	if !ok {
		if h.secretFunc == nil {
			return host.Request{}, ErrSecretUnavailable
		}
		if secret, err = h.secretFunc(ctx, r); err != nil {
			return host.Request{}, err
		}
	}

	cfg := auth.AuthConfig{
		AuthType:      auth.AuthTypeOAuth,
		ProviderType:  auth.ClientCredsTokenProvider,
		ClientID:      r.ClientID,
		ClientSecret:  secret,
		TokenEndpoint: r.TokenEndpoint,
	}
	if err := cfg.Validate(); err != nil {
		return host.Request{}, err
	}
	return host.Request{MountPoint: r.Path, Source: src, Config: cfg}, nil
}

// Mount implements vfsmount.Host
func (h *Host) Mount(ctx context.Context, source, mountPoint string, extraConfigs map[string]string) error {
	req, err := host.ParseRequest(source, mountPoint, extraConfigs)
	if err != nil {
		return utils.WrapMountError(err)
	}
	if mounted, err := h.isMounted(req.MountPoint); err != nil {
		return utils.WrapMountError(err)
	} else if mounted {
		return utils.WrapMountError(fmt.Errorf("%s: %w", req.MountPoint, vfsmount.ErrMountConflict))
	}

	if _, err := host.Connect(ctx, h.clientFactory, req); err != nil {
		return utils.WrapMountError(fmt.Errorf("%s: %w", req.Source, err))
	}

	err = h.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(mountsBucket)
		// another process may have mounted the path while the container was probed
		if b.Get([]byte(req.MountPoint)) != nil {
			return fmt.Errorf("%s: %w", req.MountPoint, vfsmount.ErrMountConflict)
		}
		version, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(Record{
			Path:          req.MountPoint,
			Source:        req.Source.URI(),
			ConfigVersion: version,
			ClientID:      req.Config.ClientID,
			TokenEndpoint: req.Config.TokenEndpoint,
			MountedAt:     h.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		return b.Put([]byte(req.MountPoint), data)
	})
	if err != nil {
		return utils.WrapMountError(err)
	}

	h.mu.Lock()
	h.secrets[req.MountPoint] = req.Config.ClientSecret
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"mount_path": req.MountPoint,
		"source":     req.Source.URI(),
		"db":         h.Path(),
	}).Debug("mounted")
	return nil
}

func (h *Host) isMounted(mountPoint string) (bool, error) {
	var mounted bool
	err := h.db.View(func(tx *bbolt.Tx) error {
		mounted = tx.Bucket(mountsBucket).Get([]byte(mountPoint)) != nil
		return nil
	})
	return mounted, err
}

// Unmount implements vfsmount.Host
func (h *Host) Unmount(_ context.Context, mountPoint string) error {
	mountPoint = utils.CleanMountPath(mountPoint)

	err := h.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(mountsBucket)
		if b.Get([]byte(mountPoint)) == nil {
			return fmt.Errorf("%s: %w", mountPoint, vfsmount.ErrNotMounted)
		}
		return b.Delete([]byte(mountPoint))
	})
	if err != nil {
		return utils.WrapUnmountError(err)
	}

	h.mu.Lock()
	delete(h.secrets, mountPoint)
	h.mu.Unlock()

	h.logger.WithField("mount_path", mountPoint).Debug("unmounted")
	return nil
}

var _ vfsmount.Host = (*Host)(nil)
