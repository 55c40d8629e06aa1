package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"go.etcd.io/bbolt"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/backend/azure"
	"github.com/c2fo/vfsmount/backend/azure/types"
)

const rawSource = "abfss://raw@0xxx0storageaccountadls.dfs.core.windows.net/"

type HostTestSuite struct {
	suite.Suite
	dbPath  string
	client  *azure.MockAzureClient
	configs []auth.AuthConfig
	config  map[string]string
}

func (s *HostTestSuite) SetupTest() {
	s.dbPath = filepath.Join(s.T().TempDir(), "nested", "mounts.db")
	s.client = &azure.MockAzureClient{ExpectedResult: map[string][]types.Item{
		"": {{Name: "deep_dive/"}, {Name: "readme.txt", Size: 5}},
	}}
	s.configs = nil

	cfg, err := auth.BuildAuthConfig(auth.Bundle{TenantID: "tenant", ApplicationID: "app", ClientSecret: "s3cr3t"})
	s.Require().NoError(err)
	s.config = cfg.Map()
}

func (s *HostTestSuite) open() *Host {
	h, err := Open(Options{Path: s.dbPath, LockTimeout: time.Second},
		WithClientFactory(func(_ azure.Source, cfg auth.AuthConfig) (types.Client, error) {
			s.configs = append(s.configs, cfg)
			return s.client, nil
		}),
		WithLogger(logrus.New()),
	)
	s.Require().NoError(err)
	return h
}

func (s *HostTestSuite) TestMountPersists() {
	ctx := context.Background()
	h := s.open()
	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))
	s.Require().NoError(h.Close())

	h = s.open()
	defer func() { s.NoError(h.Close()) }()

	mounts, err := h.Mounts(ctx)
	s.Require().NoError(err)
	s.Equal([]vfsmount.MountInfo{{Path: "/mnt/raw", Source: rawSource, ConfigVersion: 1}}, mounts)
}

func (s *HostTestSuite) TestSecretNotPersisted() {
	ctx := context.Background()
	h := s.open()
	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))
	s.Require().NoError(h.Close())

	db, err := bbolt.Open(s.dbPath, 0o600, &bbolt.Options{Timeout: time.Second})
	s.Require().NoError(err)
	defer func() { s.NoError(db.Close()) }()
	s.NoError(db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(mountsBucket).Get([]byte("/mnt/raw"))
		s.Require().NotNil(v)
		s.NotContains(string(v), "s3cr3t")
		s.Contains(string(v), "app")
		return nil
	}))
}

func (s *HostTestSuite) TestLs_SameProcess() {
	ctx := context.Background()
	h := s.open()
	defer func() { s.NoError(h.Close()) }()
	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))

	entries, err := h.Ls(ctx, "/mnt/raw")
	s.Require().NoError(err)
	s.Equal([]vfsmount.Entry{
		{Path: "/mnt/raw/deep_dive/", Name: "deep_dive/"},
		{Path: "/mnt/raw/readme.txt", Name: "readme.txt", Size: 5},
	}, entries)

	s.Require().Len(s.configs, 2)
	s.Equal("s3cr3t", s.configs[1].ClientSecret)
}

func (s *HostTestSuite) TestLs_OtherProcess() {
	ctx := context.Background()
	h := s.open()
	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))
	s.Require().NoError(h.Close())

	h = s.open()
	_, err := h.Ls(ctx, "/mnt/raw")
	s.ErrorIs(err, ErrSecretUnavailable)
	s.Require().NoError(h.Close())

	var asked Record
	h = s.open()
	defer func() { s.NoError(h.Close()) }()
	WithSecretFunc(func(_ context.Context, r Record) (string, error) {
		asked = r
		return "resolved", nil
	}).Apply(h)

	entries, err := h.Ls(ctx, "/mnt/raw")
	s.Require().NoError(err)
	s.Len(entries, 2)
	s.Equal("app", asked.ClientID)
	s.Equal(auth.TokenEndpoint("tenant"), asked.TokenEndpoint)
	s.Equal("resolved", s.configs[len(s.configs)-1].ClientSecret)
}

func (s *HostTestSuite) TestLs_SecretFuncError() {
	ctx := context.Background()
	h := s.open()
	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))
	s.Require().NoError(h.Close())

	h = s.open()
	defer func() { s.NoError(h.Close()) }()
	WithSecretFunc(func(context.Context, Record) (string, error) {
		return "", vfsmount.ErrCredentialNotFound
	}).Apply(h)

	_, err := h.Ls(ctx, "/mnt/raw")
	s.ErrorIs(err, vfsmount.ErrCredentialNotFound)
}

func (s *HostTestSuite) TestLs_Virtual() {
	ctx := context.Background()
	h := s.open()
	defer func() { s.NoError(h.Close()) }()
	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))

	entries, err := h.Ls(ctx, "/")
	s.Require().NoError(err)
	s.Equal([]vfsmount.Entry{{Path: "/mnt/", Name: "mnt/"}}, entries)

	_, err = h.Ls(ctx, "/tmp")
	s.ErrorIs(err, vfsmount.ErrNotMounted)
}

func (s *HostTestSuite) TestMount_Conflict() {
	ctx := context.Background()
	h := s.open()
	defer func() { s.NoError(h.Close()) }()
	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))

	err := h.Mount(ctx, "abfss://datalake@0xxx0storageaccountadls.dfs.core.windows.net/", "/mnt/raw/", s.config)
	s.ErrorIs(err, vfsmount.ErrMountConflict)
}

func (s *HostTestSuite) TestMount_ProbeFails() {
	ctx := context.Background()
	s.client.ProbeError = vfsmount.ErrAuthentication
	h := s.open()
	defer func() { s.NoError(h.Close()) }()

	err := h.Mount(ctx, rawSource, "/mnt/raw", s.config)
	s.ErrorIs(err, vfsmount.ErrAuthentication)

	mounts, err := h.Mounts(ctx)
	s.Require().NoError(err)
	s.Empty(mounts)
}

func (s *HostTestSuite) TestUnmountAndVersion() {
	ctx := context.Background()
	h := s.open()
	defer func() { s.NoError(h.Close()) }()

	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))
	s.Require().NoError(h.Unmount(ctx, "/mnt/raw"))
	s.ErrorIs(h.Unmount(ctx, "/mnt/raw"), vfsmount.ErrNotMounted)

	s.Require().NoError(h.Mount(ctx, rawSource, "/mnt/raw", s.config))
	mounts, err := h.Mounts(ctx)
	s.Require().NoError(err)
	s.Require().Len(mounts, 1)
	s.Equal(uint64(2), mounts[0].ConfigVersion)
}

func (s *HostTestSuite) TestOpen_Locked() {
	h := s.open()
	defer func() { s.NoError(h.Close()) }()

	_, err := Open(Options{Path: s.dbPath, LockTimeout: 50 * time.Millisecond})
	s.Error(err)
	s.True(errors.Is(err, bbolt.ErrTimeout))
}

func TestHost(t *testing.T) {
	suite.Run(t, new(HostTestSuite))
}

type OptionsTestSuite struct {
	suite.Suite
}

func (s *OptionsTestSuite) TestNewOptions() {
	s.T().Setenv(EnvDBPath, "")
	o := NewOptions()
	s.Equal(DefaultPath, o.Path)
	s.Equal(DefaultLockTimeout, o.LockTimeout)

	s.T().Setenv(EnvDBPath, "/tmp/x.db")
	s.Equal("/tmp/x.db", NewOptions().Path)
}

func TestOptions(t *testing.T) {
	suite.Run(t, new(OptionsTestSuite))
}
