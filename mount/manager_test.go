package mount

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/backend/azure"
	"github.com/c2fo/vfsmount/backend/azure/types"
	"github.com/c2fo/vfsmount/host/mem"
	"github.com/c2fo/vfsmount/mocks"
)

const account = "0xxx0storageaccountadls"

var bundle = auth.Bundle{TenantID: "tenant-guid", ApplicationID: "app-guid", ClientSecret: "s3cr3t"}

type ManagerTestSuite struct {
	suite.Suite
	ctx     context.Context
	clients map[string]*azure.MockAzureClient
	host    *mem.Host
	mgr     *Manager
	cfg     auth.AuthConfig
	hook    *test.Hook
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clients = map[string]*azure.MockAzureClient{
		"raw": {ExpectedResult: map[string][]types.Item{
			"": {{Name: "deep_dive/"}},
		}},
		"olddata": {ExpectedResult: map[string][]types.Item{
			"": {{Name: "legacy/"}},
		}},
		"datalake": {ExpectedResult: map[string][]types.Item{
			"": {{Name: "bronze/"}, {Name: "silver/"}, {Name: "_SUCCESS", Size: 0}},
		}},
	}
	s.host = mem.NewHost(mem.WithClientFactory(func(src azure.Source, _ auth.AuthConfig) (types.Client, error) {
		c, ok := s.clients[src.Container]
		if !ok {
			return &azure.MockAzureClient{ProbeError: vfsmount.ErrContainerNotFound}, nil
		}
		return c, nil
	}))

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s.hook = hook
	s.mgr = NewManager(s.host, WithLogger(logger))

	cfg, err := auth.BuildAuthConfig(bundle)
	s.Require().NoError(err)
	s.cfg = cfg
}

func (s *ManagerTestSuite) TestEnsureMount_Unmounted() {
	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	s.Require().NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))

	mounts, err := s.mgr.ListMounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(mounts, 1)
	s.Equal("/mnt/raw", mounts[0].Path)
	s.Equal("abfss://raw@0xxx0storageaccountadls.dfs.core.windows.net/", mounts[0].Source)

	entries, err := s.mgr.VerifyMount(s.ctx, "/mnt/raw")
	s.Require().NoError(err)
	s.Equal([]vfsmount.Entry{{Path: "/mnt/raw/deep_dive/", Name: "deep_dive/"}}, entries)
}

func (s *ManagerTestSuite) TestEnsureMount_ReplacesDifferentContainer() {
	old := Descriptor{Container: "olddata", StorageAccount: account, MountPath: "/mnt/datalake"}
	s.Require().NoError(s.mgr.EnsureMount(s.ctx, old, s.cfg))

	d := Descriptor{Container: "datalake", StorageAccount: account, MountPath: "/mnt/datalake"}
	s.Require().NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))

	mounts, err := s.mgr.ListMounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(mounts, 1, "re-mount must not duplicate the binding")
	s.Equal("/mnt/datalake", mounts[0].Path)
	s.Equal("abfss://datalake@0xxx0storageaccountadls.dfs.core.windows.net/", mounts[0].Source)

	entries, err := s.host.Ls(s.ctx, "/mnt/datalake")
	s.Require().NoError(err)
	s.Equal([]vfsmount.Entry{
		{Path: "/mnt/datalake/bronze/", Name: "bronze/"},
		{Path: "/mnt/datalake/silver/", Name: "silver/"},
		{Path: "/mnt/datalake/_SUCCESS", Name: "_SUCCESS"},
	}, entries)
	s.Empty(s.clients["olddata"].ListCalls)
}

func (s *ManagerTestSuite) TestEnsureMount_SameSourceRemounts() {
	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	s.Require().NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))
	first, err := s.mgr.ListMounts(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))
	second, err := s.mgr.ListMounts(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(second, 1)
	s.Equal(first[0].Source, second[0].Source)
	s.Greater(second[0].ConfigVersion, first[0].ConfigVersion)
}

func (s *ManagerTestSuite) TestEnsureMount_AuthenticationFailure() {
	s.clients["raw"].ProbeError = vfsmount.ErrAuthentication
	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}

	err := s.mgr.EnsureMount(s.ctx, d, s.cfg)
	s.ErrorIs(err, vfsmount.ErrAuthentication)

	mounted, err := s.mgr.IsMounted(s.ctx, "/mnt/raw")
	s.Require().NoError(err)
	s.False(mounted)
}

func (s *ManagerTestSuite) TestEnsureMount_InvalidDescriptor() {
	err := s.mgr.EnsureMount(s.ctx, Descriptor{Container: "raw", MountPath: "/mnt/raw"}, s.cfg)
	s.ErrorIs(err, vfsmount.ErrInvalidDescriptor)
}

func (s *ManagerTestSuite) TestEnsureMount_InvalidAuthConfig() {
	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	err := s.mgr.EnsureMount(s.ctx, d, auth.AuthConfig{})
	s.ErrorIs(err, vfsmount.ErrInvalidAuthConfig)
}

func (s *ManagerTestSuite) TestUnmount_Guarded() {
	s.NoError(s.mgr.Unmount(s.ctx, "/mnt/raw"), "unmounting an unmounted path is a no-op")
	s.ErrorIs(s.host.Unmount(s.ctx, "/mnt/raw"), vfsmount.ErrNotMounted)

	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	s.Require().NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))
	s.NoError(s.mgr.Unmount(s.ctx, "/mnt/raw/"))

	mounted, err := s.mgr.IsMounted(s.ctx, "/mnt/raw")
	s.Require().NoError(err)
	s.False(mounted)
}

func (s *ManagerTestSuite) TestVerifyMount_NotMounted() {
	_, err := s.mgr.VerifyMount(s.ctx, "/mnt/raw")
	s.ErrorIs(err, vfsmount.ErrNotMounted)
}

func (s *ManagerTestSuite) TestSecretNeverLogged() {
	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	s.Require().NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))
	s.Require().NotEmpty(s.hook.AllEntries())

	for _, e := range s.hook.AllEntries() {
		line, err := e.String()
		s.Require().NoError(err)
		s.NotContains(line, bundle.ClientSecret)
	}
}

func TestManager(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

type ManagerMockHostTestSuite struct {
	suite.Suite
	ctx  context.Context
	host *mocks.Host
	mgr  *Manager
	cfg  auth.AuthConfig
}

func (s *ManagerMockHostTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.host = mocks.NewHost(s.T())
	s.mgr = NewManager(s.host, WithLogger(logrus.New()))

	cfg, err := auth.BuildAuthConfig(bundle)
	s.Require().NoError(err)
	s.cfg = cfg
}

func (s *ManagerMockHostTestSuite) TestEnsureMount_UnmountsBeforeMount() {
	source := "abfss://datalake@0xxx0storageaccountadls.dfs.core.windows.net/"
	mock.InOrder(
		s.host.On("Mounts", s.ctx).Return([]vfsmount.MountInfo{
			{Path: "/mnt/datalake", Source: "abfss://olddata@0xxx0storageaccountadls.dfs.core.windows.net/"},
		}, nil).Once(),
		s.host.On("Unmount", s.ctx, "/mnt/datalake").Return(nil).Once(),
		s.host.On("Mount", s.ctx, source, "/mnt/datalake", s.cfg.Map()).Return(nil).Once(),
	)

	d := Descriptor{Container: "datalake", StorageAccount: account, MountPath: "/mnt/datalake"}
	s.NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))
}

func (s *ManagerMockHostTestSuite) TestEnsureMount_NoUnmountWhenAbsent() {
	s.host.On("Mounts", s.ctx).Return([]vfsmount.MountInfo{{Path: "/mnt/other"}}, nil).Once()
	s.host.On("Mount", s.ctx, mock.Anything, "/mnt/raw", mock.Anything).Return(nil).Once()

	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	s.NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))
	s.host.AssertNotCalled(s.T(), "Unmount", mock.Anything, mock.Anything)
}

func (s *ManagerMockHostTestSuite) TestEnsureMount_PassesFiveKeys() {
	s.host.On("Mounts", s.ctx).Return(nil, nil).Once()
	s.host.On("Mount", s.ctx, mock.Anything, "/mnt/raw", mock.MatchedBy(func(m map[string]string) bool {
		return len(m) == 5 &&
			m[auth.ConfigKeyAuthType] == "OAuth" &&
			m[auth.ConfigKeyClientID] == "app-guid" &&
			m[auth.ConfigKeyClientSecret] == "s3cr3t" &&
			m[auth.ConfigKeyClientEndpoint] == "https://login.microsoftonline.com/tenant-guid/oauth2/token"
	})).Return(nil).Once()

	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	s.NoError(s.mgr.EnsureMount(s.ctx, d, s.cfg))
}

func (s *ManagerMockHostTestSuite) TestEnsureMount_UnmountErrorStops() {
	s.host.On("Mounts", s.ctx).Return([]vfsmount.MountInfo{{Path: "/mnt/raw"}}, nil).Once()
	s.host.On("Unmount", s.ctx, "/mnt/raw").Return(vfsmount.ErrNotMounted).Once()

	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	err := s.mgr.EnsureMount(s.ctx, d, s.cfg)
	s.ErrorIs(err, vfsmount.ErrNotMounted, "a concurrent unmount surfaces to the caller")
	s.host.AssertNotCalled(s.T(), "Mount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ManagerMockHostTestSuite) TestEnsureMount_ConflictPropagates() {
	s.host.On("Mounts", s.ctx).Return(nil, nil).Once()
	s.host.On("Mount", s.ctx, mock.Anything, "/mnt/raw", mock.Anything).Return(vfsmount.ErrMountConflict).Once()

	d := Descriptor{Container: "raw", StorageAccount: account, MountPath: "/mnt/raw"}
	s.ErrorIs(s.mgr.EnsureMount(s.ctx, d, s.cfg), vfsmount.ErrMountConflict)
}

func (s *ManagerMockHostTestSuite) TestMissingSecretNoMount() {
	store := mocks.NewStaticSecretStore("kv-databricks", map[string]string{
		auth.KeyTenantID:      "tenant-guid",
		auth.KeyApplicationID: "app-guid",
	})

	_, err := auth.ResolveCredentials(s.ctx, store, "")
	s.ErrorIs(err, vfsmount.ErrCredentialNotFound)

	s.host.AssertNotCalled(s.T(), "Mounts", mock.Anything)
	s.host.AssertNotCalled(s.T(), "Mount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ManagerMockHostTestSuite) TestListMountsError() {
	s.host.On("Mounts", s.ctx).Return(nil, vfsmount.ErrAuthentication).Once()
	_, err := s.mgr.ListMounts(s.ctx)
	s.ErrorIs(err, vfsmount.ErrAuthentication)
}

func TestManagerMockHost(t *testing.T) {
	suite.Run(t, new(ManagerMockHostTestSuite))
}
