package service_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go-depsolve/config"
	"go-depsolve/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		WorkerPoolSize: 1,
		DefaultDepth:   -1,
		StorePath:      filepath.Join(dir, "repos.db"),
		LogsPath:       filepath.Join(dir, "logs"),
		LegacyIndex:    filepath.Join(dir, "index.txt"),
		Repositories: []config.RepositoryConfig{
			{ID: "base", Priority: 0, Kind: "mixed", Store: "/srv/repos/base"},
		},
	}
}

func TestNewService_OpensAndCloses(t *testing.T) {
	cfg := testConfig(t)

	svc, err := service.NewService(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}

func TestService_Status_ReportsEmptyRepository(t *testing.T) {
	cfg := testConfig(t)
	svc, err := service.NewService(cfg)
	require.NoError(t, err)
	defer svc.Close()

	status, err := svc.Status()
	require.NoError(t, err)
	require.Len(t, status.Repositories, 1)
	require.Equal(t, "base", status.Repositories[0].RepoID)
	require.Equal(t, 0, status.Repositories[0].BinaryCount)
}

func TestService_InstallDepend_ThroughStore(t *testing.T) {
	cfg := testConfig(t)
	svc, err := service.NewService(cfg)
	require.NoError(t, err)
	defer svc.Close()

	s := svc.Store()
	require.NoError(t, s.PutBinary(binaryRow("base", "app", "1.0", "app-src")))
	require.NoError(t, s.PutProvides("base", "app", providerRefs("base", "app", "app-src", "1.0")))

	result, err := svc.InstallDepend(service.InstallDependOptions{Names: []string{"app"}, Depth: -1})
	require.NoError(t, err)
	require.Contains(t, result.Envelope, "app")
}

func TestService_ResetStore_RemovesAndReopens(t *testing.T) {
	cfg := testConfig(t)
	svc, err := service.NewService(cfg)
	require.NoError(t, err)
	defer svc.Close()

	require.NoError(t, svc.Store().PutBinary(binaryRow("base", "app", "1.0", "")))

	result, err := svc.ResetStore()
	require.NoError(t, err)
	require.True(t, result.StoreRemoved)

	bins, err := svc.Store().BinariesIn("base")
	require.NoError(t, err)
	require.Empty(t, bins)
}
