package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dashkeeper/internal/config"
	"dashkeeper/internal/models"
	"dashkeeper/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const manifest = `name: monitoring
dashboards:
  - name: Overview
    dashlets:
      - name: Service Problems
        url: monitoring/list/services
      - name: Host Problems
        url: monitoring/list/hosts
dashlets:
  - name: Tactical Overview
    url: monitoring/tactical
`

func runtimeConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	modulesDir := filepath.Join(dir, "modules")
	require.NoError(t, os.Mkdir(modulesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modulesDir, "monitoring.yml"), []byte(manifest), 0o600))

	return &config.Config{
		Env:          "development",
		DBDriver:     "sqlite",
		DBSQLitePath: filepath.Join(dir, "dashkeeper.db"),
		ModulesDir:   modulesDir,
		AdminRole:    "admins",
		DevAdminUser: "root",
	}
}

func closeRuntime(t *testing.T, rt *Runtime) {
	t.Helper()
	t.Cleanup(func() {
		if sqlDB, err := rt.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if rt.Redis != nil {
			_ = rt.Redis.Close()
		}
	})
}

func TestInitRuntime(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := runtimeConfig(t)
	cfg.RedisURL = mr.Addr()
	ctx := context.Background()

	rt, err := InitRuntime(ctx, cfg, Options{DeployModules: true})
	require.NoError(t, err)
	closeRuntime(t, rt)

	assert.NotNil(t, rt.Redis)
	assert.Len(t, rt.Registry, 1)

	var count int64
	require.NoError(t, rt.DB.Model(&models.ModuleDashlet{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	roles, err := repository.NewRoleRepository(rt.DB).RolesOf(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"admins"}, roles)
}

func TestInitRuntime_WithoutRedisOrDeploy(t *testing.T) {
	cfg := runtimeConfig(t)
	cfg.RedisURL = "127.0.0.1:1"

	rt, err := InitRuntime(context.Background(), cfg, Options{})
	require.NoError(t, err)
	closeRuntime(t, rt)

	assert.Nil(t, rt.Redis)
	var count int64
	require.NoError(t, rt.DB.Model(&models.ModuleDashlet{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInitRuntime_BadManifest(t *testing.T) {
	cfg := runtimeConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ModulesDir, "broken.yml"), []byte("dashlets: [\n"), 0o600))

	_, err := InitRuntime(context.Background(), cfg, Options{})
	assert.ErrorContains(t, err, "loading modules")
}

func TestEnsureDevAdmin(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		user      string
		role      string
		wantRoles []string
		wantErr   bool
	}{
		{name: "development grants role", env: "development", user: "root", role: "admins", wantRoles: []string{"admins"}},
		{name: "production is a no-op", env: "production", user: "root", role: "admins", wantRoles: nil},
		{name: "no user configured", env: "development", user: "  ", role: "admins", wantRoles: nil},
		{name: "missing admin role", env: "development", user: "root", role: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
			require.NoError(t, err)
			require.NoError(t, db.AutoMigrate(&models.UserRole{}))

			ctx := context.Background()
			cfg := &config.Config{Env: tt.env, DevAdminUser: tt.user, AdminRole: tt.role}
			err = ensureDevAdmin(ctx, cfg, db)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			// running twice must not fail on the existing row
			require.NoError(t, ensureDevAdmin(ctx, cfg, db))

			roles, err := repository.NewRoleRepository(db).RolesOf(ctx, "root")
			require.NoError(t, err)
			if tt.wantRoles == nil {
				assert.Empty(t, roles)
			} else {
				assert.Equal(t, tt.wantRoles, roles)
			}
		})
	}
}
