// Package bootstrap wires the process-wide dependencies every binary needs.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dashkeeper/internal/cache"
	"dashkeeper/internal/config"
	"dashkeeper/internal/dashboard"
	"dashkeeper/internal/database"
	"dashkeeper/internal/featureflags"
	"dashkeeper/internal/modules"
	"dashkeeper/internal/observability"
	"dashkeeper/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// DeployModules runs the module dashlet aggregation once the schema is in place.
	DeployModules bool
}

// Runtime holds the initialized dependencies. Redis is nil when unreachable.
type Runtime struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Registry modules.Static
}

// InitRuntime connects to the database and Redis, applies the schema and loads the modules.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, fmt.Errorf("schema apply failed: %w", err)
	}

	registry, err := modules.LoadDir(cfg.ModulesDir)
	if err != nil {
		return nil, fmt.Errorf("loading modules: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rt := &Runtime{DB: db, Redis: cache.GetClient(), Registry: registry}

	if err := ensureDevAdmin(ctx, cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.DeployModules {
		if err := deployModules(ctx, cfg, db, registry); err != nil {
			return nil, err
		}
	}

	return rt, nil
}

func deployModules(ctx context.Context, cfg *config.Config, db *gorm.DB, registry modules.Registry) error {
	flags := featureflags.NewManager(cfg.FeatureFlags)
	opts := dashboard.DeployOptions{Prune: flags.EnabledGlobally(featureflags.PruneModuleDashlets)}
	if _, err := dashboard.NewDeployer(repository.NewStore(db), observability.Logger).Deploy(ctx, registry, opts); err != nil {
		return fmt.Errorf("deploy module dashlets: %w", err)
	}
	return nil
}

// ensureDevAdmin grants DEV_ADMIN_USER the admin role in development.
func ensureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	username := strings.TrimSpace(cfg.DevAdminUser)
	if !strings.EqualFold(cfg.Env, "development") || username == "" {
		return nil
	}
	if cfg.AdminRole == "" {
		return fmt.Errorf("ADMIN_ROLE must be set when DEV_ADMIN_USER is")
	}

	if err := repository.NewRoleRepository(db).Assign(ctx, username, cfg.AdminRole); err != nil {
		return err
	}
	observability.Logger.InfoContext(ctx, "development admin ensured",
		slog.String("username", username), slog.String("role", cfg.AdminRole))
	return nil
}
