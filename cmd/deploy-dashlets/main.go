// Command deploy-dashlets aggregates the dashlets declared by the installed
// modules into the "Available Dashlets" catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"time"

	"dashkeeper/internal/config"
	"dashkeeper/internal/dashboard"
	"dashkeeper/internal/database"
	"dashkeeper/internal/featureflags"
	"dashkeeper/internal/modules"
	"dashkeeper/internal/observability"
	"dashkeeper/internal/repository"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	modulesDir := flag.String("modules", "", "Directory of module manifests (defaults to MODULES_DIR)")
	prune := flag.Bool("prune", false, "Delete catalog rows no module declares anymore")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	observability.Logger = observability.NewLogger(cfg.Env, slog.LevelInfo)

	dir := cfg.ModulesDir
	if *modulesDir != "" {
		dir = *modulesDir
	}
	registry, err := modules.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	flags := featureflags.NewManager(cfg.FeatureFlags)
	opts := dashboard.DeployOptions{
		Prune: *prune || flags.EnabledGlobally(featureflags.PruneModuleDashlets),
	}

	result, err := dashboard.NewDeployer(repository.NewStore(db), observability.Logger).Deploy(ctx, registry, opts)
	if err != nil {
		return fmt.Errorf("deploy module dashlets: %w", err)
	}

	log.Printf("deployed %d modules: inserted=%d updated=%d pruned=%d",
		len(registry.LoadedModules()), result.Inserted, result.Updated, result.Pruned)
	return nil
}
