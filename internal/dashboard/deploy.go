package dashboard

import (
	"context"
	"log/slog"

	"dashkeeper/internal/identity"
	"dashkeeper/internal/models"
	"dashkeeper/internal/modules"
	"dashkeeper/internal/observability"
	"dashkeeper/internal/repository"
)

// DeployOptions tunes a deploy pass.
type DeployOptions struct {
	// Prune deletes catalog rows that no loaded module declares anymore.
	Prune bool
}

// DeployResult counts the catalog writes of one pass.
type DeployResult struct {
	Inserted int   `json:"inserted"`
	Updated  int   `json:"updated"`
	Pruned   int64 `json:"pruned"`
}

// Deployer writes the dashlets declared by modules into module_dashlet.
type Deployer struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewDeployer(store *repository.Store, logger *slog.Logger) *Deployer {
	if logger == nil {
		logger = observability.Logger
	}
	return &Deployer{store: store, logger: logger}
}

// Deploy upserts every declared dashlet under its content id. Existing rows
// only get their display fields refreshed, so running it again without
// changed declarations rewrites the same rows.
func (d *Deployer) Deploy(ctx context.Context, registry modules.Registry, opts DeployOptions) (DeployResult, error) {
	var result DeployResult
	var seen [][]byte

	err := d.store.Transaction(ctx, "deploy_module_dashlets", func(tx *repository.Store) error {
		for _, m := range registry.LoadedModules() {
			for _, pane := range m.Dashboards {
				paneName := pane.Name
				for _, decl := range pane.Dashlets {
					row := catalogRow(m.Name, &paneName, decl)
					if err := d.upsert(ctx, tx, row, &result); err != nil {
						return err
					}
					seen = append(seen, row.ID)
				}
			}
			for _, decl := range m.Dashlets {
				row := catalogRow(m.Name, nil, decl)
				if err := d.upsert(ctx, tx, row, &result); err != nil {
					return err
				}
				seen = append(seen, row.ID)
			}
		}

		if opts.Prune {
			n, err := tx.ModuleDashlets.PruneExcept(ctx, seen)
			if err != nil {
				return err
			}
			result.Pruned = n
		}
		return nil
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "module dashlet deployment failed", slog.String("error", err.Error()))
		return DeployResult{}, err
	}

	observability.ModuleDashletsDeployed.WithLabelValues("insert").Add(float64(result.Inserted))
	observability.ModuleDashletsDeployed.WithLabelValues("update").Add(float64(result.Updated))
	observability.ModuleDashletsDeployed.WithLabelValues("prune").Add(float64(result.Pruned))
	d.logger.InfoContext(ctx, "module dashlets deployed",
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated),
		slog.Int64("pruned", result.Pruned),
	)
	return result, nil
}

func (d *Deployer) upsert(ctx context.Context, tx *repository.Store, row *models.ModuleDashlet, result *DeployResult) error {
	exists, err := tx.ModuleDashlets.Exists(ctx, row.ID)
	if err != nil {
		return err
	}
	if !exists {
		if err := tx.ModuleDashlets.Create(ctx, row); err != nil {
			return err
		}
		result.Inserted++
		return nil
	}
	if err := tx.ModuleDashlets.UpdateDisplay(ctx, row); err != nil {
		return err
	}
	result.Updated++
	return nil
}

func catalogRow(module string, pane *string, decl modules.Dashlet) *models.ModuleDashlet {
	paneName := ""
	if pane != nil {
		paneName = *pane
	}
	return &models.ModuleDashlet{
		ID:          identity.ModuleDashletID(module, paneName, decl.Name),
		Name:        decl.Name,
		Label:       decl.Title(),
		Pane:        pane,
		Module:      module,
		URL:         decl.URL,
		Description: decl.Description,
		Priority:    decl.Priority,
	}
}
