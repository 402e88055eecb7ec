package server

import (
	"log/slog"

	"dashkeeper/internal/dashboard"
	"dashkeeper/internal/featureflags"
	"dashkeeper/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns the evaluated flags for the current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(s.featureFlags.Snapshot(middleware.Username(c)))
}

// GetAdminFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetAdminFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(middleware.Username(c)),
	})
}

// DeployModuleDashlets handles POST /api/admin/module-dashlets/deploy?prune=
// @Summary Aggregate module dashlets into the catalog
// @Description Prunes catalog rows no module declares when prune=true or the prune_module_dashlets flag is on
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param prune query bool false "Delete undeclared catalog rows"
// @Success 200 {object} dashboard.DeployResult
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/module-dashlets/deploy [post]
func (s *Server) DeployModuleDashlets(c *fiber.Ctx) error {
	ctx := c.UserContext()
	prune := c.QueryBool("prune", false) || s.featureFlags.EnabledGlobally(featureflags.PruneModuleDashlets)

	result, err := dashboard.NewDeployer(s.store, s.logger).Deploy(ctx, s.registry, dashboard.DeployOptions{Prune: prune})
	if err != nil {
		return s.respondError(c, err)
	}

	s.logger.InfoContext(ctx, "module dashlets deployed by admin",
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated),
		slog.Int64("pruned", result.Pruned))
	return c.JSON(result)
}
