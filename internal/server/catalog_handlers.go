package server

import (
	"dashkeeper/internal/dashboard"
	"dashkeeper/internal/identity"
	"dashkeeper/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetModuleDashlets handles GET /api/catalog/dashlets
// @Summary Browse the dashlets contributed by modules
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of the dashlet name or label"
// @Param module query string false "Module name"
// @Param sort query string false "name, pane, module or priority"
// @Param limit query int false "Page size" default(25)
// @Param offset query int false "Offset"
// @Success 200 {array} DashletResponse
// @Router /catalog/dashlets [get]
func (s *Server) GetModuleDashlets(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 25)

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}
	home, err := d.OpenHome(ctx, dashboard.AvailableDashlets)
	if err != nil {
		return s.respondError(c, err)
	}

	seq, err := home.GetModuleDashlets(ctx, repository.ModuleDashletQuery{
		Search: c.Query("search"),
		Module: c.Query("module"),
		Sort:   c.Query("sort"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	out := make([]DashletResponse, 0, page.Limit)
	for _, dashlet := range seq {
		out = append(out, dashletResponse(dashlet))
	}
	return c.JSON(out)
}

// GetSubscribableDashboards handles GET /api/catalog/dashboards
// @Summary Browse the dashboards shared by users holding a common role
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of the pane name or title"
// @Param sort query string false "name or owner"
// @Param limit query int false "Page size" default(25)
// @Param offset query int false "Offset"
// @Success 200 {array} PaneResponse
// @Router /catalog/dashboards [get]
func (s *Server) GetSubscribableDashboards(c *fiber.Ctx) error {
	if !s.subscriptionsEnabled(c) {
		return nil
	}

	ctx := c.UserContext()
	page := parsePagination(c, 25)

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}
	home, err := d.OpenHome(ctx, dashboard.SubscribableDashboards)
	if err != nil {
		return s.respondError(c, err)
	}

	seq, err := home.GetSubscribableDashboards(ctx, repository.SubscribableQuery{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	out := make([]PaneResponse, 0, page.Limit)
	for pane, err := range seq {
		if err != nil {
			return s.respondError(c, err)
		}
		out = append(out, paneResponse(pane, false))
	}
	return c.JSON(out)
}

// Subscribe handles POST /api/subscriptions/:id
// @Summary Subscribe to a shared dashboard
// @Tags subscriptions
// @Security BearerAuth
// @Param id path string true "Hex id of the shared pane"
// @Success 201
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /subscriptions/{id} [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	if !s.subscriptionsEnabled(c) {
		return nil
	}

	paneID, err := identity.ParseHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid dashboard ID")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := d.Subscribe(c.UserContext(), paneID); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// SetSubscriptionDisabled handles PUT /api/subscriptions/:id
// @Summary Hide or show a subscribed dashboard
// @Tags subscriptions
// @Accept json
// @Security BearerAuth
// @Param id path string true "Hex id of the shared pane"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /subscriptions/{id} [put]
func (s *Server) SetSubscriptionDisabled(c *fiber.Ctx) error {
	if !s.subscriptionsEnabled(c) {
		return nil
	}

	paneID, err := identity.ParseHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid dashboard ID")
	}
	var req struct {
		Disabled bool `json:"disabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := d.SetOverrideDisabled(c.UserContext(), paneID, req.Disabled); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
