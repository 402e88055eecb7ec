package server

import (
	"dashkeeper/internal/dashboard"

	"github.com/gofiber/fiber/v2"
)

// CreateDashlet handles POST /api/dashlets
// @Summary Add a dashlet, creating its home and pane when missing
// @Tags dashlets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} DashletResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /dashlets [post]
func (s *Server) CreateDashlet(c *fiber.Ctx) error {
	var req struct {
		Home        string `json:"home"`
		Pane        string `json:"pane"`
		PaneTitle   string `json:"pane_title"`
		Name        string `json:"name"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	dashlet, err := d.CreateDashlet(c.UserContext(), dashboard.CreateDashletInput{
		Home:        req.Home,
		Pane:        req.Pane,
		PaneTitle:   req.PaneTitle,
		Dashlet:     req.Name,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dashletResponse(dashlet))
}

// UpdateDashlet handles PUT /api/homes/:home/panes/:pane/dashlets/:dashlet
// @Summary Edit a dashlet and optionally move it to another pane or home
// @Tags dashlets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param home path string true "Home name"
// @Param pane path string true "Pane name"
// @Param dashlet path string true "Dashlet name"
// @Success 200 {object} DashletResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /homes/{home}/panes/{pane}/dashlets/{dashlet} [put]
func (s *Server) UpdateDashlet(c *fiber.Ctx) error {
	var req struct {
		Home          string `json:"home"`
		Pane          string `json:"pane"`
		PaneTitle     string `json:"pane_title"`
		Title         string `json:"title"`
		URL           string `json:"url"`
		Description   string `json:"description"`
		CreateNewHome bool   `json:"create_new_home"`
		CreateNewPane bool   `json:"create_new_pane"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	dashlet, err := d.MoveDashlet(c.UserContext(), dashboard.MoveDashletInput{
		Home:          c.Params("home"),
		Pane:          c.Params("pane"),
		Dashlet:       c.Params("dashlet"),
		NewHome:       req.Home,
		NewPane:       req.Pane,
		PaneTitle:     req.PaneTitle,
		Title:         req.Title,
		URL:           req.URL,
		Description:   req.Description,
		CreateNewHome: req.CreateNewHome,
		CreateNewPane: req.CreateNewPane,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(dashletResponse(dashlet))
}

// DeleteDashlet handles DELETE /api/homes/:home/panes/:pane/dashlets/:dashlet
// @Summary Remove a dashlet
// @Tags dashlets
// @Security BearerAuth
// @Param home path string true "Home name"
// @Param pane path string true "Pane name"
// @Param dashlet path string true "Dashlet name"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /homes/{home}/panes/{pane}/dashlets/{dashlet} [delete]
func (s *Server) DeleteDashlet(c *fiber.Ctx) error {
	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	err = d.RemoveDashlet(c.UserContext(), c.Params("home"), c.Params("pane"), c.Params("dashlet"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
