package server

import (
	"dashkeeper/internal/dashboard"

	"github.com/gofiber/fiber/v2"
)

// GetPanes handles GET /api/homes/:home/panes
// @Summary List the panes of a home with their dashlets
// @Tags panes
// @Produce json
// @Security BearerAuth
// @Param home path string true "Home name"
// @Param skip_disabled query bool false "Leave out disabled panes"
// @Success 200 {array} PaneResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /homes/{home}/panes [get]
func (s *Server) GetPanes(c *fiber.Ctx) error {
	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	home, err := d.OpenHome(c.UserContext(), c.Params("home"))
	if err != nil {
		return s.respondError(c, err)
	}

	panes := home.GetPanes(c.QueryBool("skip_disabled", false))
	out := make([]PaneResponse, 0, len(panes))
	for _, p := range panes {
		out = append(out, paneResponse(p, true))
	}
	return c.JSON(out)
}

// GetPaneChoices handles GET /api/homes/:home/panes/choices
func (s *Server) GetPaneChoices(c *fiber.Ctx) error {
	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	home, err := d.OpenHome(c.UserContext(), c.Params("home"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(home.GetPaneKeyTitleArray())
}

// UpdatePane handles PUT /api/homes/:home/panes/:pane
// @Summary Rename a pane and optionally move it to another home
// @Tags panes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param home path string true "Home name"
// @Param pane path string true "Pane name"
// @Success 200 {object} PaneResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /homes/{home}/panes/{pane} [put]
func (s *Server) UpdatePane(c *fiber.Ctx) error {
	var req struct {
		Title         string `json:"title"`
		Home          string `json:"home"`
		CreateNewHome bool   `json:"create_new_home"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	pane, err := d.MovePane(c.UserContext(), dashboard.MovePaneInput{
		Home:          c.Params("home"),
		Pane:          c.Params("pane"),
		Title:         req.Title,
		NewHome:       req.Home,
		CreateNewHome: req.CreateNewHome,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(paneResponse(pane, true))
}

// DeletePane handles DELETE /api/homes/:home/panes/:pane
// @Summary Remove a pane and its dashlets
// @Tags panes
// @Security BearerAuth
// @Param home path string true "Home name"
// @Param pane path string true "Pane name"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /homes/{home}/panes/{pane} [delete]
func (s *Server) DeletePane(c *fiber.Ctx) error {
	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	if err := d.RemovePane(c.UserContext(), c.Params("home"), c.Params("pane")); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReorderPane handles PUT /api/homes/:home/panes/:pane/position
// @Summary Move a pane to a zero-based position within its home
// @Tags panes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param home path string true "Home name"
// @Param pane path string true "Pane name"
// @Success 200 {array} PaneResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /homes/{home}/panes/{pane}/position [put]
func (s *Server) ReorderPane(c *fiber.Ctx) error {
	var req struct {
		Position *int `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil || req.Position == nil {
		return badRequest(c, "position is required")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	homeName := c.Params("home")
	if err := d.ReorderPane(c.UserContext(), homeName, c.Params("pane"), *req.Position); err != nil {
		return s.respondError(c, err)
	}

	home, err := d.GetHome(homeName)
	if err != nil {
		return s.respondError(c, err)
	}
	panes := home.GetPanes(false)
	out := make([]PaneResponse, 0, len(panes))
	for _, p := range panes {
		out = append(out, paneResponse(p, false))
	}
	return c.JSON(out)
}

// SharePane handles POST /api/homes/:home/panes/:pane/share
// @Summary Offer a pane to users sharing a role with its owner
// @Tags panes
// @Security BearerAuth
// @Param home path string true "Home name"
// @Param pane path string true "Pane name"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /homes/{home}/panes/{pane}/share [post]
func (s *Server) SharePane(c *fiber.Ctx) error {
	if !s.subscriptionsEnabled(c) {
		return nil
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	home, err := d.OpenHome(c.UserContext(), c.Params("home"))
	if err != nil {
		return s.respondError(c, err)
	}
	if err := home.MarkSubscribable(c.UserContext(), c.Params("pane")); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
