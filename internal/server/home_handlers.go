package server

import (
	"dashkeeper/internal/dashboard"
	"dashkeeper/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetHomes handles GET /api/homes
// @Summary List homes
// @Description Homes of the current user in display order, catalogs included
// @Tags homes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} HomeResponse
// @Router /homes [get]
func (s *Server) GetHomes(c *fiber.Ctx) error {
	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	homes := d.GetHomes()
	out := make([]HomeResponse, 0, len(homes))
	for _, h := range homes {
		out = append(out, homeResponse(h))
	}
	return c.JSON(out)
}

// GetHomeChoices handles GET /api/homes/choices?only_shared=
// @Summary Home choices
// @Description Name to label pairs for pickers; the catalogs are never offered
// @Tags homes
// @Produce json
// @Security BearerAuth
// @Param only_shared query bool false "Only shared homes"
// @Success 200 {array} dashboard.Choice
// @Router /homes/choices [get]
func (s *Server) GetHomeChoices(c *fiber.Ctx) error {
	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(d.GetHomeKeyNameArray(c.QueryBool("only_shared", false)))
}

// CreateHome handles POST /api/homes
// @Summary Create a home
// @Tags homes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} HomeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /homes [post]
func (s *Server) CreateHome(c *fiber.Ctx) error {
	var req struct {
		Name   string `json:"name"`
		Label  string `json:"label"`
		Shared bool   `json:"shared"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	home, err := d.CreateHome(c.UserContext(), dashboard.CreateHomeInput{
		Name:   req.Name,
		Label:  req.Label,
		Shared: req.Shared,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(homeResponse(home))
}

// RenameHome handles PUT /api/homes/:home
// @Summary Change a home's label
// @Tags homes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param home path string true "Home name"
// @Success 200 {object} HomeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /homes/{home} [put]
func (s *Server) RenameHome(c *fiber.Ctx) error {
	var req struct {
		Label string `json:"label"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}

	home, err := d.RenameHome(c.UserContext(), c.Params("home"), req.Label)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(homeResponse(home))
}

// DeleteHome handles DELETE /api/homes/:home
// @Summary Remove a home with all of its panes and dashlets
// @Tags homes
// @Security BearerAuth
// @Param home path string true "Home name"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /homes/{home} [delete]
func (s *Server) DeleteHome(c *fiber.Ctx) error {
	name := c.Params("home")
	if dashboard.IsReserved(name) {
		return badRequest(c, "Home "+name+" cannot be removed")
	}

	d, err := s.openDashboard(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if !d.HasHome(name) {
		return s.respondError(c, models.NewNotFoundError("Home", name))
	}

	if err := d.RemoveHome(c.UserContext(), name); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
