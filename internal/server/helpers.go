package server

import (
	"log/slog"

	"dashkeeper/internal/auth"
	"dashkeeper/internal/dashboard"
	"dashkeeper/internal/featureflags"
	"dashkeeper/internal/identity"
	"dashkeeper/internal/middleware"
	"dashkeeper/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// statusFor maps an AppError code to its HTTP status.
func statusFor(err error) int {
	switch models.CodeOf(err) {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status of its code. Server-side failures are
// logged here since the client only sees a generic message for them.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		msg := "request failed"
		if models.IsProgrammingError(err) {
			msg = "dashboard invariant violated"
		}
		s.logger.ErrorContext(c.UserContext(), msg,
			slog.String("code", models.CodeOf(err)),
			slog.String("error", err.Error()))
		if models.CodeOf(err) == "" {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

func badRequest(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(message))
}

// openDashboard builds the request-scoped dashboard of the acting user and loads it.
func (s *Server) openDashboard(c *fiber.Ctx) (*dashboard.Dashboard, error) {
	ctx := c.UserContext()

	user, err := auth.LoadUser(ctx, s.roles, middleware.Username(c))
	if err != nil {
		return nil, err
	}

	session := dashboard.NewSession(s.store, user, s.roles,
		dashboard.WithRequestedHome(c.Query("home")),
		dashboard.WithLogger(s.logger))
	d := dashboard.New(session)
	if err := d.Load(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// subscriptionsEnabled writes a 404 and reports false when the subscriptions
// flag is off for the acting user.
func (s *Server) subscriptionsEnabled(c *fiber.Ctx) bool {
	if s.featureFlags.Enabled(featureflags.Subscriptions, middleware.Username(c)) {
		return true
	}
	_ = models.RespondWithError(c, fiber.StatusNotFound,
		models.NewNotFoundError("Feature", "subscriptions"))
	return false
}

// HomeResponse is the JSON view of a home.
type HomeResponse struct {
	Name   string          `json:"name"`
	Label  string          `json:"label"`
	Type   models.HomeType `json:"type"`
	Active bool            `json:"active"`
}

// PaneResponse is the JSON view of a pane.
type PaneResponse struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Title      string            `json:"title"`
	Priority   int               `json:"priority"`
	Disabled   bool              `json:"disabled"`
	Overriding bool              `json:"overriding"`
	Owner      string            `json:"owner,omitempty"`
	Acceptance int               `json:"acceptance,omitempty"`
	Dashlets   []DashletResponse `json:"dashlets,omitempty"`
}

// DashletResponse is the JSON view of a dashlet.
type DashletResponse struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority"`
	Module      string `json:"module,omitempty"`
	Pane        string `json:"pane,omitempty"`
}

func homeResponse(h *dashboard.Home) HomeResponse {
	return HomeResponse{
		Name:   h.Name(),
		Label:  h.Label(),
		Type:   h.Type(),
		Active: h.IsActive(),
	}
}

func paneResponse(p *dashboard.Pane, withDashlets bool) PaneResponse {
	resp := PaneResponse{
		ID:         hexID(p.ID()),
		Name:       p.Name(),
		Title:      p.Title(),
		Priority:   p.Priority(),
		Disabled:   p.IsDisabled(),
		Overriding: p.IsOverriding(),
		Owner:      p.Owner(),
		Acceptance: p.Acceptance(),
	}
	if withDashlets {
		for _, d := range p.GetDashlets() {
			resp.Dashlets = append(resp.Dashlets, dashletResponse(d))
		}
	}
	return resp
}

func dashletResponse(d *dashboard.Dashlet) DashletResponse {
	resp := DashletResponse{
		ID:          hexID(d.ID()),
		Name:        d.Name(),
		Title:       d.Title(),
		URL:         d.URL(),
		Description: d.Description(),
		Priority:    d.Priority(),
		Module:      d.Module(),
	}
	if p := d.Pane(); p != nil {
		resp.Pane = p.Name()
	}
	return resp
}

func hexID(id []byte) string {
	if len(id) == 0 {
		return ""
	}
	return identity.Hex(id)
}
