// Package user provides the admin page for managing user roles and account state.
package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	"github.com/cineverse-captions/cineverse/internal/web/navigation"
)

const (
	// Path is the base path for user management.
	Path = handler.AdminPath + "/users"

	// TemplateList is the template for listing users.
	TemplateList = "admin/users"
)

// Roles are offered in the role select, most privileged first.
var Roles = []models.Role{models.RoleSuperAdmin, models.RoleUserAdmin, models.RoleUser}

// Service manages users.
type Service struct {
	handler.Service
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.authService = authService

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireRole(models.RoleSuperAdmin))
		router.Get("/", s.List)
		router.Post("/:id<int>/role", s.UpdateRole)
		router.Post("/:id<int>/active", s.UpdateActive)
	})
}

// List shows users with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "", "")
}

func (s *Service) render(c *fiber.Ctx, status int, errMsg, success string) error {
	claims, _ := auth.FromContext(c)

	nav := navigation.Admin("Users", "users", claims.Role).
		AddBreadcrumb("Users", Path, true)

	page, pageSize := handler.PageParams(c)
	search := c.Query("search")

	users, total, err := s.authService.ListUsers(search, pageSize, (page-1)*pageSize)
	if err != nil {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	return c.Status(status).Render(TemplateList, fiber.Map{
		"Navigation":    nav,
		"CurrentUser":   claims,
		"CurrentUserID": claims.UserID(),
		"Users":         users,
		"Roles":         Roles,
		"Search":        search,
		"Pagination":    handler.Paginate(page, pageSize, total),
		"Error":         errMsg,
		"Success":       success,
	}, handler.BaseLayout)
}

func targetID(c *fiber.Ctx) uint64 {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return 0
	}

	return uint64(id)
}

// UpdateRole changes the role of a user. Super admins cannot demote themselves.
func (s *Service) UpdateRole(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	u, err := s.authService.SetRole(claims.UserID(), targetID(c), c.FormValue("role"))
	if err != nil {
		return s.render(c, handler.StatusFor(err), handler.MessageFor(err), "")
	}

	return s.render(c, fiber.StatusOK, "", "Role of "+u.Email+" set to "+string(u.Role))
}

// UpdateActive enables or disables a user account.
func (s *Service) UpdateActive(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	active, err := strconv.ParseBool(c.FormValue("active"))
	if err != nil {
		return s.render(c, fiber.StatusBadRequest, "active must be true or false", "")
	}

	u, err := s.authService.SetActive(claims.UserID(), targetID(c), active)
	if err != nil {
		return s.render(c, handler.StatusFor(err), handler.MessageFor(err), "")
	}

	state := "disabled"
	if u.Active {
		state = "enabled"
	}

	return s.render(c, fiber.StatusOK, "", u.Email+" "+state)
}
