// Package group provides the admin page for community groups: listing, creation, deletion and
// the micro-post allowlist.
package group

import (
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/group"
	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	"github.com/cineverse-captions/cineverse/internal/web/navigation"
)

const (
	// Path is the base path for group management.
	Path = handler.AdminPath + "/groups"

	// TemplateList is the template for listing groups.
	TemplateList = "admin/groups"

	// NavEntityGroup is the navigation entity key used for groups in the admin area.
	NavEntityGroup = "groups"

	// TitleGroups is the page title for the groups list.
	TitleGroups = "Groups"

	// QuerySearch is the query parameter name for the search term.
	QuerySearch = "search"

	// ErrFailedLoadGroups indicates an unexpected error occurred while loading groups.
	ErrFailedLoadGroups = "Failed to load groups"

	// RouteMicroPosts toggles whether a group accepts micro-posts.
	RouteMicroPosts = "/:id<int>/microposts"
	// RouteDelete is the route for deleting a group.
	RouteDelete = "/:id<int>/delete"
)

// Row is a group as listed on the page.
type Row struct {
	models.Group
	Members    int64
	MicroPosts bool
}

// Service provides the group admin page.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Only super admins manage groups here.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireRole(models.RoleSuperAdmin))
		router.Get("/", s.List)
		router.Post("/", s.Create)
		router.Post(RouteMicroPosts, s.SetMicroPosts)
		router.Post(RouteDelete, s.Delete)
	})
}

// List shows groups with pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, nil)
}

func (s *Service) render(c *fiber.Ctx, status int, msg fiber.Map) error {
	claims, _ := auth.FromContext(c)

	nav := navigation.Admin(TitleGroups, NavEntityGroup, claims.Role).
		AddBreadcrumb(TitleGroups, Path, true)

	page, pageSize := handler.PageParams(c)
	search := c.Query(QuerySearch)

	data := fiber.Map{
		"Navigation":  nav,
		"CurrentUser": claims,
		"Search":      search,
	}

	for k, v := range msg {
		data[k] = v
	}

	rows, pagination, err := s.rows(search, page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("query groups failed")

		data["Error"] = ErrFailedLoadGroups

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, data, handler.BaseLayout)
	}

	data["Groups"] = rows
	data["Pagination"] = pagination

	return c.Status(status).Render(TemplateList, data, handler.BaseLayout)
}

func (s *Service) rows(search string, page, pageSize int) ([]Row, handler.Pagination, error) {
	total, err := group.Count(s.db, search)
	if err != nil {
		return nil, handler.Pagination{}, err
	}

	pagination := handler.Paginate(page, pageSize, total)

	groups, err := group.Search(s.db, search, pagination.Offset(), pageSize)
	if err != nil {
		return nil, pagination, err
	}

	ids := make([]uint64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}

	counts, err := group.MemberCounts(s.db, ids)
	if err != nil {
		return nil, pagination, err
	}

	allowed, err := setting.LoadMicroPostAllowedGroups(s.db)
	if err != nil {
		return nil, pagination, err
	}

	rows := make([]Row, len(groups))
	for i, g := range groups {
		rows[i] = Row{Group: g, Members: counts[g.ID], MicroPosts: slices.Contains(allowed, g.ID)}
	}

	return rows, pagination, nil
}

// Create handles form submission for creating a group owned by the signed-in admin.
func (s *Service) Create(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	var in group.Input
	if err := c.BodyParser(&in); err != nil {
		return s.fail(c, handler.ErrInvalidBody)
	}

	g, err := group.Create(s.db, claims.UserID(), in)
	if err != nil {
		return s.fail(c, err)
	}

	log.Info().Uint64("group_id", g.ID).Uint64("admin_id", claims.UserID()).Msg("group created")

	return s.render(c, fiber.StatusCreated, fiber.Map{"Success": "Group " + g.Name + " created"})
}

// SetMicroPosts adds the group to, or removes it from, the micro-post allowlist.
func (s *Service) SetMicroPosts(c *fiber.Ctx) error {
	id, err := groupID(c)
	if err != nil {
		return s.fail(c, err)
	}

	if _, err = group.Get(s.db, id); err != nil {
		return s.fail(c, err)
	}

	allow, err := strconv.ParseBool(c.FormValue("allow"))
	if err != nil {
		return s.fail(c, handler.ErrInvalidBody)
	}

	if err = setAllowed(s.db, id, allow); err != nil {
		return err
	}

	return s.render(c, fiber.StatusOK, fiber.Map{"Success": "Micro-post setting saved"})
}

// Delete removes a group and drops it from the micro-post allowlist.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := groupID(c)
	if err != nil {
		return s.fail(c, err)
	}

	if err = group.Delete(s.db, id); err != nil {
		return s.fail(c, err)
	}

	if err = setAllowed(s.db, id, false); err != nil {
		return err
	}

	claims, _ := auth.FromContext(c)
	log.Info().Uint64("group_id", id).Uint64("admin_id", claims.UserID()).Msg("group deleted")

	return s.render(c, fiber.StatusOK, fiber.Map{"Success": "Group deleted"})
}

func (s *Service) fail(c *fiber.Ctx, err error) error {
	status := handler.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		return err
	}

	return s.render(c, status, fiber.Map{"Error": handler.MessageFor(err)})
}

func setAllowed(db *gorm.DB, id uint64, allow bool) error {
	allowed, err := setting.LoadMicroPostAllowedGroups(db)
	if err != nil {
		return err
	}

	has := slices.Contains(allowed, id)

	switch {
	case allow && !has:
		allowed = append(allowed, id)
	case !allow && has:
		allowed = slices.DeleteFunc(allowed, func(v uint64) bool { return v == id })
	default:
		return nil
	}

	return setting.SaveMicroPostAllowedGroups(db, allowed)
}

func groupID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrNotFound
	}

	return id, nil
}
