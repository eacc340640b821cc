// Package groups serves community groups, memberships and group micro-posts.
package groups

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/group"
	"github.com/cineverse-captions/cineverse/internal/db/controller/post"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
)

// Path is the base path of the groups API.
const Path = handler.APIPath + "/groups"

// MicroPostRequest is the body of a group micro-post.
type MicroPostRequest struct {
	Title string `json:"title" form:"title"`
	Body  string `json:"body"  form:"body"`
}

// Service is the groups API handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the groups API handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	byID := Path + "/:id<int>"

	app.Get(Path, s.List)
	app.Post(Path, auth.RequirePermission(auth.PermGroupManage), s.Create)
	app.Get(byID+"/members", s.Members)
	app.Post(byID+"/join", auth.Authenticated(), s.Join)
	app.Post(byID+"/leave", auth.Authenticated(), s.Leave)
	app.Get(byID+"/posts", s.Posts)
	app.Post(byID+"/posts", auth.RequirePermission(auth.PermPostCreate), s.CreatePost)
}

func groupID(c *fiber.Ctx) (uint64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, group.ErrGroupNotFound
	}

	return uint64(id), nil
}

// List returns all groups.
func (s *Service) List(c *fiber.Ctx) error {
	groups, err := group.List(s.db)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"groups": groups})
}

// Create stores a group owned by the caller.
func (s *Service) Create(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	var in group.Input
	if err := c.BodyParser(&in); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	g, err := group.Create(s.db, claims.UserID(), in)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(g)
}

// Members lists the members of a group.
func (s *Service) Members(c *fiber.Ctx) error {
	id, err := groupID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	members, err := group.Members(s.db, id)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"members": members})
}

// Join adds the caller to a group.
func (s *Service) Join(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	id, err := groupID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	if err = group.Join(s.db, id, claims.UserID()); err != nil {
		return handler.JSONError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Leave removes the caller from a group.
func (s *Service) Leave(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	id, err := groupID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	if err = group.Leave(s.db, id, claims.UserID()); err != nil {
		return handler.JSONError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Posts lists the micro-posts of a group.
func (s *Service) Posts(c *fiber.Ctx) error {
	id, err := groupID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	if _, err = group.Get(s.db, id); err != nil {
		return handler.JSONError(c, err)
	}

	posts, err := post.ListByGroup(s.db, id, c.QueryInt("limit", post.DefaultLimit))
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// CreatePost publishes a micro-post into a group. The group must be on the micro-post allowlist and
// the caller must be a member.
func (s *Service) CreatePost(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	id, err := groupID(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	var req MicroPostRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	if _, err = group.Get(s.db, id); err != nil {
		return handler.JSONError(c, err)
	}

	p, err := post.Create(s.db, claims.UserID(), post.Input{
		Kind:    models.PostKindMicro,
		Title:   req.Title,
		Body:    req.Body,
		GroupID: &id,
	})
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(p)
}
