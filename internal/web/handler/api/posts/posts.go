// Package posts serves post search and post CRUD over JSON.
package posts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/post"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
)

const (
	// Path is the base path of the posts API.
	Path = handler.APIPath + "/posts"
	// SearchPath is the search endpoint.
	SearchPath = Path + "/search"
)

// Service is the posts API handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the posts API handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	app.Get(SearchPath, s.Search)
	app.Get(Path, s.List)
	app.Post(Path, auth.RequirePermission(auth.PermPostCreate), s.Create)
	app.Get(Path+"/:slug", s.Get)
	app.Delete(Path+"/:id<int>", auth.Authenticated(), s.Delete)
}

// Search returns {"posts": [...]}; queries shorter than two characters yield an empty list.
func (s *Service) Search(c *fiber.Ctx) error {
	posts, err := post.Search(s.db, c.Query("q"), c.QueryInt("limit", post.DefaultLimit))
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// List returns the latest published posts, optionally filtered by ?kind=.
func (s *Service) List(c *fiber.Ctx) error {
	kind := models.PostKind(c.Query("kind"))
	if kind != "" && !kind.Valid() {
		return handler.JSONError(c, post.ErrInvalidPost)
	}

	posts, err := post.Latest(s.db, kind, c.QueryInt("limit", post.DefaultLimit))
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// Create publishes a post for the signed-in user.
func (s *Service) Create(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	var in post.Input
	if err := c.BodyParser(&in); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	p, err := post.Create(s.db, claims.UserID(), in)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(p)
}

// Get returns a published post by slug.
func (s *Service) Get(c *fiber.Ctx) error {
	p, err := post.GetBySlug(s.db, c.Params("slug"))
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(p)
}

// Delete removes a post; authors may delete their own, moderators any.
func (s *Service) Delete(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return handler.JSONError(c, post.ErrPostNotFound)
	}

	if err = post.Delete(s.db, uint64(id), claims.UserID(), claims.Can(auth.PermPostManage)); err != nil {
		return handler.JSONError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
