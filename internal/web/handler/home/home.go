// Package home serves the landing page with the featured promo and the latest posts.
package home

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/post"
	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	"github.com/cineverse-captions/cineverse/internal/web/navigation"
)

const (
	// Path is the home page.
	Path = handler.RootPath

	// TemplateName is the name of the home template.
	TemplateName = "home"

	latestLimit = 20
)

// Service is the home handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the home handler.
var Handler = Service{}

// Init initializes the home handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)
}

// Get renders the home page. ?kind= narrows the list to one kind of post.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext(s.cfg.Title, navigation.SectionHome, "home").
		AddBreadcrumb("Home", Path, true)

	claims, signedIn := auth.FromContext(c)
	if signedIn {
		nav.WithMenu(claims.Role)
	}

	kind := models.PostKind(c.Query("kind"))
	if !kind.Valid() {
		kind = ""
	}

	promo, err := setting.LoadFeaturedPromo(s.db)
	if err != nil {
		return err
	}

	posts, err := post.Latest(s.db, kind, latestLimit)
	if err != nil {
		return err
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation":  nav,
		"Promo":       promo,
		"Posts":       posts,
		"Kind":        string(kind),
		"CurrentUser": claims,
	}, handler.BaseLayout)
}
