// Package subscriptions provides the admin page for subscription plans and access keys.
package subscriptions

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/subscription"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	"github.com/cineverse-captions/cineverse/internal/web/navigation"
)

const (
	// Path is the subscriptions page.
	Path = handler.AdminPath + "/subscriptions"

	// TemplateName is the subscriptions template.
	TemplateName = "admin/subscriptions"

	keyLimit = 50
)

// KeysForm requests Count new keys for a plan.
type KeysForm struct {
	PlanID uint64 `form:"planId"`
	Count  int    `form:"count"`
}

// Service is the subscriptions page handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the subscriptions page handler.
var Handler = Service{}

// Init registers the routes for super admins.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireRole(models.RoleSuperAdmin))
		router.Get("/", s.List)
		router.Post("/plans", s.CreatePlan)
		router.Post("/keys", s.GenerateKeys)
	})
}

func (s *Service) render(c *fiber.Ctx, status int, extra fiber.Map) error {
	claims, _ := auth.FromContext(c)

	nav := navigation.Admin("Subscriptions", "subscriptions", claims.Role).
		AddBreadcrumb("Subscriptions", Path, true)

	plans, err := subscription.Plans(s.db, false)
	if err != nil {
		return err
	}

	keys, err := subscription.Keys(s.db, keyLimit)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Navigation":  nav,
		"CurrentUser": claims,
		"Plans":       plans,
		"Keys":        keys,
	}

	for k, v := range extra {
		data[k] = v
	}

	return c.Status(status).Render(TemplateName, data, handler.BaseLayout)
}

func (s *Service) fail(c *fiber.Ctx, err error) error {
	status := handler.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		return err
	}

	log.Warn().Err(err).Str("path", c.Path()).Msg("subscription form rejected")

	return s.render(c, status, fiber.Map{"Error": err.Error()})
}

// List renders plans and the newest keys.
func (s *Service) List(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, nil)
}

// CreatePlan adds a plan.
func (s *Service) CreatePlan(c *fiber.Ctx) error {
	var in subscription.PlanInput
	if err := c.BodyParser(&in); err != nil {
		return s.fail(c, handler.ErrInvalidBody)
	}

	p, err := subscription.CreatePlan(s.db, in)
	if err != nil {
		return s.fail(c, err)
	}

	log.Info().Uint64("plan_id", p.ID).Str("name", p.Name).Msg("subscription plan created")

	return s.render(c, fiber.StatusCreated, fiber.Map{"Success": "Plan " + p.Name + " created"})
}

// GenerateKeys creates access keys for a plan and shows them once.
func (s *Service) GenerateKeys(c *fiber.Ctx) error {
	var form KeysForm
	if err := c.BodyParser(&form); err != nil {
		return s.fail(c, handler.ErrInvalidBody)
	}

	keys, err := subscription.GenerateAccessKeys(s.db, form.PlanID, form.Count)
	if err != nil {
		return s.fail(c, err)
	}

	log.Info().Uint64("plan_id", form.PlanID).Int("count", len(keys)).Msg("access keys generated")

	return s.render(c, fiber.StatusCreated, fiber.Map{"Generated": keys})
}
