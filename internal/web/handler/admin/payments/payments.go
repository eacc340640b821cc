// Package payments provides the admin page for ad payments: linking payments to posts and
// generating ad codes.
package payments

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	"github.com/cineverse-captions/cineverse/internal/web/navigation"
)

const (
	// Path is the payments page.
	Path = handler.AdminPath + "/payments"

	// TemplateName is the payments template.
	TemplateName = "admin/payments"

	listLimit = 100
)

// TermsForm carries the terms of a new payment.
type TermsForm struct {
	Amount       int64  `form:"amount"`
	Currency     string `form:"currency"`
	DurationDays int    `form:"durationDays"`
}

func (f TermsForm) terms() payment.Terms {
	return payment.Terms{Amount: f.Amount, Currency: f.Currency, DurationDays: f.DurationDays}
}

// LinkForm links a payment to a post. An empty Code creates a payment from the terms.
type LinkForm struct {
	PostID uint64 `form:"postId"`
	Code   string `form:"code"`
	TermsForm
}

// GenerateForm creates Count unused ad codes.
type GenerateForm struct {
	Count int `form:"count"`
	TermsForm
}

// Service is the payments page handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the payments page handler.
var Handler = Service{}

// Init registers the routes for super admins and user admins.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireRole(models.RoleSuperAdmin, models.RoleUserAdmin))
		router.Get("/", s.List)
		router.Post("/link", s.Link)
		router.Post("/generate", s.Generate)
	})
}

func (s *Service) render(c *fiber.Ctx, status int, extra fiber.Map) error {
	claims, _ := auth.FromContext(c)

	nav := navigation.Admin("Payments", "payments", claims.Role).
		AddBreadcrumb("Payments", Path, true)

	var used *bool

	switch c.Query("state") {
	case "used":
		used = new(bool)
		*used = true
	case "unused":
		used = new(bool)
	}

	list, err := payment.List(s.db, used, listLimit)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Navigation":  nav,
		"CurrentUser": claims,
		"Payments":    list,
		"State":       c.Query("state"),
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

	log.Warn().Err(err).Str("path", c.Path()).Msg("payment form rejected")

	return s.render(c, status, fiber.Map{"Error": err.Error()})
}

// List renders the payments page. ?state=used|unused filters the list.
func (s *Service) List(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, nil)
}

// Link sponsors a post with an existing code or with a payment created from the given terms.
// Posts that already carry a payment are left unchanged.
func (s *Service) Link(c *fiber.Ctx) error {
	var form LinkForm
	if err := c.BodyParser(&form); err != nil {
		return s.fail(c, handler.ErrInvalidBody)
	}

	res, err := payment.LinkPaymentToPost(s.db, form.PostID, payment.LinkRequest{Code: form.Code, Terms: form.terms()})
	if err != nil {
		return s.fail(c, err)
	}

	msg := "Payment " + res.Payment.Code + " linked to " + res.Post.Slug
	if !res.Linked {
		msg = res.Post.Slug + " already has payment " + res.Payment.Code + ", nothing changed"
	}

	return s.render(c, fiber.StatusOK, fiber.Map{"Success": msg, "Result": res})
}

// Generate creates unused ad codes and shows them once.
func (s *Service) Generate(c *fiber.Ctx) error {
	var form GenerateForm
	if err := c.BodyParser(&form); err != nil {
		return s.fail(c, handler.ErrInvalidBody)
	}

	codes, err := payment.GenerateAdCodes(s.db, form.Count, form.terms())
	if err != nil {
		return s.fail(c, err)
	}

	return s.render(c, fiber.StatusCreated, fiber.Map{"Generated": codes})
}
