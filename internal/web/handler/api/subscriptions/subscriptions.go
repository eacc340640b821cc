// Package subscriptions serves plans and access key redemption.
package subscriptions

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/subscription"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
)

const (
	// Path is the base path of the subscriptions API.
	Path = handler.APIPath + "/subscriptions"
	// PlansPath lists active plans.
	PlansPath = Path + "/plans"
	// MePath returns the caller's running subscription.
	MePath = Path + "/me"
	// RedeemPath redeems an access key.
	RedeemPath = Path + "/redeem"
)

// RedeemRequest is the body of RedeemPath.
type RedeemRequest struct {
	Code string `json:"code" form:"code"`
}

// Service is the subscriptions API handler service.
type Service struct {
	handler.Service
	db  *gorm.DB
	now func() time.Time
}

// Handler is the subscriptions API handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	if s.now == nil {
		s.now = time.Now
	}

	app.Get(PlansPath, s.Plans)
	app.Get(MePath, auth.Authenticated(), s.Me)
	app.Post(RedeemPath, auth.Authenticated(), s.Redeem)
}

// Plans lists the plans that can currently be bought.
func (s *Service) Plans(c *fiber.Ctx) error {
	plans, err := subscription.Plans(s.db, true)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"plans": plans})
}

// Me returns {"subscription": ...}, with null when the caller has none running.
func (s *Service) Me(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	sub, err := subscription.Active(s.db, claims.UserID(), s.now())
	if errors.Is(err, subscription.ErrNoActiveSubscription) {
		return c.JSON(fiber.Map{"subscription": nil})
	}

	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"subscription": sub})
}

// Redeem consumes an access key for the caller.
func (s *Service) Redeem(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	var req RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	sub, err := subscription.Redeem(s.db, claims.UserID(), req.Code, s.now())
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"subscription": sub})
}
