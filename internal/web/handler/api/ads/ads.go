// Package ads lets post authors sponsor their posts with ad codes.
package ads

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
)

const (
	// Path is the base path of the ads API.
	Path = handler.APIPath + "/ads"
	// RedeemPath redeems an ad code for a post.
	RedeemPath = Path + "/redeem"
	// ConfigPath exposes the public ad configuration.
	ConfigPath = Path + "/config"
)

// RedeemRequest is the body of RedeemPath.
type RedeemRequest struct {
	PostID uint64 `json:"postId" form:"postId"`
	Code   string `json:"code"   form:"code"`
}

// Service is the ads API handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the ads API handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	app.Get(ConfigPath, s.Config)
	app.Post(RedeemPath, auth.RequirePermission(auth.PermAdRedeem), s.Redeem)
}

// Config returns the ad configuration clients need to render slots.
func (s *Service) Config(c *fiber.Ctx) error {
	ads, err := setting.LoadAdConfig(s.db)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(ads)
}

// Redeem links an ad code to one of the caller's posts. A post that is already sponsored keeps its
// payment and the response reports linked=false.
func (s *Service) Redeem(c *fiber.Ctx) error {
	claims, _ := auth.FromContext(c)

	var req RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	res, err := payment.RedeemAdCode(s.db, claims.UserID(), req.PostID, req.Code)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{
		"linked":         res.Linked,
		"postId":         res.Post.ID,
		"sponsoredUntil": res.Post.SponsoredUntil,
		"code":           res.Payment.Code,
	})
}
