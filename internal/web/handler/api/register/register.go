// Package register serves account registration.
package register

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/captcha"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
)

// Path is the registration endpoint.
const Path = handler.APIPath + "/register"

// Request is the registration body.
type Request struct {
	Name         string `json:"name"         form:"name"`
	Email        string `json:"email"        form:"email"`
	Password     string `json:"password"     form:"password"`
	CaptchaToken string `json:"captchaToken" form:"captchaToken"`
}

// Service is the registration handler service.
type Service struct {
	handler.Service
	authService *auth.Service
	captcha     *captcha.Verifier
}

// Handler is the registration handler.
var Handler = Service{}

// Init registers the route.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.authService = authService
	s.captcha = captcha.New(cfg.Captcha)

	app.Post(Path, s.Post)
}

// Post creates an account: 201 with the user, 400 on invalid input, 409 when the email is taken.
func (s *Service) Post(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	if err := s.captcha.Verify(c.UserContext(), req.CaptchaToken, c.IP()); err != nil {
		return handler.JSONError(c, err)
	}

	user, err := s.authService.Register(auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}
