// Package logout ends browser sessions.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
)

// Path is the logout route.
const Path = handler.LogoutPath

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	authService *auth.Service
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.authService = authService

	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)
}

// Logout revokes the session behind the cookie, clears it and returns to the login page.
func (s *Service) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(auth.CookieName); token != "" {
		if err := s.authService.RevokeToken(token); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	handler.ClearSessionCookie(c, s.cfg)

	return c.Redirect(handler.LoginPath)
}
