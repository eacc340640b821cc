package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/captcha"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
)

const (
	// Path is the path to the login page.
	Path = handler.LoginPath

	// CaptchaField is the form field reCAPTCHA fills in.
	CaptchaField = "g-recaptcha-response"

	template = "login"
)

// Form is the submitted login form.
type Form struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	authService *auth.Service
	captcha     *captcha.Verifier
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.authService = authService
	s.captcha = captcha.New(cfg.Captcha)

	app.Get(Path, s.Get)
	app.Post(Path, s.Post)
}

func (s *Service) render(c *fiber.Ctx, email string, err error) error {
	data := fiber.Map{
		"Title":          s.cfg.Title,
		"Email":          email,
		"OIDCEnabled":    s.cfg.Auth.OIDC.Enabled,
		"OIDCName":       s.cfg.Auth.OIDC.Name,
		"CaptchaSiteKey": s.captcha.SiteKey(),
	}

	if err != nil {
		data["Error"] = err.Error()
	}

	return c.Render(template, data)
}

// Get handles the login page rendering. Signed-in users go straight to the home page.
func (s *Service) Get(c *fiber.Ctx) error {
	if _, ok := auth.FromContext(c); ok {
		return c.Redirect(handler.RootPath)
	}

	return s.render(c, "", nil)
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return s.render(c, "", ErrInvalidFormData)
	}

	if err := s.captcha.Verify(c.UserContext(), c.FormValue(CaptchaField), c.IP()); err != nil {
		log.Warn().Err(err).Str("ip", c.IP()).Msg("login captcha rejected")
		return s.render(c, form.Email, ErrCaptchaFailed)
	}

	user, err := s.authService.Authenticate(form.Email, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) ||
			errors.Is(err, auth.ErrUserAccountDisabled) || errors.Is(err, auth.ErrInvalidInput) {
			log.Warn().Err(err).Str("email", form.Email).Str("ip", c.IP()).Msg("login failed")
			return s.render(c, form.Email, ErrInvalidCredentials)
		}

		log.Error().Err(err).Msg("failed to authenticate user")

		return s.render(c, form.Email, ErrInternalServerError)
	}

	token, _, err := s.authService.IssueToken(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue session token")
		return s.render(c, form.Email, ErrInternalServerError)
	}

	handler.SetSessionCookie(c, s.cfg, token, s.authService.SessionExpiry())

	log.Info().Uint64("user_id", user.ID).Msg("user logged in")

	return c.Redirect(handler.RootPath)
}
