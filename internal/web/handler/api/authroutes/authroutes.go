package authroutes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/captcha"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/web/handler"
	"github.com/cineverse-captions/cineverse/internal/web/session"
)

const (
	// Path is the base path of the auth routes.
	Path = handler.APIPath + "/auth"

	// Endpoints below Path.
	ProvidersPath           = Path + "/providers"
	CSRFPath                = Path + "/csrf"
	SessionPath             = Path + "/session"
	CredentialsCallbackPath = Path + "/callback/credentials"
	SignOutPath             = Path + "/signout"
	OIDCSignInPath          = Path + "/signin/oidc"
	OIDCCallbackPath        = Path + "/callback/oidc"

	// CSRFHeader carries the CSRF token on POST requests.
	CSRFHeader = "X-CSRF-Token"
	// CSRFField carries the CSRF token in form posts.
	CSRFField = "csrfToken"
	// CSRFCookie holds the CSRF token issued by CSRFPath.
	CSRFCookie = "csrf_"

	// CredentialsSignin is the error code of a failed credentials sign-in.
	CredentialsSignin = "CredentialsSignin"

	csrfContextKey = "csrf"
	stateTTL       = 5 * time.Minute
)

// CredentialsRequest is the body of CredentialsCallbackPath.
type CredentialsRequest struct {
	Email        string `json:"email"        form:"email"`
	Password     string `json:"password"     form:"password"`
	CaptchaToken string `json:"captchaToken" form:"captchaToken"`
}

// Provider describes one sign-in method.
type Provider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SignInURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// Service is the auth routes handler service.
type Service struct {
	handler.Service
	cfg          *config.Config
	authService  *auth.Service
	captcha      *captcha.Verifier
	oidcProvider *auth.OIDCProvider
}

// Handler is the auth routes handler.
var Handler = Service{}

// Init registers the routes. A failing OIDC discovery disables OIDC sign-in but keeps
// credentials sign-in available.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.authService = authService
	s.captcha = captcha.New(cfg.Captcha)

	if cfg.Auth.OIDC.Enabled {
		provider, err := auth.NewOIDCProvider(context.Background(), cfg.Auth.OIDC, authService)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize OIDC provider, OIDC sign-in disabled")
		} else {
			s.oidcProvider = provider

			log.Info().Str("provider", provider.Name()).Msg("OIDC sign-in enabled")
		}
	}

	router := app.Group(Path, csrf.New(csrf.Config{
		CookieName:     CSRFCookie,
		CookieSecure:   !cfg.DevMode,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		Expiration:     time.Hour,
		ContextKey:     csrfContextKey,
		Extractor:      extractCSRF,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Warn().Err(err).Str("path", c.Path()).Msg("csrf check failed")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid csrf token"})
		},
	}))

	router.Get("/providers", s.Providers)
	router.Get("/csrf", s.CSRF)
	router.Get("/session", s.Session)
	router.Post("/callback/credentials", s.Credentials)
	router.Post("/signout", s.SignOut)
	router.Get("/signin/oidc", s.OIDCSignIn)
	router.Get("/callback/oidc", s.OIDCCallback)
}

func extractCSRF(c *fiber.Ctx) (string, error) {
	if token := c.Get(CSRFHeader); token != "" {
		return token, nil
	}

	if token := c.FormValue(CSRFField); token != "" {
		return token, nil
	}

	return "", csrf.ErrTokenNotFound
}

// Providers lists the enabled sign-in methods keyed by id.
func (s *Service) Providers(c *fiber.Ctx) error {
	providers := fiber.Map{
		"credentials": Provider{
			ID:          "credentials",
			Name:        "Credentials",
			Type:        "credentials",
			SignInURL:   handler.LoginPath,
			CallbackURL: CredentialsCallbackPath,
		},
	}

	if s.oidcProvider != nil {
		providers["oidc"] = Provider{
			ID:          "oidc",
			Name:        s.oidcProvider.Name(),
			Type:        "oidc",
			SignInURL:   OIDCSignInPath,
			CallbackURL: OIDCCallbackPath,
		}
	}

	return c.JSON(providers)
}

// CSRF returns {"csrfToken": "..."}; the same token is set as a cookie.
func (s *Service) CSRF(c *fiber.Ctx) error {
	token, _ := c.Locals(csrfContextKey).(string)

	return c.JSON(fiber.Map{"csrfToken": token})
}

// Session returns the signed-in user and the session expiry, or {} without a session.
func (s *Service) Session(c *fiber.Ctx) error {
	claims, ok := auth.FromContext(c)
	if !ok {
		return c.JSON(fiber.Map{})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":          claims.UserID(),
			"name":        claims.Name,
			"email":       claims.Email,
			"role":        claims.Role,
			"permissions": claims.Permissions,
		},
		"expires": claims.ExpiresAt.Time,
	})
}

// Credentials signs in with email and password. Every credential problem answers with the same
// CredentialsSignin error.
func (s *Service) Credentials(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.JSONError(c, handler.ErrInvalidBody)
	}

	if err := s.captcha.Verify(c.UserContext(), req.CaptchaToken, c.IP()); err != nil {
		return handler.JSONError(c, err)
	}

	user, err := s.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if isCredentialError(err) {
			log.Warn().Err(err).Str("email", req.Email).Str("ip", c.IP()).Msg("credentials sign-in failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": CredentialsSignin})
		}

		return handler.JSONError(c, err)
	}

	token, claims, err := s.authService.IssueToken(user)
	if err != nil {
		return handler.JSONError(c, err)
	}

	handler.SetSessionCookie(c, s.cfg, token, s.authService.SessionExpiry())

	log.Info().Uint64("user_id", user.ID).Str("role", string(user.Role)).Msg("user signed in")

	return c.JSON(fiber.Map{"ok": true, "url": handler.RootPath, "expires": claims.ExpiresAt.Time})
}

func isCredentialError(err error) bool {
	return errors.Is(err, auth.ErrUserNotFound) ||
		errors.Is(err, auth.ErrInvalidPassword) ||
		errors.Is(err, auth.ErrUserAccountDisabled) ||
		errors.Is(err, auth.ErrInvalidInput)
}

// SignOut revokes the current session and clears the cookie.
func (s *Service) SignOut(c *fiber.Ctx) error {
	token := c.Cookies(auth.CookieName)
	if token == "" {
		token = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}

	if token != "" {
		if err := s.authService.RevokeToken(token); err != nil {
			log.Error().Err(err).Msg("failed to revoke session")
		}
	}

	handler.ClearSessionCookie(c, s.cfg)

	return c.JSON(fiber.Map{"url": handler.LoginPath})
}

// OIDCSignIn redirects to the identity provider.
func (s *Service) OIDCSignIn(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return fiber.ErrNotFound
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		return handler.JSONError(c, err)
	}

	if err = session.SaveState(state, stateTTL); err != nil {
		return handler.JSONError(c, err)
	}

	return c.Redirect(s.oidcProvider.GetAuthURL(state))
}

// OIDCCallback completes the OIDC flow and starts a session.
func (s *Service) OIDCCallback(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return fiber.ErrNotFound
	}

	code, state := c.Query("code"), c.Query("state")
	if code == "" || state == "" {
		log.Warn().Msg("missing code or state in OIDC callback")
		return c.Redirect(handler.LoginPath + "?error=OAuthCallback")
	}

	ok, err := session.ConsumeState(state)
	if err != nil {
		return handler.JSONError(c, err)
	}

	if !ok {
		log.Warn().Str("ip", c.IP()).Msg("unknown or expired OIDC state")
		return c.Redirect(handler.LoginPath + "?error=OAuthCallback")
	}

	user, err := s.oidcProvider.HandleCallback(c.UserContext(), code)
	if err != nil {
		log.Warn().Err(err).Msg("OIDC sign-in failed")
		return c.Redirect(handler.LoginPath + "?error=OAuthSignin")
	}

	token, _, err := s.authService.IssueToken(user)
	if err != nil {
		return handler.JSONError(c, err)
	}

	handler.SetSessionCookie(c, s.cfg, token, s.authService.SessionExpiry())

	log.Info().Uint64("user_id", user.ID).Msg("user signed in via OIDC")

	return c.Redirect(handler.RootPath)
}
