package config

import (
	"time"

	"github.com/cineverse-captions/cineverse/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Captcha   Captcha
	Scheduler Scheduler
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    // enable static file browsing (for development purposes only)
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Auth holds the sign-in settings.
type Auth struct {
	Secret          string // HMAC secret for session tokens (AUTH_SECRET)
	SuperAdminEmail string // registering with this email bootstraps a SUPER_ADMIN
	OIDC            OIDCAuth
}

// OIDCAuth configures the optional OpenID Connect sign-in provider.
type OIDCAuth struct {
	Enabled      bool
	Name         string // provider id shown in /api/auth/providers, e.g. "google"
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Captcha configures the site-verify check used on registration and sign-in.
type Captcha struct {
	SiteKey   string
	SecretKey string // empty disables verification
	VerifyURL string
	Timeout   time.Duration
}

// Scheduler configures background maintenance jobs.
type Scheduler struct {
	Enabled        bool
	ExpirySchedule string // cron format, default every 15 minutes
}
