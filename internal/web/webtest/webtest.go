// Package webtest provides a Fiber app, config and session helpers for handler tests.
package webtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/dbtest"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/session"
)

// NoOpViews renders the template name followed by the data map, so tests can assert both.
type NoOpViews struct{}

// Load implements fiber.Views.
func (NoOpViews) Load() error { return nil }

// Render implements fiber.Views.
func (NoOpViews) Render(w io.Writer, name string, data any, _ ...string) error {
	_, err := fmt.Fprintf(w, "%s %+v", name, data)
	return err
}

// Config returns a minimal valid configuration with captcha disabled.
func Config() *config.Config {
	return &config.Config{
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Hour},
		},
		Auth: config.Auth{Secret: "test-secret"},
	}
}

// Env bundles what a handler test needs.
type Env struct {
	App  *fiber.App
	DB   *gorm.DB
	Cfg  *config.Config
	Auth *auth.Service
}

// New opens a test database, resets the session store and creates an app with the session middleware.
func New(t *testing.T) *Env {
	t.Helper()

	session.Init(nil)

	cfg := Config()
	db := dbtest.Open(t)
	svc := auth.NewService(db, cfg)

	app := fiber.New(fiber.Config{Views: NoOpViews{}})
	app.Use(svc.Middleware())

	return &Env{App: app, DB: db, Cfg: cfg, Auth: svc}
}

// Login creates a user with role and returns a session token for it.
func (e *Env) Login(t *testing.T, email string, role models.Role) (*models.User, string) {
	t.Helper()

	u := dbtest.User(t, e.DB, email, role)

	token, _, err := e.Auth.IssueToken(u)
	require.NoError(t, err)

	return u, token
}

// Do sends a request with an optional session token and returns the response and its body.
func (e *Env) Do(t *testing.T, req *http.Request, token string) (*http.Response, string) {
	t.Helper()

	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return resp, string(body)
}

// JSON sends payload as a JSON body.
func (e *Env) JSON(t *testing.T, method, target string, payload any, token string) (*http.Response, string) {
	t.Helper()

	var body io.Reader = http.NoBody

	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)

		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return e.Do(t, req, token)
}

// Form sends form as an urlencoded body.
func (e *Env) Form(t *testing.T, target string, form url.Values, token string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	return e.Do(t, req, token)
}

// Get sends a GET request.
func (e *Env) Get(t *testing.T, target, token string) (*http.Response, string) {
	t.Helper()

	return e.Do(t, httptest.NewRequest(http.MethodGet, target, nil), token)
}

// Cookie returns the value of a cookie set by resp.
func Cookie(resp *http.Response, name string) (*http.Cookie, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c, true
		}
	}

	return nil, false
}
