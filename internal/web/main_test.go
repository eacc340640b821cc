package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/db/dbtest"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/session"
	"github.com/cineverse-captions/cineverse/internal/web/webtest"
)

func send(t *testing.T, s *Service, target, token string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return resp, string(body)
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	session.Init(nil)

	cfg := webtest.Config()
	db := dbtest.Open(t)

	return newService(cfg, db, auth.NewService(db, cfg), webtest.NoOpViews{})
}

func TestNewPanicsWithoutDependencies(t *testing.T) {
	assert.Panics(t, func() { New(nil, dbtest.Open(t), nil) })
	assert.Panics(t, func() { New(webtest.Config(), nil, nil) })
}

func TestCheckAlive(t *testing.T) {
	s := newTestService(t)

	resp, body := send(t, s, CheckAlivePath, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)

	s.alive.Store(false)

	resp, _ = send(t, s, CheckAlivePath, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, s.Alive())
}

func TestMetrics(t *testing.T) {
	s := newTestService(t)

	resp, body := send(t, s, MetricsPath, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "go_goroutines")
}

func TestStaticFiles(t *testing.T) {
	s := newTestService(t)

	resp, body := send(t, s, "/static/css/app.css", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ".topbar")
}

func TestErrorHandler(t *testing.T) {
	s := newTestService(t)

	t.Run("api answers json", func(t *testing.T) {
		resp, body := send(t, s, "/api/nothing-here", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
		assert.Contains(t, body, `"error"`)
	})

	t.Run("pages render the error template", func(t *testing.T) {
		resp, body := send(t, s, "/nothing-here", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, ErrorTemplate+" ")
		assert.Contains(t, body, "Status:404")
	})

	t.Run("admin page with the wrong role is a 404", func(t *testing.T) {
		u := dbtest.User(t, s.db, "viewer@example.com", models.RoleUser)

		token, _, err := s.authService.IssueToken(u)
		require.NoError(t, err)

		resp, body := send(t, s, "/admin/settings", token)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.NotContains(t, body, "Ads")
	})
}

func TestRoutesAreRegistered(t *testing.T) {
	s := newTestService(t)

	for _, target := range []string{"/", "/login", "/api/auth/providers", "/api/auth/csrf", "/api/subscriptions/plans"} {
		resp, _ := send(t, s, target, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
	}

	resp, _ := send(t, s, "/admin", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

// The embedded templates must parse and render every page.
func TestEmbeddedTemplates(t *testing.T) {
	session.Init(nil)

	cfg := webtest.Config()
	db := dbtest.Open(t)
	s := New(cfg, db, nil)

	resp, body := send(t, s, "/login", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `name="email"`)

	resp, body = send(t, s, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, "Nothing here yet.")

	resp, body = send(t, s, "/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Back to the home page")

	root := dbtest.User(t, db, "root@example.com", models.RoleSuperAdmin)

	token, _, err := s.authService.IssueToken(root)
	require.NoError(t, err)

	pages := map[string]string{
		"/admin":               "Sponsored posts",
		"/admin/settings":      "Micro-post groups",
		"/admin/users":         "root@example.com",
		"/admin/payments":      "Generate ad codes",
		"/admin/subscriptions": "Access keys",
		"/admin/groups":        "New group",
	}

	for target, want := range pages {
		resp, body = send(t, s, target, token)
		require.Equal(t, http.StatusOK, resp.StatusCode, target+": "+body)
		assert.Contains(t, body, want, target)
		assert.Contains(t, body, `href="/admin/settings"`, target)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "15.00 USD", formatMoney(1500, "USD"))
	assert.Equal(t, "0.05 EUR", formatMoney(5, "EUR"))
	assert.Equal(t, "-1.20 USD", formatMoney(-120, "USD"))
}
