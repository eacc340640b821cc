package logout

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/webtest"
)

func TestLogoutRevokesSession(t *testing.T) {
	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	_, token := env.Login(t, "eve@example.com", models.RoleUser)

	resp, _ := env.Get(t, Path, token)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	cookie, ok := webtest.Cookie(resp, auth.CookieName)
	require.True(t, ok)
	assert.Empty(t, cookie.Value)

	_, err := env.Auth.ParseToken(token)
	require.ErrorIs(t, err, auth.ErrSessionRevoked)

	resp, _ = env.Get(t, Path, "")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode, "logout without a session still redirects")
}
