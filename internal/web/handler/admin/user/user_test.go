package user

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/webtest"
)

func newEnv(t *testing.T) *webtest.Env {
	t.Helper()

	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	return env
}

func TestListIsSuperAdminOnly(t *testing.T) {
	env := newEnv(t)

	_, user := env.Login(t, "user@example.com", models.RoleUser)
	_, mod := env.Login(t, "mod@example.com", models.RoleUserAdmin)
	_, root := env.Login(t, "root@example.com", models.RoleSuperAdmin)

	resp, _ := env.Get(t, Path, "")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	for _, token := range []string{user, mod} {
		resp, body := env.Get(t, Path, token)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.NotContains(t, body, "root@example.com")
	}

	resp, body := env.Get(t, Path+"?search=mod", root)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "mod@example.com")
	assert.NotContains(t, body, "user@example.com")
}

func TestUpdateRole(t *testing.T) {
	env := newEnv(t)

	target, targetToken := env.Login(t, "user@example.com", models.RoleUser)
	rootUser, root := env.Login(t, "root@example.com", models.RoleSuperAdmin)
	_, mod := env.Login(t, "mod@example.com", models.RoleUserAdmin)

	rolePath := func(id uint64) string { return fmt.Sprintf("%s/%d/role", Path, id) }

	resp, _ := env.Form(t, rolePath(target.ID), url.Values{"role": {"SUPER_ADMIN"}}, mod)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := env.Form(t, rolePath(target.ID), url.Values{"role": {"GOD"}}, root)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, auth.ErrInvalidRole.Error())

	resp, _ = env.Form(t, rolePath(rootUser.ID), url.Values{"role": {"USER"}}, root)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = env.Form(t, rolePath(9999), url.Values{"role": {"USER"}}, root)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = env.Form(t, rolePath(target.ID), url.Values{"role": {"user_admin"}}, root)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "set to USER_ADMIN")

	var reloaded models.User
	require.NoError(t, env.DB.First(&reloaded, target.ID).Error)
	assert.Equal(t, models.RoleUserAdmin, reloaded.Role)

	_, err := env.Auth.ParseToken(targetToken)
	require.ErrorIs(t, err, auth.ErrSessionRevoked, "old sessions carry the old role")

	_, err = env.Auth.ParseToken(root)
	require.NoError(t, err)
}

func TestUpdateActive(t *testing.T) {
	env := newEnv(t)

	target, _ := env.Login(t, "user@example.com", models.RoleUser)
	rootUser, root := env.Login(t, "root@example.com", models.RoleSuperAdmin)

	activePath := func(id uint64) string { return fmt.Sprintf("%s/%d/active", Path, id) }

	resp, _ := env.Form(t, activePath(target.ID), url.Values{"active": {"maybe"}}, root)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.Form(t, activePath(rootUser.ID), url.Values{"active": {"false"}}, root)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := env.Form(t, activePath(target.ID), url.Values{"active": {"false"}}, root)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "user@example.com disabled")

	_, err := env.Auth.Authenticate(target.Email, "password123")
	require.ErrorIs(t, err, auth.ErrUserAccountDisabled)
}
