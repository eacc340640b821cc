package group

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/db/controller/group"
	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
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

func TestGroupsPageIsSuperAdminOnly(t *testing.T) {
	env := newEnv(t)

	_, mod := env.Login(t, "mod@example.com", models.RoleUserAdmin)

	resp, _ := env.Get(t, Path, "")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	resp, body := env.Get(t, Path, mod)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, body, TemplateList)
}

func TestCreateListAndDelete(t *testing.T) {
	env := newEnv(t)

	admin, root := env.Login(t, "root@example.com", models.RoleSuperAdmin)

	resp, body := env.Form(t, Path, url.Values{"name": {"x"}}, root)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, group.ErrInvalidGroup.Error())

	resp, body = env.Form(t, Path, url.Values{"name": {"Noir Club"}, "description": {"rainy nights"}}, root)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Contains(t, body, "Group Noir Club created")

	resp, _ = env.Form(t, Path, url.Values{"name": {"noir club"}}, root)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var g models.Group
	require.NoError(t, env.DB.Where("name = ?", "Noir Club").First(&g).Error)
	assert.Equal(t, admin.ID, g.OwnerID)

	resp, body = env.Get(t, Path+"?search=rainy", root)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Noir Club")
	assert.Contains(t, body, "Members:1")

	resp, body = env.Get(t, Path+"?search=comedy", root)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Noir Club")

	resp, _ = env.Form(t, fmt.Sprintf("%s/%d/delete", Path, g.ID), nil, root)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.Form(t, fmt.Sprintf("%s/%d/delete", Path, g.ID), nil, root)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSetMicroPosts(t *testing.T) {
	env := newEnv(t)

	admin, root := env.Login(t, "root@example.com", models.RoleSuperAdmin)

	g, err := group.Create(env.DB, admin.ID, group.Input{Name: "Subtitlers"})
	require.NoError(t, err)

	target := fmt.Sprintf("%s/%d/microposts", Path, g.ID)

	resp, _ := env.Form(t, target, url.Values{"allow": {"maybe"}}, root)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.Form(t, fmt.Sprintf("%s/%d/microposts", Path, 9999), url.Values{"allow": {"true"}}, root)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	for range 2 {
		resp, body := env.Form(t, target, url.Values{"allow": {"true"}}, root)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
		assert.Contains(t, body, "MicroPosts:true")
	}

	ids, err := setting.LoadMicroPostAllowedGroups(env.DB)
	require.NoError(t, err)
	assert.Equal(t, []uint64{g.ID}, ids)

	resp, _ = env.Form(t, fmt.Sprintf("%s/%d/delete", Path, g.ID), nil, root)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	ids, err = setting.LoadMicroPostAllowedGroups(env.DB)
	require.NoError(t, err)
	assert.Empty(t, ids, "deleted groups leave the allowlist")
}
