package posts

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/db/controller/post"
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

func TestSearch(t *testing.T) {
	env := newEnv(t)
	_, token := env.Login(t, "author@example.com", models.RoleUser)

	resp, _ := env.JSON(t, http.MethodPost, Path, post.Input{Kind: models.PostKindMovie, Title: "The Matrix"}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	queries := 0
	require.NoError(t, env.DB.Callback().Query().Before("gorm:query").Register("count_queries", func(*gorm.DB) {
		queries++
	}))

	resp, body := env.Get(t, SearchPath+"?q=m", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"posts":[]}`, body)
	assert.Zero(t, queries, "short queries never reach the database")

	resp, body = env.Get(t, SearchPath+"?q=matrix&limit=500", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "The Matrix")
	assert.Equal(t, 1, queries)
}

func TestCreateRequiresSession(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.JSON(t, http.MethodPost, Path, post.Input{Kind: models.PostKindMovie, Title: "Heat"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateGetListDelete(t *testing.T) {
	env := newEnv(t)
	_, author := env.Login(t, "author@example.com", models.RoleUser)
	_, other := env.Login(t, "other@example.com", models.RoleUser)
	_, mod := env.Login(t, "mod@example.com", models.RoleUserAdmin)

	resp, _ := env.JSON(t, http.MethodPost, Path, post.Input{Kind: "poster", Title: "Bad kind"}, author)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.JSON(t, http.MethodPost, Path, post.Input{Kind: models.PostKindSubtitle, Title: "Heat (EN)"}, author)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := env.Get(t, Path+"/heat-en", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"title":"Heat (EN)"`)

	resp, body = env.Get(t, Path+"?kind=subtitle", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "heat-en")

	resp, _ = env.Get(t, Path+"?kind=bogus", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var p models.Post
	require.NoError(t, env.DB.Where("slug = ?", "heat-en").First(&p).Error)

	target := Path + "/" + strconv.FormatUint(p.ID, 10)

	resp, _ = env.JSON(t, http.MethodDelete, target, nil, other)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = env.JSON(t, http.MethodDelete, target, nil, mod)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = env.Get(t, Path+"/heat-en", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
