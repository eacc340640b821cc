package home

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/webtest"
)

func TestHomeShowsPromoAndPosts(t *testing.T) {
	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	author, _ := env.Login(t, "author@example.com", models.RoleUser)
	require.NoError(t, env.DB.Create(&models.Post{
		AuthorID: author.ID, Kind: models.PostKindMovie, Title: "Stalker", Slug: "stalker", Published: true,
	}).Error)
	require.NoError(t, env.DB.Create(&models.Post{
		AuthorID: author.ID, Kind: models.PostKindSubtitle, Title: "Solaris (FR)", Slug: "solaris-fr", Published: true,
	}).Error)

	resp, body := env.Get(t, Path, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "home ")
	assert.Contains(t, body, "Stalker")
	assert.Contains(t, body, "Solaris (FR)")
	assert.Contains(t, body, "Enabled:false", "missing promo renders the default")

	require.NoError(t, setting.SaveFeaturedPromo(env.DB, setting.FeaturedPromo{Enabled: true, Title: "Festival week"}))

	_, body = env.Get(t, Path+"?kind=subtitle", "")
	assert.Contains(t, body, "Festival week")
	assert.Contains(t, body, "Solaris (FR)")
	assert.NotContains(t, body, "Stalker")
}
