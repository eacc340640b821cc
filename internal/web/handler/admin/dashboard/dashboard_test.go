package dashboard

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/webtest"
)

func TestCollect(t *testing.T) {
	env := webtest.New(t)

	author, _ := env.Login(t, "author@example.com", models.RoleUser)
	require.NoError(t, env.DB.Create(&models.Post{
		AuthorID: author.ID, Kind: models.PostKindMovie, Title: "Ran", Slug: "ran", Published: true,
	}).Error)

	_, err := payment.GenerateAdCodes(env.DB, 3, payment.Terms{Amount: 100, Currency: "USD", DurationDays: 1})
	require.NoError(t, err)

	stats, err := Collect(env.DB, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 1, Posts: 1, UnusedAdCodes: 3}, stats)
}

func TestDashboardAccess(t *testing.T) {
	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	_, user := env.Login(t, "user@example.com", models.RoleUser)
	_, mod := env.Login(t, "mod@example.com", models.RoleUserAdmin)
	_, root := env.Login(t, "root@example.com", models.RoleSuperAdmin)

	resp, _ := env.Get(t, Path, "")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	resp, body := env.Get(t, Path, user)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, body, "Stats")

	resp, body = env.Get(t, Path, mod)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "admin/dashboard")
	assert.Contains(t, body, "Users:3")

	resp, _ = env.Get(t, Path, root)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
