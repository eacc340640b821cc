package ads

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/webtest"
)

func TestRedeem(t *testing.T) {
	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	author, token := env.Login(t, "author@example.com", models.RoleUser)
	_, other := env.Login(t, "other@example.com", models.RoleUser)

	p := &models.Post{AuthorID: author.ID, Kind: models.PostKindMovie, Title: "Dune", Slug: "dune", Published: true}
	require.NoError(t, env.DB.Create(p).Error)

	codes, err := payment.GenerateAdCodes(env.DB, 2, payment.Terms{Amount: 500, Currency: "USD", DurationDays: 7})
	require.NoError(t, err)

	resp, _ := env.JSON(t, http.MethodPost, RedeemPath, RedeemRequest{PostID: p.ID, Code: codes[0].Code}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.JSON(t, http.MethodPost, RedeemPath, RedeemRequest{PostID: p.ID, Code: codes[0].Code}, other)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = env.JSON(t, http.MethodPost, RedeemPath, RedeemRequest{PostID: p.ID, Code: "AD-NOPE-NOPE-NOPE"}, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := env.JSON(t, http.MethodPost, RedeemPath, RedeemRequest{PostID: p.ID, Code: codes[0].Code}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"linked":true`)

	resp, body = env.JSON(t, http.MethodPost, RedeemPath, RedeemRequest{PostID: p.ID, Code: codes[1].Code}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"linked":false`)
	assert.Contains(t, body, codes[0].Code)
}

func TestConfigDefaults(t *testing.T) {
	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	resp, body := env.Get(t, ConfigPath, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"enabled":false`)

	require.NoError(t, setting.SaveAdConfig(env.DB, setting.AdConfig{Enabled: true, Provider: "adsense", Currency: "USD"}))

	_, body = env.Get(t, ConfigPath, "")
	assert.Contains(t, body, `"provider":"adsense"`)
}
