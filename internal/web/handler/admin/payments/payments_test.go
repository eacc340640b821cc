package payments

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/models"
	"github.com/cineverse-captions/cineverse/internal/web/webtest"
)

func setup(t *testing.T) (*webtest.Env, *models.Post) {
	t.Helper()

	env := webtest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	author, _ := env.Login(t, "author@example.com", models.RoleUser)

	p := &models.Post{AuthorID: author.ID, Kind: models.PostKindMovie, Title: "Arrival", Slug: "arrival", Published: true}
	require.NoError(t, env.DB.Create(p).Error)

	return env, p
}

func TestPaymentsAccess(t *testing.T) {
	env, _ := setup(t)

	_, user := env.Login(t, "user@example.com", models.RoleUser)
	_, mod := env.Login(t, "mod@example.com", models.RoleUserAdmin)

	resp, _ := env.Get(t, Path, user)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = env.Form(t, Path+"/generate", url.Values{"count": {"5"}}, user)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := env.Get(t, Path, mod)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "admin/payments")
}

func TestLinkWithTermsThenNoop(t *testing.T) {
	env, p := setup(t)
	_, mod := env.Login(t, "mod@example.com", models.RoleUserAdmin)

	postID := strconv.FormatUint(p.ID, 10)

	resp, _ := env.Form(t, Path+"/link", url.Values{"postId": {postID}, "amount": {"0"}, "currency": {"USD"}, "durationDays": {"7"}}, mod)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.Form(t, Path+"/link", url.Values{"postId": {"424242"}, "amount": {"100"}, "currency": {"USD"}, "durationDays": {"7"}}, mod)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := env.Form(t, Path+"/link", url.Values{"postId": {postID}, "amount": {"1500"}, "currency": {"usd"}, "durationDays": {"30"}}, mod)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "linked to arrival")

	var first models.Post
	require.NoError(t, env.DB.First(&first, p.ID).Error)
	require.NotNil(t, first.AdPaymentID)

	codes, err := payment.GenerateAdCodes(env.DB, 1, payment.Terms{Amount: 1, Currency: "EUR", DurationDays: 1})
	require.NoError(t, err)

	resp, body = env.Form(t, Path+"/link", url.Values{"postId": {postID}, "code": {codes[0].Code}}, mod)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "nothing changed")

	var after models.Post
	require.NoError(t, env.DB.First(&after, p.ID).Error)
	assert.Equal(t, *first.AdPaymentID, *after.AdPaymentID)

	var spare models.AdPayment
	require.NoError(t, env.DB.First(&spare, codes[0].ID).Error)
	assert.False(t, spare.Used)
}

func TestGenerate(t *testing.T) {
	env, _ := setup(t)
	_, root := env.Login(t, "root@example.com", models.RoleSuperAdmin)

	resp, _ := env.Form(t, Path+"/generate", url.Values{"count": {"0"}, "amount": {"100"}, "currency": {"USD"}, "durationDays": {"7"}}, root)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := env.Form(t, Path+"/generate", url.Values{"count": {"3"}, "amount": {"100"}, "currency": {"USD"}, "durationDays": {"7"}}, root)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, "Generated")

	var count int64
	require.NoError(t, env.DB.Model(&models.AdPayment{}).Where("used = ?", false).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	_, body = env.Get(t, Path+"?state=used", root)
	assert.Contains(t, body, "Payments:[]")
}
