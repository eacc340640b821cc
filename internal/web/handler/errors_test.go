package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/auth"
	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/controller/post"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: fmt.Errorf("%w: title required", post.ErrInvalidPost), want: fiber.StatusBadRequest},
		{name: "conflict", err: auth.ErrEmailExists, want: fiber.StatusConflict},
		{name: "used payment", err: payment.ErrPaymentUsed, want: fiber.StatusConflict},
		{name: "not found", err: post.ErrPostNotFound, want: fiber.StatusNotFound},
		{name: "forbidden", err: payment.ErrNotPostOwner, want: fiber.StatusForbidden},
		{name: "fiber error", err: fiber.ErrUnauthorized, want: fiber.StatusUnauthorized},
		{name: "unexpected", err: errors.New("disk on fire"), want: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestJSONErrorHidesUnexpectedDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error { return JSONError(c, errors.New("dsn password=hunter2")) })
	app.Get("/dup", func(c *fiber.Ctx) error { return JSONError(c, auth.ErrEmailExists) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "hunter2")
	assert.Contains(t, string(body), GenericErrorMessage)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/dup", nil))
	require.NoError(t, err)

	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), auth.ErrEmailExists.Error())
}
