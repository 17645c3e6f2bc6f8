package controllers

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookauth"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhooklog"
)

func runHelper(t *testing.T, handler fiber.Handler) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/t", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthError_MissingSecretIsServerFault(t *testing.T) {
	status, body := runHelper(t, func(c *fiber.Ctx) error {
		return authError(c, webhooklog.New("test"), webhookauth.ErrNotConfigured)
	})

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, body, "webhook secret not configured")
}

func TestAuthError_BadCredentialsAreUnauthorized(t *testing.T) {
	status, body := runHelper(t, func(c *fiber.Ctx) error {
		return authError(c, webhooklog.New("test"), webhookauth.ErrUnauthorized)
	})

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "unauthorized")
}

func TestAck(t *testing.T) {
	status, body := runHelper(t, func(c *fiber.Ctx) error {
		return ack(c, "already processed")
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"ok"`)
	assert.Contains(t, body, "already processed")
}

func TestIgnored(t *testing.T) {
	status, body := runHelper(t, func(c *fiber.Ctx) error {
		return ignored(c, "Job not found")
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"status":"ignored"`)
	assert.Contains(t, body, `"reason":"Job not found"`)
}

func TestBadRequestAndServerError(t *testing.T) {
	status, body := runHelper(t, func(c *fiber.Ctx) error {
		return badRequest(c, webhooklog.New("test"), errors.New("missing call id"))
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "missing call id")

	status, body = runHelper(t, func(c *fiber.Ctx) error {
		return serverError(c, webhooklog.New("test"), errors.New("db down"))
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, body, "internal error")
	assert.NotContains(t, body, "db down", "internal details are not leaked")
}
