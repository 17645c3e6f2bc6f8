package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookauth"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhooklog"
)

// authError maps a verification failure onto the right response. A missing
// server-side secret is a deployment error (500), never a 401: webhooks
// fail closed without blaming the caller.
func authError(c *fiber.Ctx, lg *webhooklog.Logger, err error) error {
	if errors.Is(err, webhookauth.ErrNotConfigured) {
		lg.Errorf("secret not configured: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "webhook secret not configured",
		})
	}
	lg.Warnf("rejected: %v", err)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}

// ack responds 200 with a message. Providers redeliver on non-2xx, so
// handled-but-ignored deliveries are acknowledged, not errored.
func ack(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"message": message,
	})
}

// ignored responds 200 with an ignored status for deliveries that are
// valid but intentionally not handled.
func ignored(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ignored",
		"reason": reason,
	})
}

// badRequest responds 400 for payloads that can never become valid. There
// is no point letting the provider retry these.
func badRequest(c *fiber.Ctx, lg *webhooklog.Logger, err error) error {
	lg.Warnf("bad payload: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// serverError responds 500 so the provider redelivers after the transient
// fault clears.
func serverError(c *fiber.Ctx, lg *webhooklog.Logger, err error) error {
	lg.Errorf("processing failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
	})
}
