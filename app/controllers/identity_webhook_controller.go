package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/identity"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookauth"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookevent"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhooklog"
)

// HandleIdentityWebhook processes identity-provider events. Only
// user.created provisions anything; every other event type is acknowledged
// and ignored so the provider stops retrying.
func HandleIdentityWebhook(c *fiber.Ctx) error {
	lg := webhooklog.New("IdentityWebhook")
	defer lg.Timer()()

	body := c.Body()
	msgID := c.Get("svix-id")
	if err := webhookauth.VerifyIdentitySignature(
		body,
		msgID,
		c.Get("svix-timestamp"),
		c.Get("svix-signature"),
		env.GetEnv("IDENTITY_WEBHOOK_SECRET", ""),
		time.Now(),
	); err != nil {
		return authError(c, lg, err)
	}

	ev, err := identity.ParseEvent(body)
	if err != nil {
		return badRequest(c, lg, err)
	}
	lg = lg.With("type", ev.Type, "msg", msgID)

	events := webhookevent.NewService(database.GetDB())
	created, stored, err := events.Record(c.Context(), webhookevent.Input{
		Provider:        "identity",
		ProviderEventID: msgID,
		EventType:       ev.Type,
		PayloadJSON:     string(body),
		SignatureValid:  true,
	})
	if err != nil {
		return serverError(c, lg, err)
	}
	if !webhookevent.NeedsProcessing(created, stored) {
		lg.Infof("duplicate delivery, already processed")
		return ack(c, "already processed")
	}
	if !created {
		lg.Warnf("redelivery of an event that never finished, reapplying")
	}

	if ev.Type != identity.EventTypeUserCreated {
		_ = events.MarkProcessed(c.Context(), stored.ID, nil)
		lg.Infof("ignoring event type")
		return ignored(c, "event type not handled")
	}

	svc := identity.NewServiceFromDB(database.GetDB())
	user, provisioned, err := svc.ProvisionUser(c.Context(), ev.Data)
	_ = events.MarkProcessed(c.Context(), stored.ID, err)
	if err != nil {
		return serverError(c, lg, err)
	}

	if provisioned {
		lg.Infof("provisioned user %d (external=%s)", user.ID, user.ExternalID)
	} else {
		lg.Infof("user %d already exists, no-op", user.ID)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"user_id": user.ID,
		"created": provisioned,
	})
}
