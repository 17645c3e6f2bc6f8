package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MelodiaryApp/Melodiary/internal/pkg/billing"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookauth"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookevent"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhooklog"
)

// HandleBillingWebhook applies billing provider events to subscription
// state. Deliveries are at-least-once; the (provider, event id) audit row
// and convergent status mapping make re-delivery harmless.
func HandleBillingWebhook(c *fiber.Ctx) error {
	lg := webhooklog.New("BillingWebhook")
	defer lg.Timer()()

	if err := webhookauth.CheckBearer(
		c.Get(fiber.HeaderAuthorization),
		env.GetEnv("BILLING_WEBHOOK_SECRET", ""),
	); err != nil {
		return authError(c, lg, err)
	}

	body := c.Body()
	ev, err := billing.ParseEvent(body)
	if err != nil {
		return badRequest(c, lg, err)
	}
	lg = lg.With("type", ev.Type, "event", ev.ID)

	events := webhookevent.NewService(database.GetDB())
	created, stored, err := events.Record(c.Context(), webhookevent.Input{
		Provider:        billing.ProviderName,
		ProviderEventID: ev.ID,
		EventType:       ev.Type,
		PayloadJSON:     string(billing.SanitizePayload(body)),
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

	svc := billing.NewServiceFromDB(database.GetDB())
	err = svc.ApplyEvent(c.Context(), ev, body)
	_ = events.MarkProcessed(c.Context(), stored.ID, err)
	if err != nil {
		// Unknown users are acknowledged: the provider cannot fix a
		// missing local account by retrying the same event forever.
		if errors.Is(err, billing.ErrUserNotFound) {
			lg.Warnf("no local user for app_user_id %s", ev.AppUserID)
			return ack(c, "user not found")
		}
		return serverError(c, lg, err)
	}

	// Drop the cached entitlement snapshot so the next read is current.
	if user, uerr := billing.NewRepository(database.GetDB()).GetUserByExternalID(ev.AppUserID); uerr == nil {
		subscriptionCache().Invalidate(user.ID)
	}

	lg.Infof("applied event for app_user_id %s", ev.AppUserID)
	return ack(c, "processed")
}
