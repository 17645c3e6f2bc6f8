package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/jobqueue"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/musicgen"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookauth"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookevent"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhooklog"
)

func verifyMusicgenSignature(c *fiber.Ctx, body []byte) error {
	return webhookauth.VerifyHMACSignature(
		body,
		c.Get("X-Webhook-Signature"),
		c.Get(fiber.HeaderAuthorization),
		env.GetEnv("MUSICGEN_WEBHOOK_SECRET", ""),
	)
}

// HandleMusicgenTrackCallback applies a track generation callback. The
// (task id, track index) pair is the idempotency key: terminal tracks with
// populated output are never overwritten by re-delivery.
func HandleMusicgenTrackCallback(c *fiber.Ctx) error {
	lg := webhooklog.New("MusicgenTrackCallback")
	defer lg.Timer()()

	body := c.Body()
	if err := verifyMusicgenSignature(c, body); err != nil {
		return authError(c, lg, err)
	}

	cb, err := musicgen.ParseTrackCallback(body)
	if err != nil {
		return badRequest(c, lg, err)
	}
	lg = lg.With("task", cb.TaskID, "failed", cb.Failed)

	events := webhookevent.NewService(database.GetDB())
	_, stored, err := events.Record(c.Context(), webhookevent.Input{
		Provider:        "musicgen",
		ProviderEventID: "", // keyed by payload hash; tasks deliver multiple distinct callbacks
		EventType:       "track",
		PayloadJSON:     string(body),
		SignatureValid:  true,
	})
	if err != nil {
		return serverError(c, lg, err)
	}

	svc := musicgen.NewServiceFromDB(database.GetDB(), jobqueue.GetManager().GetScheduler())
	result, err := svc.ApplyTrackCallback(c.Context(), cb)
	_ = events.MarkProcessed(c.Context(), stored.ID, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Callbacks can outlive a deleted task; nothing to update.
			lg.Warnf("no music rows for task")
			return ack(c, "unknown task")
		}
		return serverError(c, lg, err)
	}

	for _, serr := range result.ScheduleErrors {
		lg.Errorf("follow-on enqueue failed: %v", serr)
	}
	lg.Infof("applied callback (updated=%d skipped=%d)", result.Updated, result.Skipped)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
}

// HandleMusicgenVideoCallback applies a video generation callback, keyed by
// the provider task ID.
func HandleMusicgenVideoCallback(c *fiber.Ctx) error {
	lg := webhooklog.New("MusicgenVideoCallback")
	defer lg.Timer()()

	body := c.Body()
	if err := verifyMusicgenSignature(c, body); err != nil {
		return authError(c, lg, err)
	}

	cb, err := musicgen.ParseVideoCallback(body)
	if err != nil {
		return badRequest(c, lg, err)
	}
	lg = lg.With("task", cb.TaskID, "failed", cb.Failed)

	events := webhookevent.NewService(database.GetDB())
	_, stored, err := events.Record(c.Context(), webhookevent.Input{
		Provider:        "musicgen",
		ProviderEventID: "",
		EventType:       "video",
		PayloadJSON:     string(body),
		SignatureValid:  true,
	})
	if err != nil {
		return serverError(c, lg, err)
	}

	svc := musicgen.NewServiceFromDB(database.GetDB(), jobqueue.GetManager().GetScheduler())
	result, err := svc.ApplyVideoCallback(c.Context(), cb)
	_ = events.MarkProcessed(c.Context(), stored.ID, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			lg.Warnf("no video row for task")
			return ack(c, "unknown task")
		}
		return serverError(c, lg, err)
	}

	lg.Infof("applied video callback (updated=%d skipped=%d)", result.Updated, result.Skipped)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
}
