package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/jobqueue"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/voice"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookauth"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookevent"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhooklog"
)

// checkVoiceSecret accepts either the provider's dedicated secret header
// or a bearer token, depending on how the webhook was registered.
func checkVoiceSecret(c *fiber.Ctx) error {
	secret := env.GetEnv("VOICE_WEBHOOK_SECRET", "")
	if headerSecret := strings.TrimSpace(c.Get("X-Vapi-Secret")); headerSecret != "" {
		if strings.TrimSpace(secret) == "" {
			return webhookauth.ErrNotConfigured
		}
		if headerSecret != strings.TrimSpace(secret) {
			return webhookauth.ErrUnauthorized
		}
		return nil
	}
	return webhookauth.CheckBearer(c.Get(fiber.HeaderAuthorization), secret)
}

// HandleVoiceWebhook processes server messages from the voice provider.
// End-of-call reports complete the tracked call and schedule diary
// generation; everything else is acknowledged and ignored.
func HandleVoiceWebhook(c *fiber.Ctx) error {
	lg := webhooklog.New("VoiceWebhook")
	defer lg.Timer()()

	if err := checkVoiceSecret(c); err != nil {
		return authError(c, lg, err)
	}

	body := c.Body()
	msgType, err := voice.ParseMessageType(body)
	if err != nil {
		return badRequest(c, lg, err)
	}
	lg = lg.With("type", msgType)

	if msgType != voice.MessageTypeEndOfCallReport {
		lg.Infof("ignoring message type")
		return ignored(c, "message type not handled")
	}

	report, err := voice.ParseEndOfCallReport(body)
	if err != nil {
		return badRequest(c, lg, err)
	}
	lg = lg.With("call", report.CallID)

	events := webhookevent.NewService(database.GetDB())
	created, stored, err := events.Record(c.Context(), webhookevent.Input{
		Provider:        "voice",
		ProviderEventID: report.CallID,
		EventType:       msgType,
		PayloadJSON:     string(body),
		SignatureValid:  true,
	})
	if err != nil {
		return serverError(c, lg, err)
	}
	if !created {
		lg.Infof("duplicate delivery, already recorded")
	}

	svc := voice.NewServiceFromDB(database.GetDB(), jobqueue.GetManager().GetScheduler())
	result, err := svc.CompleteCall(c.Context(), report)
	_ = events.MarkProcessed(c.Context(), stored.ID, err)
	if err != nil {
		return serverError(c, lg, err)
	}

	if result.Ignored {
		lg.Infof("ignored: %s", result.Reason)
		return ignored(c, result.Reason)
	}
	if result.ScheduleError != nil {
		// Scheduling is best-effort; the stale call sweeper and provider
		// redelivery cover the gap.
		lg.Errorf("diary generation enqueue failed: %v", result.ScheduleError)
	}
	lg.Infof("call completed (diaryScheduled=%v reason=%q)", result.DiaryScheduled, result.Reason)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":          "ok",
		"diary_scheduled": result.DiaryScheduled,
	})
}

// HandleVoiceAssistantRequest answers the provider's inbound-call
// configuration request: which assistant answers a call from this number.
func HandleVoiceAssistantRequest(c *fiber.Ctx) error {
	lg := webhooklog.New("VoiceAssistantRequest")
	defer lg.Timer()()

	if err := checkVoiceSecret(c); err != nil {
		return authError(c, lg, err)
	}

	msgType, err := voice.ParseMessageType(c.Body())
	if err != nil {
		return badRequest(c, lg, err)
	}
	if msgType != voice.MessageTypeAssistantRequest {
		lg.Infof("ignoring message type %s", msgType)
		return ignored(c, "message type not handled")
	}

	req, err := voice.ParseAssistantRequest(c.Body())
	if err != nil {
		return badRequest(c, lg, err)
	}
	if req.PhoneNumber == "" {
		return badRequest(c, lg, errors.New("assistant request missing caller number"))
	}
	lg = lg.With("call", req.CallID)

	svc := voice.NewServiceFromDB(database.GetDB(), jobqueue.GetManager().GetScheduler())
	user, err := svc.ResolveInboundCaller(c.Context(), req.PhoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			lg.Warnf("no user for inbound number")
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no call settings for this number",
			})
		}
		return serverError(c, lg, err)
	}

	assistantID := env.GetEnv("VOICE_ASSISTANT_ID", "")
	if strings.TrimSpace(assistantID) == "" {
		return serverError(c, lg, errors.New("VOICE_ASSISTANT_ID is not configured"))
	}

	lg.Infof("resolved inbound caller to user %d", user.ID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"assistantId": assistantID,
		"assistantOverrides": fiber.Map{
			"variableValues": fiber.Map{
				"userName": user.DisplayName,
			},
		},
	})
}
