package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/MelodiaryApp/Melodiary/app/controllers"
)

type WebhookRouter struct {
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	// Providers retry aggressively; the limiter bounds abuse without
	// rejecting normal redelivery bursts.
	webhooks := app.Group("/webhooks", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	webhooks.Post("/identity", controllers.HandleIdentityWebhook)
	webhooks.Post("/billing", controllers.HandleBillingWebhook)
	webhooks.Post("/voice", controllers.HandleVoiceWebhook)
	webhooks.Post("/voice/assistant", controllers.HandleVoiceAssistantRequest)
	webhooks.Post("/musicgen/track", controllers.HandleMusicgenTrackCallback)
	webhooks.Post("/musicgen/video", controllers.HandleMusicgenVideoCallback)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
