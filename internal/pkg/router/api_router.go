package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/MelodiaryApp/Melodiary/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	// Content automation: signed pipeline requests plus the human review
	// surface (browser links and Slack interactivity).
	api.Post("/blog", controllers.HandleBlogAutomation)
	api.Get("/blog/approve", controllers.HandleBlogApprove)
	api.Get("/blog/dismiss", controllers.HandleBlogDismiss)
	api.Post("/blog/slack", controllers.HandleBlogSlackAction)

	// API v1 routes
	v1 := api.Group("/v1")
	v1.Get("/subscription/:userID", controllers.HandleGetSubscription)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
