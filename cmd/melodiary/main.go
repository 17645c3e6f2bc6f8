package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/MelodiaryApp/Melodiary/internal/pkg/cache"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/jobqueue"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// Background workers for diary generation, lyric alignment and audio
	// archiving, plus the usage-window and stale-call sweepers.
	manager := jobqueue.GetManager()
	manager.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		manager.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024, // webhook payloads are small; 4 MiB is generous
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// ROUTER
	router.InstallRouter(app)

	return app
}
