package main

import (
	"fmt"
	"os"
	"os/signal"
	"server/internal/app"
	"server/internal/handlers"
	"server/internal/logger"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	log := logger.New("main")

	application, err := app.New()
	if err != nil {
		log.Er("failed to initialize app", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	fiberApp := fiber.New(fiber.Config{
		AppName:      "provider-portal",
		ErrorHandler: errorHandler(log),
	})
	fiberApp.Use(recover.New())

	if err := handlers.Router(fiberApp, application); err != nil {
		log.Er("failed to register routes", err)
		os.Exit(1)
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", application.Config.ServerHost, application.Config.ServerPort)
		log.Info("Starting server", "addr", addr)
		if err := fiberApp.Listen(addr); err != nil {
			log.Er("server stopped", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	if err := fiberApp.Shutdown(); err != nil {
		log.Er("failed to shut down server", err)
	}
}

func errorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		log.Er("unhandled request error", err, "path", c.Path(), "code", code)
		return c.Status(code).JSON(fiber.Map{"message": "error", "error": err.Error()})
	}
}
