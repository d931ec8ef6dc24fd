package handlers

import (
	"errors"
	"server/internal/app"
	providerController "server/internal/controllers/providers"
	"server/internal/logger"
	. "server/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProviderHandler struct {
	Handler
	controller providerController.ProviderController
}

func NewProviderHandler(app app.App, router fiber.Router) *ProviderHandler {
	log := logger.New("handlers").File("provider_handler")
	return &ProviderHandler{
		controller: *app.ProviderController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ProviderHandler) Register() {
	providers := h.router.Group("/providers", h.middleware.AdminOnly())
	providers.Post("/provision", h.provision)
}

func (h *ProviderHandler) provision(c *fiber.Ctx) error {
	log := h.log.Function("provision")

	var request ProvisionRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse provision request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse provision request"})
	}
	if request.ApplicationID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "application_id is required"})
	}

	result, err := h.controller.Provision(c.Context(), request.ApplicationID)
	if err != nil {
		switch {
		case errors.Is(err, providerController.ErrApplicationNotFound):
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "application not found"})
		case errors.Is(err, providerController.ErrApplicationNotApproved):
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"message": "application is not approved"})
		}
		log.Er("failed to provision provider", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to provision provider"})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"already_exists": result.AlreadyExists,
		"provider_id":    result.Provider.ID,
		"provider_code":  result.Provider.Code,
	})
}
