package handlers

import (
	"errors"
	"server/internal/app"
	applicationController "server/internal/controllers/applications"
	linkController "server/internal/controllers/links"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ApplicationHandler struct {
	Handler
	controller     applicationController.ApplicationController
	linkController linkController.LinkController
}

func NewApplicationHandler(app app.App, router fiber.Router) *ApplicationHandler {
	log := logger.New("handlers").File("application_handler")
	return &ApplicationHandler{
		controller:     *app.ApplicationController,
		linkController: *app.LinkController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ApplicationHandler) Register() {
	applications := h.router.Group("/applications")
	applications.Post("/", h.submitApplication)

	admin := applications.Group("/", h.middleware.AdminOnly())
	admin.Get("/:id", h.getApplication)
	admin.Put("/:id/status", h.updateStatus)
	admin.Post("/:id/completion-links", h.issueCompletionLink)
}

func (h *ApplicationHandler) submitApplication(c *fiber.Ctx) error {
	log := h.log.Function("submitApplication")

	var request SubmitApplicationRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse application submission", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse application submission"})
	}

	application, err := h.controller.Submit(c.Context(), &request)
	if err != nil {
		if errors.Is(err, applicationController.ErrInvalidSubmission) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "first name, last name, and email are required"})
		}
		if errors.Is(err, services.ErrGenerationTimeout) {
			return c.Status(fiber.StatusGatewayTimeout).
				JSON(fiber.Map{"message": "document generation timed out, please resubmit"})
		}
		log.Er("failed to submit application", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to submit application"})
	}

	return c.JSON(fiber.Map{"message": "success", "application": application})
}

func (h *ApplicationHandler) getApplication(c *fiber.Ctx) error {
	log := h.log.Function("getApplication")

	application, err := h.controller.GetApplication(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, applicationController.ErrApplicationNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "application not found"})
		}
		log.Er("failed to get application", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to get application"})
	}

	return c.JSON(fiber.Map{"message": "success", "application": application})
}

func (h *ApplicationHandler) updateStatus(c *fiber.Ctx) error {
	log := h.log.Function("updateStatus")

	var request UpdateStatusRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse status update", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse status update"})
	}

	result, err := h.controller.UpdateStatus(c.Context(), c.Params("id"), request.Status)
	if err != nil {
		if errors.Is(err, applicationController.ErrApplicationNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "application not found"})
		}
		if errors.Is(err, applicationController.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "invalid status value"})
		}
		log.Er("failed to update application status", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to update application status"})
	}

	response := fiber.Map{"message": "success", "application": result.Application}
	if result.Provision != nil {
		response["provision"] = result.Provision
	}
	return c.JSON(response)
}

func (h *ApplicationHandler) issueCompletionLink(c *fiber.Ctx) error {
	log := h.log.Function("issueCompletionLink")

	var request IssueLinkRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse completion link request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse completion link request"})
	}

	issuedBy, _ := c.Locals("adminUser").(string)
	link, err := h.linkController.Issue(
		c.Context(),
		c.Params("id"),
		request.ProviderID,
		request.ProviderEmail,
		issuedBy,
		request.MissingFields,
	)
	if err != nil {
		switch {
		case errors.Is(err, linkController.ErrInvalidFieldSet):
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "missing fields must not be empty"})
		case errors.Is(err, linkController.ErrActiveLinkExists):
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"message": "an active completion link already exists for this application"})
		case errors.Is(err, repositories.ErrApplicationNotFound):
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "application not found"})
		}
		log.Er("failed to issue completion link", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to issue completion link"})
	}

	return c.JSON(fiber.Map{"message": "success", "link": link})
}
