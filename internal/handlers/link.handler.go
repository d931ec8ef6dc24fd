package handlers

import (
	"errors"
	"server/internal/app"
	linkController "server/internal/controllers/links"
	"server/internal/logger"
	. "server/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LinkHandler serves the provider-facing completion URL: validation on
// load, consumption on submit.
type LinkHandler struct {
	Handler
	controller linkController.LinkController
}

func NewLinkHandler(app app.App, router fiber.Router) *LinkHandler {
	log := logger.New("handlers").File("link_handler")
	return &LinkHandler{
		controller: *app.LinkController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *LinkHandler) Register() {
	complete := h.router.Group("/complete")
	complete.Get("/:token", h.validateLink)
	complete.Post("/:token", h.consumeLink)
}

func linkFailureResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, linkController.ErrLinkNotFound):
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "completion link not found"})
	case errors.Is(err, linkController.ErrLinkExpired):
		return c.Status(fiber.StatusGone).
			JSON(fiber.Map{"message": "completion link expired, request a new one"})
	case errors.Is(err, linkController.ErrLinkAlreadyUsed):
		return c.Status(fiber.StatusGone).
			JSON(fiber.Map{"message": "completion link already used"})
	}
	return c.Status(fiber.StatusInternalServerError).
		JSON(fiber.Map{"message": "failed to process completion link"})
}

func (h *LinkHandler) validateLink(c *fiber.Ctx) error {
	log := h.log.Function("validateLink")

	link, err := h.controller.Validate(c.Context(), c.Params("token"))
	if err != nil {
		if !errors.Is(err, linkController.ErrLinkNotFound) &&
			!errors.Is(err, linkController.ErrLinkExpired) &&
			!errors.Is(err, linkController.ErrLinkAlreadyUsed) {
			log.Er("failed to validate completion link", err)
		}
		return linkFailureResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message":       "success",
		"applicationId": link.ApplicationID,
		"missingFields": link.MissingFields,
		"expiresAt":     link.ExpiresAt,
	})
}

func (h *LinkHandler) consumeLink(c *fiber.Ctx) error {
	log := h.log.Function("consumeLink")

	var request ConsumeLinkRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse completion submission", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse completion submission"})
	}

	link, missing, err := h.controller.Consume(c.Context(), c.Params("token"), request.Fields)
	if err != nil {
		if errors.Is(err, linkController.ErrIncompleteSubmission) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message":       "all missing fields must be provided",
				"missingFields": missing,
			})
		}
		log.Er("failed to consume completion link", err)
		return linkFailureResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message":       "success",
		"applicationId": link.ApplicationID,
		"usedAt":        link.UsedAt,
	})
}
