package handlers

import (
	"errors"
	"server/internal/app"
	draftController "server/internal/controllers/drafts"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

type DraftHandler struct {
	Handler
	controller draftController.DraftController
}

func NewDraftHandler(app app.App, router fiber.Router) *DraftHandler {
	log := logger.New("handlers").File("draft_handler")
	return &DraftHandler{
		controller: *app.DraftController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DraftHandler) Register() {
	drafts := h.router.Group("/drafts")
	drafts.Post("/", h.saveDraft)
	drafts.Get("/", h.listSummaries)
	drafts.Get("/usage", h.usage)
	drafts.Get("/:id", h.getDraft)
	drafts.Delete("/:id", h.deleteDraft)
	drafts.Delete("/", h.clearAll)
}

func (h *DraftHandler) saveDraft(c *fiber.Ctx) error {
	log := h.log.Function("saveDraft")

	var request SaveDraftRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse draft request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse draft request"})
	}

	summary, dropped, err := h.controller.SaveDraft(c.Context(), &request)
	if err != nil {
		if errors.Is(err, repositories.ErrQuotaExceeded) {
			return c.Status(fiber.StatusInsufficientStorage).
				JSON(fiber.Map{"message": "storage quota exceeded"})
		}
		if errors.Is(err, draftController.ErrInvalidDraft) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "invalid draft payload"})
		}
		log.Er("failed to save draft", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to save draft"})
	}

	response := fiber.Map{"message": "success", "summary": summary}
	if len(dropped) > 0 {
		response["droppedFields"] = dropped
	}
	return c.JSON(response)
}

func (h *DraftHandler) getDraft(c *fiber.Ctx) error {
	log := h.log.Function("getDraft")

	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "draft ID is required"})
	}

	draft, err := h.controller.GetDraft(c.Context(), id)
	if err != nil {
		log.Er("failed to get draft", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to get draft"})
	}
	if draft == nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "draft not found"})
	}

	return c.JSON(fiber.Map{"message": "success", "draft": draft})
}

func (h *DraftHandler) listSummaries(c *fiber.Ctx) error {
	log := h.log.Function("listSummaries")

	summaries, err := h.controller.ListSummaries(c.Context())
	if err != nil {
		log.Er("failed to list draft summaries", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to list drafts"})
	}

	return c.JSON(fiber.Map{"message": "success", "drafts": summaries})
}

func (h *DraftHandler) usage(c *fiber.Ctx) error {
	log := h.log.Function("usage")

	usage, err := h.controller.Usage(c.Context())
	if err != nil {
		log.Er("failed to compute draft usage", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to compute usage"})
	}

	return c.JSON(fiber.Map{"message": "success", "usage": usage})
}

func (h *DraftHandler) deleteDraft(c *fiber.Ctx) error {
	log := h.log.Function("deleteDraft")

	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "draft ID is required"})
	}

	if err := h.controller.DeleteDraft(c.Context(), id); err != nil {
		log.Er("failed to delete draft", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to delete draft"})
	}

	return c.JSON(fiber.Map{"message": "success"})
}

func (h *DraftHandler) clearAll(c *fiber.Ctx) error {
	log := h.log.Function("clearAll")

	if err := h.controller.ClearAll(c.Context()); err != nil {
		log.Er("failed to clear drafts", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "failed to clear drafts"})
	}

	return c.JSON(fiber.Map{"message": "success"})
}
