package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/service"
	"github.com/noah-isme/suitetest-api/internal/utils"
)

// ProgressHandler serves the candidate side of taking a test.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register wires progress routes. saveLimit guards save-progress and may be nil.
func (h *ProgressHandler) Register(router fiber.Router, saveLimit fiber.Handler) {
	router.Get("/active-test", h.activeTest)
	router.Get("/:id/take", h.take)
	router.Get("/:id/status", h.status)
	if saveLimit != nil {
		router.Post("/:id/save-progress", saveLimit, h.saveProgress)
	} else {
		router.Post("/:id/save-progress", h.saveProgress)
	}
}

func (h *ProgressHandler) take(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	test, err := h.service.BeginOrResume(requestContext(c), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"test": test})
}

func (h *ProgressHandler) saveProgress(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SaveProgressRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	remaining, err := h.service.SaveProgress(requestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "Progress saved", fiber.Map{"time_remaining": remaining})
}

func (h *ProgressHandler) activeTest(c *fiber.Ctx) error {
	active, err := h.service.ActiveTest(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"activeTest": active})
}

func (h *ProgressHandler) status(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.service.Status(requestContext(c), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	payload := fiber.Map{"status": status.Status}
	if status.Result != nil {
		payload["result"] = status.Result
	}
	if status.StartTime != nil {
		payload["start_time"] = status.StartTime
		payload["time_remaining"] = status.TimeRemaining
		payload["saved_answers"] = status.SavedAnswers
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", payload)
}
