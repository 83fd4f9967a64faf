package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/service"
	"github.com/noah-isme/suitetest-api/internal/utils"
)

// TestHandler serves test authoring and browsing endpoints.
type TestHandler struct {
	service service.TestService
	logger  zerolog.Logger
}

// NewTestHandler constructs the handler.
func NewTestHandler(service service.TestService, logger zerolog.Logger) *TestHandler {
	return &TestHandler{
		service: service,
		logger:  logger.With().Str("component", "test_handler").Logger(),
	}
}

// Register wires authoring routes. Static paths are registered before /:id.
func (h *TestHandler) Register(router fiber.Router) {
	router.Get("/my-tests", h.listMine)
	router.Get("/available", h.listAvailable)
	router.Get("/questions/all", h.listQuestions)
	router.Post("/create", h.create)
	router.Get("/:id/activity", h.activity)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *TestHandler) listMine(c *fiber.Ctx) error {
	tests, err := h.service.ListMine(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"tests": tests})
}

func (h *TestHandler) listAvailable(c *fiber.Ctx) error {
	tests, err := h.service.ListAvailable(requestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"tests": tests})
}

func (h *TestHandler) listQuestions(c *fiber.Ctx) error {
	questions, err := h.service.ListQuestions(requestContext(c), actorFromContext(c), c.Query("source"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"questions": questions})
}

func (h *TestHandler) create(c *fiber.Ctx) error {
	var payload dto.TestRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	id, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusCreated, "Test created successfully", fiber.Map{"testId": id})
}

func (h *TestHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	test, err := h.service.Get(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"test": test})
}

func (h *TestHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TestRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.service.Update(requestContext(c), id, payload, actorFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "Test updated successfully", nil)
}

func (h *TestHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), id, actorFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "Test and all associated data deleted successfully", nil)
}

func (h *TestHandler) activity(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.service.Activity(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"activity": entries})
}
