package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/service"
	"github.com/noah-isme/suitetest-api/internal/utils"
)

// DepartmentHandler serves department management endpoints.
type DepartmentHandler struct {
	service service.DepartmentService
	logger  zerolog.Logger
}

// NewDepartmentHandler constructs the handler.
func NewDepartmentHandler(service service.DepartmentService, logger zerolog.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		service: service,
		logger:  logger.With().Str("component", "department_handler").Logger(),
	}
}

// Register wires department routes. adminOnly guards mutations.
func (h *DepartmentHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", adminOnly, h.create)
	router.Put("/:id", adminOnly, h.update)
	router.Delete("/:id", adminOnly, h.delete)
}

func (h *DepartmentHandler) list(c *fiber.Ctx) error {
	departments, err := h.service.List(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"departments": departments})
}

func (h *DepartmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	department, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"department": department})
}

func (h *DepartmentHandler) create(c *fiber.Ctx) error {
	var payload dto.DepartmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	department, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusCreated, "Department created successfully", fiber.Map{"department": department})
}

func (h *DepartmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DepartmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	department, err := h.service.Update(requestContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "Department updated successfully", fiber.Map{"department": department})
}

func (h *DepartmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(requestContext(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "Department deleted successfully. Users and tests have been unassigned.", nil)
}
