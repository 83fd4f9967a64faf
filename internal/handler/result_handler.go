package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/service"
	"github.com/noah-isme/suitetest-api/internal/utils"
)

// ResultHandler serves result listings and answer reviews.
type ResultHandler struct {
	service service.ResultService
	logger  zerolog.Logger
}

// NewResultHandler constructs the handler.
func NewResultHandler(service service.ResultService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register wires result routes.
func (h *ResultHandler) Register(router fiber.Router) {
	router.Get("/:id/results", h.list)
	router.Get("/:id/review/:candidateId", h.review)
	router.Get("/:id/review", h.review)
}

func (h *ResultHandler) list(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.ListByTest(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{"results": results})
}

func (h *ResultHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var candidateID *uint
	if c.Params("candidateId") != "" {
		parsed, err := parseUintParam(c, "candidateId")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		candidateID = &parsed
	}

	review, err := h.service.Review(requestContext(c), id, candidateID, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fiber.StatusOK, "", fiber.Map{
		"test":      review.Test,
		"result":    review.Result,
		"questions": review.Questions,
	})
}
