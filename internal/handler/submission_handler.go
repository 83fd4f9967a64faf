package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/dto"
	"github.com/noah-isme/suitetest-api/internal/service"
	"github.com/noah-isme/suitetest-api/internal/utils"
)

// SubmissionHandler accepts final answers and returns the graded outcome.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the submit route. limit may be nil.
func (h *SubmissionHandler) Register(router fiber.Router, limit fiber.Handler) {
	if limit != nil {
		router.Post("/:id/submit", limit, h.submit)
		return
	}
	router.Post("/:id/submit", h.submit)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	submission, err := h.service.Submit(requestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("test_id", id).
		Uint("candidate_id", userIDFromContext(c)).
		Int("score", submission.Score).
		Msg("test submitted")

	return utils.SendSuccess(c, fiber.StatusCreated, "Test submitted successfully", fiber.Map{"submission": submission})
}
