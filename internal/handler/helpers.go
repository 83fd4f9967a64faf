package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/middleware"
	"github.com/noah-isme/suitetest-api/internal/service"
	"github.com/noah-isme/suitetest-api/internal/utils"
)

const unexpectedErrorMessage = "An unexpected error occurred"

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	identity, _ := middleware.CurrentIdentity(c)
	return identity.UserID
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	identity, _ := middleware.CurrentIdentity(c)
	return service.Actor{ID: identity.UserID, Role: identity.Role}
}

func requestContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if correlation := middleware.GetCorrelationID(c); correlation != "" {
		logger = base.With().Str("correlation_id", correlation).Logger()
	}
	return &logger
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var serviceErr *service.Error
	if errors.As(err, &serviceErr) {
		switch serviceErr.Kind {
		case service.KindValidation:
			return utils.SendError(c, fiber.StatusBadRequest, serviceErr.Message)
		case service.KindForbidden:
			return utils.SendError(c, fiber.StatusForbidden, serviceErr.Message)
		case service.KindNotFound:
			return utils.SendError(c, fiber.StatusNotFound, serviceErr.Message)
		}
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, unexpectedErrorMessage)
}
