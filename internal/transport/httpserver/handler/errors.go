package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/transport/httpserver/dto"
)

// writeError maps a service error to its HTTP status. NotFound is checked
// before SourceUnavailable because a registry 404 is wrapped in a SourceError.
func writeError(c *fiber.Ctx, logger *zap.Logger, op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.Error(err))

	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_QUERY",
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "content not found",
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, domain.ErrSourceUnavailable):
		logger.Warn(op+" failed, source unavailable", fields...)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "content source unavailable",
			Code:  "SOURCE_UNAVAILABLE",
		})
	default:
		logger.Error(op+" failed", fields...)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: op + " failed",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func invalidParams(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: "invalid query parameters",
		Code:  "INVALID_PARAMS",
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_ERROR",
		Details: err,
	})
}
