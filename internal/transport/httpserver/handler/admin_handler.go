package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-discovery-service/internal/app/service"
	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/transport/httpserver/dto"
	"content-discovery-service/internal/validator"
)

// Admin is the operational side of the discovery service.
// Implementations: internal/app/service.DiscoveryService
type Admin interface {
	SourceHealth(ctx context.Context) []service.SourceStatus
	Invalidate(ctx context.Context) error
	Warm(ctx context.Context, types []domain.ContentType, pageSize int) error
}

// WarmDefaults are used for a manual warm whose body leaves fields empty.
type WarmDefaults struct {
	ContentTypes []domain.ContentType
	PageSize     int
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	service   Admin
	defaults  WarmDefaults
	validator *validator.Validator
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc Admin, defaults WarmDefaults, v *validator.Validator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service:   svc,
		defaults:  defaults,
		validator: v,
		logger:    logger,
	}
}

// GetSources handles GET /api/v1/admin/sources
func (h *AdminHandler) GetSources(c *fiber.Ctx) error {
	return c.JSON(dto.FromSourceStatuses(h.service.SourceHealth(c.Context())))
}

// InvalidateCache handles DELETE /api/v1/admin/cache
func (h *AdminHandler) InvalidateCache(c *fiber.Ctx) error {
	h.logger.Info("manual cache invalidation triggered")

	if err := h.service.Invalidate(c.Context()); err != nil {
		return writeError(c, h.logger, "invalidate cache", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Warm handles POST /api/v1/admin/warm
func (h *AdminHandler) Warm(c *fiber.Ctx) error {
	var req dto.WarmRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "invalid request body",
				Code:  "INVALID_BODY",
			})
		}
	}
	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	types := req.Types(h.defaults.ContentTypes)
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = h.defaults.PageSize
	}

	h.logger.Info("manual cache warm triggered", zap.Any("content_types", types))

	start := time.Now()
	if err := h.service.Warm(c.Context(), types, pageSize); err != nil {
		return writeError(c, h.logger, "warm cache", err)
	}

	return c.JSON(dto.WarmResponse{
		ContentTypes: types,
		PageSize:     pageSize,
		Duration:     time.Since(start).String(),
	})
}
