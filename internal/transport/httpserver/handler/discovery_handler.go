// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/transport/httpserver/dto"
	"content-discovery-service/internal/validator"
)

// Discovery is the read side of the discovery service.
// Implementations: internal/app/service.DiscoveryService
type Discovery interface {
	Search(ctx context.Context, q domain.Query) (*domain.QueryResult, error)
	GetDetail(ctx context.Context, id string) (*domain.ContentDetail, error)
	GetVersions(ctx context.Context, id string, filter domain.VersionFilter) ([]*domain.Version, error)
	LoaderVersions(ctx context.Context, loader, gameVersion string) ([]domain.LoaderVersion, error)
}

// DiscoveryHandler handles search and project lookups.
type DiscoveryHandler struct {
	service   Discovery
	validator *validator.Validator
	logger    *zap.Logger
}

// NewDiscoveryHandler creates a new DiscoveryHandler.
func NewDiscoveryHandler(svc Discovery, v *validator.Validator, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/v1/search
func (h *DiscoveryHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return invalidParams(c)
	}

	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	result, err := h.service.Search(c.Context(), req.ToQuery())
	if err != nil {
		return writeError(c, h.logger, "search", err)
	}

	return c.JSON(dto.FromQueryResult(result))
}

// GetProject handles GET /api/v1/projects/:id
func (h *DiscoveryHandler) GetProject(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "id is required",
			Code:  "MISSING_ID",
		})
	}

	detail, err := h.service.GetDetail(c.Context(), id)
	if err != nil {
		return writeError(c, h.logger, "get project", err, zap.String("id", id))
	}

	return c.JSON(detail)
}

// GetVersions handles GET /api/v1/projects/:id/versions
func (h *DiscoveryHandler) GetVersions(c *fiber.Ctx) error {
	id := c.Params("id")

	var req dto.VersionsRequest
	if err := c.QueryParser(&req); err != nil {
		return invalidParams(c)
	}
	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	versions, err := h.service.GetVersions(c.Context(), id, req.ToFilter())
	if err != nil {
		return writeError(c, h.logger, "get versions", err, zap.String("id", id))
	}

	return c.JSON(dto.FromVersions(id, versions))
}

// LoaderVersions handles GET /api/v1/loaders/:loader/versions
func (h *DiscoveryHandler) LoaderVersions(c *fiber.Ctx) error {
	var req dto.LoaderVersionsRequest
	if err := c.ParamsParser(&req); err != nil {
		return invalidParams(c)
	}
	if err := c.QueryParser(&req); err != nil {
		return invalidParams(c)
	}
	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	versions, err := h.service.LoaderVersions(c.Context(), req.Loader, req.GameVersion)
	if err != nil {
		return writeError(c, h.logger, "loader versions", err, zap.String("loader", req.Loader))
	}
	if versions == nil {
		versions = []domain.LoaderVersion{}
	}

	return c.JSON(dto.LoaderVersionsResponse{
		Loader:      req.Loader,
		GameVersion: req.GameVersion,
		Versions:    versions,
	})
}
