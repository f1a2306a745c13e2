package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smurfolan/likkle-backend/internal/cache"
	"github.com/smurfolan/likkle-backend/internal/handlers/ws"
	"github.com/smurfolan/likkle-backend/internal/httpx"
	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/service"
	"github.com/smurfolan/likkle-backend/internal/validation"
)

// AdminHandler carries the operator-only surface: publishing app versions
// and inspecting live presence.
type AdminHandler struct {
	versionService *service.VersionService
	areaService    *service.AreaService
	presenceCache  *cache.PresenceCache
	hub            *ws.Hub
}

func NewAdminHandler(
	versionService *service.VersionService,
	areaService *service.AreaService,
	presenceCache *cache.PresenceCache,
	hub *ws.Hub,
) *AdminHandler {
	return &AdminHandler{
		versionService: versionService,
		areaService:    areaService,
		presenceCache:  presenceCache,
		hub:            hub,
	}
}

type createAreaRequest struct {
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Radius    models.AreaRadius `json:"radius"`
}

// CreateArea registers a standalone area with no groups yet
// POST /api/admin/areas
func (h *AdminHandler) CreateArea(c *fiber.Ctx) error {
	var req createAreaRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if !validation.ValidateCoordinates(req.Latitude, req.Longitude) {
		return httpx.BadRequest(c, "invalid_coordinates", "Invalid coordinates")
	}
	if !models.ValidRadius(req.Radius) {
		return httpx.BadRequest(c, "invalid_radius", "Radius must be one of 50, 150, 300 or 500 meters")
	}

	area, err := h.areaService.CreateArea(c.Context(), req.Latitude, req.Longitude, req.Radius)
	if err != nil {
		return httpx.Internal(c, "create_area_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"area": area.ToResponse(),
	})
}

// PublishVersion registers a new client build
// POST /api/admin/versions
func (h *AdminHandler) PublishVersion(c *fiber.Ctx) error {
	var version models.AppVersion
	if err := c.BodyParser(&version); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.versionService.PublishVersion(&version); err != nil {
		return httpx.BadRequest(c, "publish_version_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"version": version.ToResponse(),
	})
}

// GetPresence reports who currently holds a live notification connection.
// The hub count is local to this instance; the cache set spans instances.
// GET /api/admin/presence
func (h *AdminHandler) GetPresence(c *fiber.Ctx) error {
	online, err := h.presenceCache.GetOnlineUsers()
	if err != nil {
		return httpx.Internal(c, "presence_failed")
	}
	count, err := h.presenceCache.GetOnlineCount()
	if err != nil {
		return httpx.Internal(c, "presence_failed")
	}

	return c.JSON(fiber.Map{
		"online_user_ids":   online,
		"online_count":      count,
		"local_connections": h.hub.Count(),
	})
}
