package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/smurfolan/likkle-backend/internal/cache"
	"github.com/smurfolan/likkle-backend/internal/httpx"
	"github.com/smurfolan/likkle-backend/internal/service"
	"github.com/smurfolan/likkle-backend/internal/validation"
)

type LocationHandler struct {
	subscriptionService *service.SubscriptionService
	presenceCache       *cache.PresenceCache
}

func NewLocationHandler(subscriptionService *service.SubscriptionService, presenceCache *cache.PresenceCache) *LocationHandler {
	return &LocationHandler{
		subscriptionService: subscriptionService,
		presenceCache:       presenceCache,
	}
}

type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateLocation stores the user's coordinate and reconciles their group
// memberships against it. The HTTP path mirrors the websocket location
// message for clients without a live socket.
func (h *LocationHandler) UpdateLocation(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req locationRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if !validation.ValidateCoordinates(req.Latitude, req.Longitude) {
		return httpx.BadRequest(c, "invalid_coordinates", "Invalid coordinates")
	}

	result, err := h.subscriptionService.UpdateUserLocation(userID, req.Latitude, req.Longitude)
	if err != nil {
		return httpx.DomainError(c, err, "update_location_failed")
	}

	if err := h.presenceCache.SetLastLocation(userID, req.Latitude, req.Longitude); err != nil {
		log.Printf("Failed to cache location for user %d: %v", userID, err)
	}

	return c.JSON(result)
}

// BoundaryETA answers how long a walking user could wait before the next
// location update can change anything. Without explicit coordinates the
// user's cached last location is used.
func (h *LocationHandler) BoundaryETA(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	lat := c.QueryFloat("latitude")
	lng := c.QueryFloat("longitude")
	if c.Query("latitude") == "" && c.Query("longitude") == "" {
		cachedLat, cachedLng, ok := h.presenceCache.GetLastLocation(userID)
		if !ok {
			return httpx.BadRequest(c, "missing_coordinates", "No coordinates given and no recent location known")
		}
		lat, lng = cachedLat, cachedLng
	}
	if !validation.ValidateCoordinates(lat, lng) {
		return httpx.BadRequest(c, "invalid_coordinates", "Invalid coordinates")
	}

	seconds, err := h.subscriptionService.BoundaryETA(lat, lng)
	if err != nil {
		return httpx.Internal(c, "boundary_eta_failed")
	}

	return c.JSON(fiber.Map{
		"seconds_to_boundary": seconds,
	})
}
