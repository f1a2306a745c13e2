package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smurfolan/likkle-backend/internal/httpx"
	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/service"
)

type AreaHandler struct {
	areaService *service.AreaService
}

func NewAreaHandler(areaService *service.AreaService) *AreaHandler {
	return &AreaHandler{areaService: areaService}
}

// GetAllAreas returns every area, active and dormant
func (h *AreaHandler) GetAllAreas(c *fiber.Ctx) error {
	areas, err := h.areaService.GetAllAreas()
	if err != nil {
		return httpx.Internal(c, "get_areas_failed")
	}

	responses := make([]models.AreaResponse, 0, len(areas))
	for i := range areas {
		responses = append(responses, areas[i].ToResponse())
	}

	return c.JSON(fiber.Map{
		"areas": responses,
	})
}

// GetArea returns one area by id
func (h *AreaHandler) GetArea(c *fiber.Ctx) error {
	areaID, err := c.ParamsInt("id")
	if err != nil || areaID <= 0 {
		return httpx.BadRequest(c, "invalid_area_id", "Invalid area ID")
	}

	area, err := h.areaService.GetArea(uint(areaID))
	if err != nil {
		return httpx.DomainError(c, err, "get_area_failed")
	}

	return c.JSON(fiber.Map{
		"area": area.ToResponse(),
	})
}

// GetAllTags returns the fixed tag catalogue groups are labelled with
func (h *AreaHandler) GetAllTags(c *fiber.Ctx) error {
	tags, err := h.areaService.GetAllTags()
	if err != nil {
		return httpx.Internal(c, "get_tags_failed")
	}

	return c.JSON(fiber.Map{
		"tags": tags,
	})
}
