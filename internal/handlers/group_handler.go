package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/smurfolan/likkle-backend/internal/cache"
	"github.com/smurfolan/likkle-backend/internal/httpx"
	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/service"
	"github.com/smurfolan/likkle-backend/internal/validation"
)

type GroupHandler struct {
	groupService        *service.GroupService
	areaService         *service.AreaService
	subscriptionService *service.SubscriptionService
	presenceCache       *cache.PresenceCache
}

func NewGroupHandler(
	groupService *service.GroupService,
	areaService *service.AreaService,
	subscriptionService *service.SubscriptionService,
	presenceCache *cache.PresenceCache,
) *GroupHandler {
	return &GroupHandler{
		groupService:        groupService,
		areaService:         areaService,
		subscriptionService: subscriptionService,
		presenceCache:       presenceCache,
	}
}

type createGroupRequest struct {
	Name      string `json:"name"`
	TagIDs    []uint `json:"tag_ids"`
	IsPrivate bool   `json:"is_private"`

	// Either an existing area...
	AreaID uint `json:"area_id"`

	// ...or the shape of a new one.
	Latitude  *float64          `json:"latitude"`
	Longitude *float64          `json:"longitude"`
	Radius    models.AreaRadius `json:"radius"`
}

// CreateGroup creates a group in an existing area (area_id set) or together
// with a brand-new area (latitude/longitude/radius set).
func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if !validation.ValidateGroupName(req.Name) {
		return httpx.BadRequest(c, "invalid_group_name", "Group name is required and must be at most 100 characters")
	}

	if req.AreaID != 0 {
		group, err := h.groupService.CreateGroupInExistingArea(userID, req.Name, req.TagIDs, req.IsPrivate, req.AreaID)
		if err != nil {
			return httpx.DomainError(c, err, "create_group_failed")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"group": group.ToResponse(),
		})
	}

	if req.Latitude == nil || req.Longitude == nil {
		return httpx.BadRequest(c, "missing_area", "area_id or latitude/longitude/radius is required")
	}
	if !validation.ValidateCoordinates(*req.Latitude, *req.Longitude) {
		return httpx.BadRequest(c, "invalid_coordinates", "Invalid coordinates")
	}
	if !models.ValidRadius(req.Radius) {
		return httpx.BadRequest(c, "invalid_radius", "Radius must be one of 50, 150, 300 or 500 meters")
	}

	address := h.areaService.ResolveAddress(c.Context(), *req.Latitude, *req.Longitude)

	group, err := h.groupService.CreateGroupInNewArea(
		userID, req.Name, req.TagIDs, req.IsPrivate,
		*req.Latitude, *req.Longitude, req.Radius, address,
	)
	if err != nil {
		return httpx.DomainError(c, err, "create_group_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"group": group.ToResponse(),
	})
}

type attachAreaRequest struct {
	AreaID uint `json:"area_id"`
}

// AttachArea stretches a group over one more existing area.
func (h *GroupHandler) AttachArea(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	var req attachAreaRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.AreaID == 0 {
		return httpx.BadRequest(c, "missing_area_id", "area_id is required")
	}

	group, err := h.groupService.AttachGroupToArea(uint(groupID), req.AreaID)
	if err != nil {
		return httpx.DomainError(c, err, "attach_area_failed")
	}

	return c.JSON(fiber.Map{
		"group": group.ToResponse(),
	})
}

// GetGroup returns one group by id
func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	group, err := h.groupService.GetGroup(uint(groupID))
	if err != nil {
		return httpx.DomainError(c, err, "get_group_failed")
	}

	return c.JSON(fiber.Map{
		"group": group.ToResponse(),
	})
}

// GetAllGroups returns every group, active and dormant
func (h *GroupHandler) GetAllGroups(c *fiber.Ctx) error {
	groups, err := h.groupService.GetAllGroups()
	if err != nil {
		return httpx.Internal(c, "get_groups_failed")
	}

	responses := make([]models.GroupResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, groups[i].ToResponse())
	}

	return c.JSON(fiber.Map{
		"groups": responses,
	})
}

// GetMyGroups returns the authenticated user's current memberships
func (h *GroupHandler) GetMyGroups(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groups, err := h.groupService.GetUserGroups(userID)
	if err != nil {
		return httpx.Internal(c, "get_groups_failed")
	}

	responses := make([]models.GroupResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, groups[i].ToResponse())
	}

	return c.JSON(fiber.Map{
		"groups": responses,
	})
}

type relateGroupsRequest struct {
	GroupIDs []uint `json:"group_ids"`

	// Coordinate the requested set is judged against. Without one the
	// user's last cached location is used.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// RelateGroups replaces the authenticated user's membership set with exactly
// the posted group ids, limited to the user's spatial reach: unreachable
// requested groups are ignored and out-of-reach memberships stay untouched.
func (h *GroupHandler) RelateGroups(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req relateGroupsRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	var lat, lng float64
	if req.Latitude != nil && req.Longitude != nil {
		lat, lng = *req.Latitude, *req.Longitude
	} else {
		cachedLat, cachedLng, ok := h.presenceCache.GetLastLocation(userID)
		if !ok {
			return httpx.BadRequest(c, "missing_coordinates", "No coordinates given and no recent location known")
		}
		lat, lng = cachedLat, cachedLng
	}
	if !validation.ValidateCoordinates(lat, lng) {
		return httpx.BadRequest(c, "invalid_coordinates", "Invalid coordinates")
	}

	result, err := h.subscriptionService.RelateUserToGroups(userID, req.GroupIDs, lat, lng)
	if err != nil {
		return httpx.DomainError(c, err, "relate_groups_failed")
	}

	return c.JSON(fiber.Map{
		"result": result,
	})
}

// GetGroupMembers returns a group's current members. Private groups only
// show their member list to members.
func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	group, err := h.groupService.GetGroup(uint(groupID))
	if err != nil {
		return httpx.DomainError(c, err, "get_members_failed")
	}
	if group.IsPrivate {
		member, err := h.groupService.IsMember(uint(groupID), userID)
		if err != nil {
			return httpx.Internal(c, "get_members_failed")
		}
		if !member {
			return httpx.Forbidden(c, "not_a_member", "Only members can list a private group's members")
		}
	}

	members, err := h.groupService.GetGroupMembers(uint(groupID))
	if err != nil {
		return httpx.DomainError(c, err, "get_members_failed")
	}

	type memberResponse struct {
		models.UserResponse
		IsOnline bool `json:"is_online"`
	}
	responses := make([]memberResponse, 0, len(members))
	for i := range members {
		responses = append(responses, memberResponse{
			UserResponse: members[i].ToResponse(),
			IsOnline:     h.presenceCache.IsUserOnline(members[i].ID),
		})
	}

	return c.JSON(fiber.Map{
		"members": responses,
	})
}
