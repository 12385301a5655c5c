package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/service"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// SuperadminHandler handles platform admin console HTTP requests
type SuperadminHandler struct {
	adminService service.SuperadminService
}

// NewSuperadminHandler creates a new SuperadminHandler
func NewSuperadminHandler(adminService service.SuperadminService) *SuperadminHandler {
	return &SuperadminHandler{
		adminService: adminService,
	}
}

// ListUsers handles GET /superadmin/users
func (h *SuperadminHandler) ListUsers(c *gin.Context) {
	var q dto.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	q.SetDefaults()

	users, total, err := h.adminService.ListUsers(c.Request.Context(), &q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list users"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(users, q.Page, q.Limit, int64(total)))
}

// GetUser handles GET /superadmin/users/:id
func (h *SuperadminHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.adminService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondUserError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.ToUserResponse(user)))
}

// SuspendUser handles POST /superadmin/users/:id/suspend
func (h *SuperadminHandler) SuspendUser(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SuspendUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	user, err := h.adminService.SuspendUser(c.Request.Context(), id, adminID, &req)
	if err != nil {
		h.respondUserError(c, err, "Failed to suspend user")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.ToUserResponse(user)))
}

// UnsuspendUser handles POST /superadmin/users/:id/unsuspend
func (h *SuperadminHandler) UnsuspendUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.adminService.UnsuspendUser(c.Request.Context(), id)
	if err != nil {
		h.respondUserError(c, err, "Failed to unsuspend user")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.ToUserResponse(user)))
}

// DeleteUser handles DELETE /superadmin/users/:id
func (h *SuperadminHandler) DeleteUser(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), id, adminID); err != nil {
		h.respondUserError(c, err, "Failed to delete user")
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "User deleted successfully"}))
}

// PromoteUser handles POST /superadmin/users/:id/promote
func (h *SuperadminHandler) PromoteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.PromoteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	user, err := h.adminService.PromoteUser(c.Request.Context(), id, &req)
	if err != nil {
		h.respondUserError(c, err, "Failed to change role")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.ToUserResponse(user)))
}

// ListEvents handles GET /superadmin/events
func (h *SuperadminHandler) ListEvents(c *gin.Context) {
	var q dto.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	q.SetDefaults()

	events, total, err := h.adminService.ListEvents(c.Request.Context(), &q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list events"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(events, q.Page, q.Limit, int64(total)))
}

// FeatureEvent handles POST /superadmin/events/:id/feature
func (h *SuperadminHandler) FeatureEvent(c *gin.Context) {
	h.setFeatured(c, true)
}

// UnfeatureEvent handles POST /superadmin/events/:id/unfeature
func (h *SuperadminHandler) UnfeatureEvent(c *gin.Context) {
	h.setFeatured(c, false)
}

func (h *SuperadminHandler) setFeatured(c *gin.Context, featured bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.adminService.FeatureEvent(c.Request.Context(), id, featured)
	if err != nil {
		h.respondEventError(c, err, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// FlagEvent handles POST /superadmin/events/:id/flag
func (h *SuperadminHandler) FlagEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.FlagEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	event, err := h.adminService.FlagEvent(c.Request.Context(), id, &req)
	if err != nil {
		h.respondEventError(c, err, "Failed to flag event")
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// UnflagEvent handles POST /superadmin/events/:id/unflag
func (h *SuperadminHandler) UnflagEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.adminService.UnflagEvent(c.Request.Context(), id)
	if err != nil {
		h.respondEventError(c, err, "Failed to unflag event")
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// SetAdminNotes handles PUT /superadmin/events/:id/notes
func (h *SuperadminHandler) SetAdminNotes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AdminNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	event, err := h.adminService.SetAdminNotes(c.Request.Context(), id, &req)
	if err != nil {
		h.respondEventError(c, err, "Failed to update notes")
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// DeleteEvent handles DELETE /superadmin/events/:id
func (h *SuperadminHandler) DeleteEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteEvent(c.Request.Context(), id); err != nil {
		h.respondEventError(c, err, "Failed to delete event")
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Event deleted successfully"}))
}

// Stats handles GET /superadmin/stats - the dashboard counters
func (h *SuperadminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.PlatformStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to get stats"))
		return
	}

	c.JSON(http.StatusOK, response.Success(stats))
}

// TopOrganizers handles GET /superadmin/stats/top-organizers
func (h *SuperadminHandler) TopOrganizers(c *gin.Context) {
	organizers, err := h.adminService.TopOrganizers(c.Request.Context(), queryLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to rank organizers"))
		return
	}

	c.JSON(http.StatusOK, response.Success(organizers))
}

// TopEvents handles GET /superadmin/stats/top-events
func (h *SuperadminHandler) TopEvents(c *gin.Context) {
	events, err := h.adminService.TopEvents(c.Request.Context(), queryLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to rank events"))
		return
	}

	c.JSON(http.StatusOK, response.Success(events))
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		return 10
	}
	return limit
}

func (h *SuperadminHandler) respondUserError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("User not found"))
	case errors.Is(err, service.ErrCannotTargetAdmin):
		c.JSON(http.StatusForbidden, response.Forbidden("Admin accounts cannot be targeted"))
	case errors.Is(err, service.ErrSelfTarget):
		c.JSON(http.StatusForbidden, response.Forbidden("You cannot target your own account"))
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
	}
}

func (h *SuperadminHandler) respondEventError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, service.ErrEventNotFound) {
		c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
		return
	}
	c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
}
