package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/service"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// EventHandler handles organizer console HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// Create handles POST /events - creates a draft event
func (h *EventHandler) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEventPayload) {
			c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to create event"))
		return
	}

	c.JSON(http.StatusCreated, response.Success(event))
}

// MyEvents handles GET /events/my/events - lists the caller's events
func (h *EventHandler) MyEvents(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var q dto.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	q.SetDefaults()

	events, total, err := h.eventService.ListByOrganizer(c.Request.Context(), userID, &q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list events"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(events, q.Page, q.Limit, int64(total)))
}

// Get handles GET /events/my/events/:id - returns one owned event
func (h *EventHandler) Get(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetOwned(c.Request.Context(), id, userID, role)
	if err != nil {
		h.respondEventError(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// Update handles PUT /events/:id - updates an owned event
func (h *EventHandler) Update(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, userID, role, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEventPayload) {
			c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
			return
		}
		h.respondEventError(c, err, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// Delete handles DELETE /events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), id, userID, role); err != nil {
		h.respondEventError(c, err, "Failed to delete event")
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Event deleted successfully"}))
}

// Publish handles POST /events/:id/publish - draft to published
func (h *EventHandler) Publish(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Publish(c.Request.Context(), id, userID, role)
	if err != nil {
		if errors.Is(err, service.ErrEventNotDraft) {
			c.JSON(http.StatusBadRequest, response.BadRequest("Only draft events can be published"))
			return
		}
		if errors.Is(err, service.ErrNoActiveTicket) {
			c.JSON(http.StatusBadRequest, response.BadRequest("A paid event needs at least one active ticket"))
			return
		}
		h.respondEventError(c, err, "Failed to publish event")
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// Cancel handles POST /events/:id/cancel - published to cancelled
func (h *EventHandler) Cancel(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Cancel(c.Request.Context(), id, userID, role)
	if err != nil {
		if errors.Is(err, service.ErrEventNotPublished) {
			c.JSON(http.StatusBadRequest, response.BadRequest("Only published events can be cancelled"))
			return
		}
		h.respondEventError(c, err, "Failed to cancel event")
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// ListReminders handles GET /events/:id/reminders
func (h *EventHandler) ListReminders(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reminders, err := h.eventService.ListReminders(c.Request.Context(), id, userID, role)
	if err != nil {
		h.respondEventError(c, err, "Failed to list reminders")
		return
	}

	c.JSON(http.StatusOK, response.Success(reminders))
}

// CreateReminder handles POST /events/:id/reminders
func (h *EventHandler) CreateReminder(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in dto.ReminderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	reminder, err := h.eventService.CreateReminder(c.Request.Context(), id, userID, role, &in)
	if err != nil {
		h.respondEventError(c, err, "Failed to create reminder")
		return
	}

	c.JSON(http.StatusCreated, response.Success(reminder))
}

// UpdateReminder handles PUT /events/:id/reminders/:reminderId
func (h *EventHandler) UpdateReminder(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reminderID, ok := pathID(c, "reminderId")
	if !ok {
		return
	}

	var in dto.ReminderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	reminder, err := h.eventService.UpdateReminder(c.Request.Context(), id, reminderID, userID, role, &in)
	if err != nil {
		if errors.Is(err, service.ErrReminderNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Reminder not found"))
			return
		}
		h.respondEventError(c, err, "Failed to update reminder")
		return
	}

	c.JSON(http.StatusOK, response.Success(reminder))
}

// DeleteReminder handles DELETE /events/:id/reminders/:reminderId
func (h *EventHandler) DeleteReminder(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reminderID, ok := pathID(c, "reminderId")
	if !ok {
		return
	}

	err := h.eventService.DeleteReminder(c.Request.Context(), id, reminderID, userID, role)
	if err != nil {
		if errors.Is(err, service.ErrReminderNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Reminder not found"))
			return
		}
		h.respondEventError(c, err, "Failed to delete reminder")
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Reminder deleted successfully"}))
}

// SaveReminders handles PUT /events/:id/reminders - reconciles the full set
func (h *EventHandler) SaveReminders(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SaveRemindersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	result, err := h.eventService.SaveReminders(c.Request.Context(), id, userID, role, &req)
	if err != nil {
		if errors.Is(err, service.ErrReminderNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Reminder not found"))
			return
		}
		h.respondEventError(c, err, "Failed to save reminders")
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

func (h *EventHandler) respondEventError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
	case errors.Is(err, service.ErrNotEventOwner):
		c.JSON(http.StatusForbidden, response.Forbidden("You do not own this event"))
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
	}
}
