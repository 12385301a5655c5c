package dto

import (
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
)

// TicketInput is one ticket tier in an event payload
type TicketInput struct {
	ID                *int64  `json:"id"`
	Name              string  `json:"name" binding:"required,min=1,max=100"`
	Description       string  `json:"description" binding:"omitempty,max=500"`
	Price             float64 `json:"price" binding:"gte=0"`
	Currency          string  `json:"currency" binding:"omitempty,len=3"`
	QuantityAvailable int     `json:"quantity_available" binding:"required,gt=0"`
	IsActive          *bool   `json:"is_active"`
}

// CreateEventRequest is the event payload produced by the creation wizard
type CreateEventRequest struct {
	Title           string    `json:"title" binding:"required,min=3,max=200"`
	Description     string    `json:"description" binding:"omitempty,max=500"`
	FullDescription string    `json:"full_description" binding:"omitempty"`
	EventType       string    `json:"event_type" binding:"required,oneof=conference workshop seminar concert exhibition sports other"`
	EventFormat     string    `json:"event_format" binding:"required,oneof=physical virtual hybrid"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`

	Location    string `json:"location" binding:"omitempty,max=300"`
	Address     string `json:"address" binding:"omitempty,max=500"`
	City        string `json:"city" binding:"omitempty,max=100"`
	CountryCode string `json:"country_code" binding:"omitempty,len=2"`

	VirtualPlatform        string `json:"virtual_platform" binding:"omitempty,oneof=zoom google_meet microsoft_teams webex other"`
	VirtualMeetingURL      string `json:"virtual_meeting_url" binding:"omitempty,url,max=500"`
	VirtualMeetingID       string `json:"virtual_meeting_id" binding:"omitempty,max=100"`
	VirtualMeetingPassword string `json:"virtual_meeting_password" binding:"omitempty,max=100"`
	VirtualInstructions    string `json:"virtual_instructions" binding:"omitempty"`

	Capacity   int     `json:"capacity" binding:"omitempty,gt=0"`
	IsFree     bool    `json:"is_free"`
	Currency   string  `json:"currency" binding:"omitempty,len=3"`
	ImageURL   string  `json:"image_url" binding:"omitempty,max=500"`
	CategoryID *int64  `json:"category_id"`
	TagIDs     []int64 `json:"tag_ids"`

	Tickets []TicketInput `json:"tickets" binding:"omitempty,dive"`
}

// Validate applies the cross-field rules the format and pricing of an
// event must satisfy. Binding tags cannot express these.
func (r *CreateEventRequest) Validate() (bool, string) {
	if !r.EndDate.After(r.StartDate) {
		return false, "End date must be after start date"
	}

	if r.EventFormat == domain.EventFormatPhysical || r.EventFormat == domain.EventFormatHybrid {
		if r.Location == "" {
			return false, "Location is required for physical and hybrid events"
		}
		if r.City == "" {
			return false, "City is required for physical and hybrid events"
		}
		if r.CountryCode == "" {
			return false, "Country code is required for physical and hybrid events"
		}
	}

	if r.EventFormat == domain.EventFormatVirtual || r.EventFormat == domain.EventFormatHybrid {
		if r.VirtualPlatform == "" {
			return false, "Virtual platform is required for virtual and hybrid events"
		}
		if r.VirtualMeetingURL == "" {
			return false, "Virtual meeting URL is required for virtual and hybrid events"
		}
	}

	if len(r.Tickets) == 0 && r.Capacity <= 0 {
		return false, "Either tickets or a capacity must be provided"
	}

	hasPriced := false
	for _, t := range r.Tickets {
		if t.Price > 0 {
			hasPriced = true
			break
		}
	}
	if r.IsFree && hasPriced {
		return false, "A free event cannot have priced tickets"
	}
	if !r.IsFree && len(r.Tickets) > 0 && !hasPriced {
		return false, "A paid event must have at least one priced ticket"
	}

	return true, ""
}

// DerivedCapacity returns the capacity implied by the ticket quantities,
// falling back to the explicit capacity when no tickets are given.
func (r *CreateEventRequest) DerivedCapacity() int {
	if len(r.Tickets) == 0 {
		return r.Capacity
	}
	total := 0
	for _, t := range r.Tickets {
		total += t.QuantityAvailable
	}
	return total
}

// UpdateEventRequest mirrors the create payload; all fields required so the
// wizard re-submits a full document on edit.
type UpdateEventRequest = CreateEventRequest

// ListEventsQuery represents query parameters for event listings
type ListEventsQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=draft published cancelled completed"`
	CategoryID *int64 `form:"category_id" binding:"omitempty"`
	TagID      *int64 `form:"tag_id" binding:"omitempty"`
	City       string `form:"city" binding:"omitempty,max=100"`
	Search     string `form:"search" binding:"omitempty,max=255"`
}

// SetDefaults sets default values for query parameters
func (q *ListEventsQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

// ReminderInput is one reminder row in the bulk save payload
type ReminderInput struct {
	ID          *int64    `json:"id"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Message     string    `json:"message" binding:"omitempty"`
}

// SaveRemindersRequest is the bulk reminder save payload
type SaveRemindersRequest struct {
	Reminders []ReminderInput `json:"reminders" binding:"dive"`
}

// SaveRemindersResponse reports what the bulk save changed
type SaveRemindersResponse struct {
	Created   int                    `json:"created"`
	Updated   int                    `json:"updated"`
	Deleted   int                    `json:"deleted"`
	Reminders []domain.EventReminder `json:"reminders"`
}
