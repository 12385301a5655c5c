package domain

import "time"

// Event status constants
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Event type constants
const (
	EventTypeConference = "conference"
	EventTypeWorkshop   = "workshop"
	EventTypeSeminar    = "seminar"
	EventTypeConcert    = "concert"
	EventTypeExhibition = "exhibition"
	EventTypeSports     = "sports"
	EventTypeOther      = "other"
)

// Event format constants
const (
	EventFormatPhysical = "physical"
	EventFormatVirtual  = "virtual"
	EventFormatHybrid   = "hybrid"
)

// Virtual platform constants
const (
	PlatformZoom           = "zoom"
	PlatformGoogleMeet     = "google_meet"
	PlatformMicrosoftTeams = "microsoft_teams"
	PlatformWebex          = "webex"
	PlatformOther          = "other"
)

// Event represents an event in the system
type Event struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	FullDescription  string     `json:"full_description"`
	EventType        string     `json:"event_type"`   // conference, workshop, ...
	EventFormat      string     `json:"event_format"` // physical, virtual, hybrid
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	Location         string     `json:"location"`
	Address          string     `json:"address"`
	City             string     `json:"city"`
	CountryCode      string     `json:"country_code"`
	Capacity         int        `json:"capacity"`
	AvailableSeats   int        `json:"available_seats"`
	IsFree           bool       `json:"is_free"`
	Price            float64    `json:"price"`
	Currency         string     `json:"currency"`
	ImageURL         string     `json:"image_url"`
	VirtualPlatform        string `json:"virtual_platform,omitempty"`
	VirtualMeetingURL      string `json:"virtual_meeting_url,omitempty"`
	VirtualMeetingID       string `json:"virtual_meeting_id,omitempty"`
	VirtualMeetingPassword string `json:"virtual_meeting_password,omitempty"`
	VirtualInstructions    string `json:"virtual_instructions,omitempty"`
	Status           string     `json:"status"` // draft, published, cancelled, completed
	IsPublished      bool       `json:"is_published"`
	OrganizerID      int64      `json:"organizer_id"`
	CategoryID       *int64     `json:"category_id,omitempty"`
	IsFeatured       bool       `json:"is_featured"`
	IsFlagged        bool       `json:"is_flagged"`
	FlagReason       *string    `json:"flag_reason,omitempty"`
	FlaggedAt        *time.Time `json:"flagged_at,omitempty"`
	FlaggedByAdminID *int64     `json:"flagged_by_admin_id,omitempty"`
	AdminNotes       *string    `json:"admin_notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Tickets []Ticket `json:"tickets,omitempty"`
	Tags    []Tag    `json:"tags,omitempty"`
}

// HasPhysicalComponent reports whether the event needs a venue
func (e *Event) HasPhysicalComponent() bool {
	return e.EventFormat == EventFormatPhysical || e.EventFormat == EventFormatHybrid
}

// HasVirtualComponent reports whether the event needs meeting details
func (e *Event) HasVirtualComponent() bool {
	return e.EventFormat == EventFormatVirtual || e.EventFormat == EventFormatHybrid
}

// HasEnded reports whether the event end date is in the past
func (e *Event) HasEnded(now time.Time) bool {
	return e.EndDate.Before(now)
}

// IsOpenForRegistration reports whether new registrations are accepted
func (e *Event) IsOpenForRegistration(now time.Time) bool {
	return e.Status == EventStatusPublished && !e.HasEnded(now)
}

// Ticket represents a ticket tier of an event
type Ticket struct {
	ID                int64     `json:"id"`
	EventID           int64     `json:"event_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Price             float64   `json:"price"`
	Currency          string    `json:"currency"`
	QuantityAvailable int       `json:"quantity_available"`
	QuantitySold      int       `json:"quantity_sold"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Remaining returns the number of unsold seats on this tier
func (t *Ticket) Remaining() int {
	return t.QuantityAvailable - t.QuantitySold
}

// Category groups events for browsing and commission overrides
type Category struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Slug                 string    `json:"slug"`
	Description          string    `json:"description"`
	Icon                 string    `json:"icon"`
	Color                string    `json:"color"`
	IsActive             bool      `json:"is_active"`
	DisplayOrder         int       `json:"display_order"`
	CustomCommissionRate *float64  `json:"custom_commission_rate,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Tag is a free-form label attached to events
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventReminder is a scheduled notification to an event's attendees
type EventReminder struct {
	ID          int64      `json:"id"`
	EventID     int64      `json:"event_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Message     string     `json:"message"`
	Sent        bool       `json:"sent"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
