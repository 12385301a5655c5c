package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

// Step identifies one wizard screen
type Step int

// Wizard steps in order
const (
	StepBasics Step = iota
	StepSchedule
	StepTickets
	StepImages
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepBasics:
		return "basics"
	case StepSchedule:
		return "schedule"
	case StepTickets:
		return "tickets"
	case StepImages:
		return "images"
	case StepReview:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// StepError is a blocking validation failure on one wizard step. Nothing
// is sent to the server while one exists.
type StepError struct {
	Step    Step
	Message string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

// Wizard accumulates event data across the five creation steps and emits
// the server payload once every step validates.
type Wizard struct {
	// Step 1: basics
	Title           string
	Description     string
	FullDescription string
	EventType       string
	CategoryID      *int64
	TagIDs          []int64

	// Step 2: schedule and location
	StartDate              time.Time
	EndDate                time.Time
	EventFormat            string
	Location               string
	Address                string
	City                   string
	CountryCode            string
	VirtualPlatform        string
	VirtualMeetingURL      string
	VirtualMeetingID       string
	VirtualMeetingPassword string
	VirtualInstructions    string

	// Step 3: tickets and pricing
	IsFree   bool
	Currency string
	Capacity int
	Tickets  []dto.TicketInput

	// Step 4: images
	ImageURL string
}

// ComputedFree reports whether the ticket list implies a free event:
// true iff every ticket price is zero.
func (w *Wizard) ComputedFree() bool {
	for _, t := range w.Tickets {
		if t.Price > 0 {
			return false
		}
	}
	return true
}

// ValidateStep checks one step's required fields. Steps validate
// independently so the user can be told exactly where to go back to.
func (w *Wizard) ValidateStep(step Step) error {
	switch step {
	case StepBasics:
		return w.validateBasics()
	case StepSchedule:
		return w.validateSchedule()
	case StepTickets:
		return w.validateTickets()
	case StepImages:
		return nil // images are optional
	case StepReview:
		return w.Validate()
	default:
		return errors.New("unknown wizard step")
	}
}

// Validate runs every step in order and returns the first failure
func (w *Wizard) Validate() error {
	for _, step := range []Step{StepBasics, StepSchedule, StepTickets, StepImages} {
		if err := w.ValidateStep(step); err != nil {
			return err
		}
	}
	return nil
}

// Build validates the whole wizard and emits the server payload
func (w *Wizard) Build() (*dto.CreateEventRequest, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &dto.CreateEventRequest{
		Title:                  w.Title,
		Description:            w.Description,
		FullDescription:        w.FullDescription,
		EventType:              w.EventType,
		EventFormat:            w.EventFormat,
		StartDate:              w.StartDate,
		EndDate:                w.EndDate,
		Location:               w.Location,
		Address:                w.Address,
		City:                   w.City,
		CountryCode:            w.CountryCode,
		VirtualPlatform:        w.VirtualPlatform,
		VirtualMeetingURL:      w.VirtualMeetingURL,
		VirtualMeetingID:       w.VirtualMeetingID,
		VirtualMeetingPassword: w.VirtualMeetingPassword,
		VirtualInstructions:    w.VirtualInstructions,
		Capacity:               w.Capacity,
		IsFree:                 w.IsFree,
		Currency:               w.Currency,
		ImageURL:               w.ImageURL,
		CategoryID:             w.CategoryID,
		TagIDs:                 w.TagIDs,
		Tickets:                w.Tickets,
	}, nil
}

func (w *Wizard) validateBasics() error {
	if w.Title == "" {
		return &StepError{StepBasics, "title is required"}
	}
	if len(w.Title) < 3 {
		return &StepError{StepBasics, "title must be at least 3 characters"}
	}
	if w.EventType == "" {
		return &StepError{StepBasics, "event type is required"}
	}
	return nil
}

func (w *Wizard) validateSchedule() error {
	if w.StartDate.IsZero() {
		return &StepError{StepSchedule, "start date is required"}
	}
	if w.EndDate.IsZero() {
		return &StepError{StepSchedule, "end date is required"}
	}
	if !w.EndDate.After(w.StartDate) {
		return &StepError{StepSchedule, "end date must be after start date"}
	}

	switch w.EventFormat {
	case domain.EventFormatPhysical, domain.EventFormatVirtual, domain.EventFormatHybrid:
	default:
		return &StepError{StepSchedule, "event format must be physical, virtual or hybrid"}
	}

	if w.EventFormat == domain.EventFormatPhysical || w.EventFormat == domain.EventFormatHybrid {
		if w.Location == "" {
			return &StepError{StepSchedule, "location is required for physical and hybrid events"}
		}
		if w.City == "" {
			return &StepError{StepSchedule, "city is required for physical and hybrid events"}
		}
		if w.CountryCode == "" {
			return &StepError{StepSchedule, "country is required for physical and hybrid events"}
		}
	}
	if w.EventFormat == domain.EventFormatVirtual || w.EventFormat == domain.EventFormatHybrid {
		if w.VirtualPlatform == "" {
			return &StepError{StepSchedule, "virtual platform is required for virtual and hybrid events"}
		}
		if w.VirtualMeetingURL == "" {
			return &StepError{StepSchedule, "meeting URL is required for virtual and hybrid events"}
		}
	}
	return nil
}

func (w *Wizard) validateTickets() error {
	if len(w.Tickets) == 0 && w.Capacity <= 0 {
		return &StepError{StepTickets, "either tickets or a capacity is required"}
	}
	for _, t := range w.Tickets {
		if t.Name == "" {
			return &StepError{StepTickets, "every ticket needs a name"}
		}
		if t.QuantityAvailable <= 0 {
			return &StepError{StepTickets, "every ticket needs a positive quantity"}
		}
		if t.Price < 0 {
			return &StepError{StepTickets, "ticket prices cannot be negative"}
		}
	}

	// The free/paid toggle must agree with the ticket prices
	if len(w.Tickets) > 0 {
		if w.IsFree && !w.ComputedFree() {
			return &StepError{StepTickets, "a free event cannot have priced tickets"}
		}
		if !w.IsFree && w.ComputedFree() {
			return &StepError{StepTickets, "a paid event must have at least one priced ticket"}
		}
	}
	return nil
}
