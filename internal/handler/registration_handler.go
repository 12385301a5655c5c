package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/service"
	"github.com/emldov7/evMonde--sub000/pkg/middleware"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// RegistrationHandler handles sign-up, payment and QR check HTTP requests
type RegistrationHandler struct {
	regService    service.RegistrationService
	verifyService service.VerificationService
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(regService service.RegistrationService, verifyService service.VerificationService) *RegistrationHandler {
	return &RegistrationHandler{
		regService:    regService,
		verifyService: verifyService,
	}
}

// Register handles POST /registrations/events/:id/register - free sign-up for account holders
func (h *RegistrationHandler) Register(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.EventRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	reg, err := h.regService.Register(c.Request.Context(), eventID, userID, &req)
	if err != nil {
		h.respondRegistrationError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, response.Success(reg))
}

// RegisterGuest handles POST /registrations/events/:id/register/guest - free guest sign-up
func (h *RegistrationHandler) RegisterGuest(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.GuestRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	reg, err := h.regService.RegisterGuest(c.Request.Context(), eventID, &req)
	if err != nil {
		h.respondRegistrationError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, response.Success(reg))
}

// Checkout handles POST /registrations/events/:id/register/payment - paid sign-up
func (h *RegistrationHandler) Checkout(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.EventRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	checkout, err := h.regService.RegisterWithPayment(c.Request.Context(), eventID, userID, &req)
	if err != nil {
		h.respondRegistrationError(c, err, "Failed to start checkout")
		return
	}

	c.JSON(http.StatusCreated, response.Success(checkout))
}

// GuestCheckout handles POST /registrations/events/:id/register/guest/payment
func (h *RegistrationHandler) GuestCheckout(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.GuestRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	checkout, err := h.regService.RegisterGuestWithPayment(c.Request.Context(), eventID, &req)
	if err != nil {
		h.respondRegistrationError(c, err, "Failed to start checkout")
		return
	}

	c.JSON(http.StatusCreated, response.Success(checkout))
}

// ConfirmPayment handles POST /registrations/confirm-payment
func (h *RegistrationHandler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	reg, err := h.regService.ConfirmPayment(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Registration not found"))
			return
		}
		if errors.Is(err, service.ErrPaymentNotCompleted) {
			respondError(c, response.ErrCodePaymentFailed, "Payment not completed")
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to confirm payment"))
		return
	}

	c.JSON(http.StatusOK, response.Success(reg))
}

// MyRegistrations handles GET /registrations/my
func (h *RegistrationHandler) MyRegistrations(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	regs, err := h.regService.ListMine(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list registrations"))
		return
	}

	c.JSON(http.StatusOK, response.Success(regs))
}

// Cancel handles DELETE /registrations/:id
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.regService.Cancel(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Registration not found"))
			return
		}
		if errors.Is(err, service.ErrNotRegistrationOwner) {
			c.JSON(http.StatusForbidden, response.Forbidden("This registration is not yours"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to cancel registration"))
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Registration cancelled"}))
}

// EventRegistrations handles GET /registrations/events/:id/registrations - attendee list
func (h *RegistrationHandler) EventRegistrations(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	regs, err := h.regService.ListForEvent(c.Request.Context(), eventID, userID, role)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
			return
		}
		if errors.Is(err, service.ErrNotEventOwner) {
			c.JSON(http.StatusForbidden, response.Forbidden("You do not own this event"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list registrations"))
		return
	}

	c.JSON(http.StatusOK, response.Success(regs))
}

// VerifyQR handles POST /registrations/verify-qr - grades a scanned ticket
func (h *RegistrationHandler) VerifyQR(c *gin.Context) {
	var req dto.VerifyQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	scannedBy, _ := middleware.GetEmail(c)

	result, err := h.verifyService.VerifyQR(c.Request.Context(), &req, scannedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to verify QR code"))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

func (h *RegistrationHandler) respondRegistrationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
	case errors.Is(err, service.ErrEventEnded):
		respondError(c, response.ErrCodeEventEnded, "Event has already ended")
	case errors.Is(err, service.ErrEventClosed):
		respondError(c, response.ErrCodeEventNotPublished, "Event is not open for registration")
	case errors.Is(err, service.ErrAlreadyRegistered):
		respondError(c, response.ErrCodeAlreadyRegistered, "Already registered for this event")
	case errors.Is(err, service.ErrSoldOut):
		respondError(c, response.ErrCodeSoldOut, "No seats left")
	case errors.Is(err, service.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Ticket not found"))
	case errors.Is(err, service.ErrTicketRequired):
		c.JSON(http.StatusBadRequest, response.BadRequest("A valid ticket choice is required"))
	case errors.Is(err, service.ErrInvalidEventPayload):
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("User not found"))
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
	}
}
