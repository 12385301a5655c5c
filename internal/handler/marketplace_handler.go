package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/service"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// MarketplaceHandler handles public browsing and organizer finance requests
type MarketplaceHandler struct {
	marketService service.MarketplaceService
}

// NewMarketplaceHandler creates a new MarketplaceHandler
func NewMarketplaceHandler(marketService service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{
		marketService: marketService,
	}
}

// ListEvents handles GET /marketplace/events - public catalogue of published events
func (h *MarketplaceHandler) ListEvents(c *gin.Context) {
	var q dto.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	q.SetDefaults()

	events, total, err := h.marketService.ListPublicEvents(c.Request.Context(), &q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list events"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(events, q.Page, q.Limit, int64(total)))
}

// GetEvent handles GET /marketplace/events/:id - public event detail
func (h *MarketplaceHandler) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.marketService.GetPublicEvent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to get event"))
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// ListCategories handles GET /marketplace/categories
func (h *MarketplaceHandler) ListCategories(c *gin.Context) {
	categories, err := h.marketService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list categories"))
		return
	}

	c.JSON(http.StatusOK, response.Success(categories))
}

// ListTags handles GET /marketplace/tags
func (h *MarketplaceHandler) ListTags(c *gin.Context) {
	tags, err := h.marketService.ListTags(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list tags"))
		return
	}

	c.JSON(http.StatusOK, response.Success(tags))
}

// Balance handles GET /marketplace/my-balance - the caller's earnings summary
func (h *MarketplaceHandler) Balance(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	balance, err := h.marketService.MyBalance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to get balance"))
		return
	}

	c.JSON(http.StatusOK, response.Success(balance))
}

// RequestPayout handles POST /marketplace/payouts/request - opens a withdrawal request
func (h *MarketplaceHandler) RequestPayout(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.PayoutRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	payout, err := h.marketService.RequestPayout(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientBalance) {
			respondError(c, response.ErrCodeInsufficientBalance, "Requested amount exceeds available balance")
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to request payout"))
		return
	}

	c.JSON(http.StatusCreated, response.Success(payout))
}

// MyPayouts handles GET /marketplace/my-payouts - the caller's payout history
func (h *MarketplaceHandler) MyPayouts(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	payouts, err := h.marketService.MyPayouts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list payouts"))
		return
	}

	c.JSON(http.StatusOK, response.Success(payouts))
}

// ListPayouts handles GET /marketplace/payouts - the admin payout queue
func (h *MarketplaceHandler) ListPayouts(c *gin.Context) {
	var q dto.PayoutListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	q.SetDefaults()

	payouts, total, err := h.marketService.ListPayouts(c.Request.Context(), &q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to list payouts"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(payouts, q.Page, q.Limit, int64(total)))
}

// ProcessPayout handles PUT /marketplace/payouts/:id - status transition
func (h *MarketplaceHandler) ProcessPayout(c *gin.Context) {
	adminID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ProcessPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	payout, err := h.marketService.ProcessPayout(c.Request.Context(), id, adminID, &req)
	if err != nil {
		if errors.Is(err, service.ErrPayoutNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Payout not found"))
			return
		}
		if errors.Is(err, service.ErrInvalidTransition) {
			c.JSON(http.StatusBadRequest, response.BadRequest("Invalid payout status transition"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to process payout"))
		return
	}

	c.JSON(http.StatusOK, response.Success(payout))
}

// CommissionSettings handles GET /marketplace/commission/settings
func (h *MarketplaceHandler) CommissionSettings(c *gin.Context) {
	settings, err := h.marketService.CommissionSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to get commission settings"))
		return
	}

	c.JSON(http.StatusOK, response.Success(settings))
}

// UpdateCommissionSettings handles PUT /marketplace/commission/settings
func (h *MarketplaceHandler) UpdateCommissionSettings(c *gin.Context) {
	var req dto.UpdateCommissionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	settings, err := h.marketService.UpdateCommissionSettings(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to update commission settings"))
		return
	}

	c.JSON(http.StatusOK, response.Success(settings))
}
