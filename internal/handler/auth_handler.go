package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/service"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// AuthHandler handles account and session HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /auth/register - creates an account
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	auth, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyUsed) {
			c.JSON(http.StatusConflict, response.Error(response.ErrCodeConflict, "Email already registered"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to register"))
		return
	}

	c.JSON(http.StatusCreated, response.Success(auth))
}

// Login handles POST /auth/login - verifies credentials
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	auth, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrIncorrectCredentials) {
			respondError(c, response.ErrCodeIncorrectCredentials, "Incorrect email or password")
			return
		}
		if errors.Is(err, service.ErrAccountSuspended) {
			respondError(c, response.ErrCodeAccountSuspended, "Account suspended")
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to log in"))
		return
	}

	c.JSON(http.StatusOK, response.Success(auth))
}

// Me handles GET /auth/me - returns the caller's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to get profile"))
		return
	}

	c.JSON(http.StatusOK, response.Success(user))
}

// UpdateProfile handles PUT /auth/profile - updates the caller's profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to update profile"))
		return
	}

	c.JSON(http.StatusOK, response.Success(user))
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrIncorrectCredentials) {
			respondError(c, response.ErrCodeIncorrectCredentials, "Current password is incorrect")
			return
		}
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to change password"))
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Password changed successfully"}))
}
