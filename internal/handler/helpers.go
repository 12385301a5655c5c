package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/internal/service"
	"github.com/emldov7/evMonde--sub000/pkg/middleware"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// currentUser extracts the authenticated user's numeric ID and role from
// the request context. It writes the 401 itself on failure.
func currentUser(c *gin.Context) (int64, string, bool) {
	raw, ok := middleware.GetUserID(c)
	if !ok || raw == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return 0, "", false
	}
	id, err := service.ParseID(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Invalid user ID in token"))
		return 0, "", false
	}
	role, _ := middleware.GetRole(c)
	return id, role, true
}

// pathID parses a numeric path parameter. It writes the 400 itself on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid "+name))
		return 0, false
	}
	return id, true
}

// respondError maps a code to its HTTP status and writes the error body
func respondError(c *gin.Context, code, message string) {
	c.JSON(response.GetHTTPStatus(code), response.Error(code, message))
}
