package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/internal/service"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// UploadHandler handles event image upload HTTP requests
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
	}
}

// Upload handles POST /upload/image - stores an image and returns its URL
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("A file field is required"))
		return
	}

	url, err := h.uploadService.SaveImage(c.Request.Context(), userID, header)
	if err != nil {
		if errors.Is(err, service.ErrFileTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, response.BadRequest("File exceeds the size limit"))
			return
		}
		if errors.Is(err, service.ErrUnsupportedType) {
			c.JSON(http.StatusBadRequest, response.BadRequest("Only JPEG, PNG, GIF and WebP images are accepted"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to store file"))
		return
	}

	c.JSON(http.StatusCreated, response.Success(map[string]string{"url": url}))
}

// Delete handles DELETE /upload/image?file_path=... - removes one of the
// caller's images
func (h *UploadHandler) Delete(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	name := c.Query("file_path")
	if name == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("A file_path query parameter is required"))
		return
	}

	if err := h.uploadService.DeleteImage(c.Request.Context(), userID, name); err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("File not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to delete file"))
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "File deleted successfully"}))
}
