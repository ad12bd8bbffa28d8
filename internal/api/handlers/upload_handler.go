package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"ewaste-marketplace-api-server/internal/models"
	"ewaste-marketplace-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadHandler struct {
	S3Uploader *s3.Uploader
}

// UploadImage stores a product image on S3 and returns its media pointer.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.S3Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	userID := c.GetString("user_id")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An 'image' file field is required"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG, PNG and WebP images are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	mediaID := uuid.New().String()
	objectKey := fmt.Sprintf("products/%s/%d-%s%s", userID, time.Now().Unix(), mediaID[:8], filepath.Ext(fileHeader.Filename))

	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusCreated, models.MediaPointer{
		ID:       mediaID,
		URL:      url,
		FileName: fileHeader.Filename,
		FileType: contentType,
	})
}
