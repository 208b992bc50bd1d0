package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
)

// UploadHandler pushes post header images to Cloudinary and hands the
// hosted URL back for the post's image field.
type UploadHandler struct {
	CloudinaryURL string
}

// Upload handles POST /api/upload.
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.CloudinaryURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Image uploads are not configured"})
		return
	}

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to parse form data"})
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image file provided"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	cld, err := cloudinary.NewFromURL(h.CloudinaryURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Cloudinary configuration error"})
		return
	}

	result, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         "blognest/posts",
		PublicID:       requester.Hex() + "_" + time.Now().Format("20060102150405"),
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": result.SecureURL})
}
