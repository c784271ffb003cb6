package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"catering/database"
	"catering/logger"
	"catering/models"
	"catering/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxImageSize = 5 << 20
	defaultKeyPrefix    = "menu-items"
	// room for multipart boundaries and headers on top of the file itself
	multipartSlack = 1 << 20
)

// UploadLimits image upload settings
type UploadLimits struct {
	MaxBytes  int64
	KeyPrefix string
}

func (u UploadLimits) withDefaults() UploadLimits {
	if u.MaxBytes <= 0 {
		u.MaxBytes = defaultMaxImageSize
	}
	u.KeyPrefix = strings.Trim(u.KeyPrefix, "/")
	if u.KeyPrefix == "" {
		u.KeyPrefix = defaultKeyPrefix
	}
	return u
}

func (u UploadLimits) tooLarge() *APIError {
	return errBadRequest(fmt.Sprintf("Image size must be less than %dMB", u.MaxBytes>>20))
}

// UploadedImage upload-image response payload
type UploadedImage struct {
	MenuItem         UploadedMenuItem `json:"menuItem"`
	UploadedImageURL string           `json:"uploadedImageUrl"`
	Key              string           `json:"key"`
}

// UploadedMenuItem item summary after an upload
type UploadedMenuItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// UploadImage stores a new image for a menu item and replaces the old one
// @Summary Upload menu item image
// @Description Multipart field "image"; image/* only, at most 5MB. The previous image is removed.
// @Tags MenuItems
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu item ID"
// @Param image formData file true "Image file"
// @Success 200 {object} Response{data=UploadedImage}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/menu-items/{id}/upload-image [post]
func (h *MenuItemHandler) UploadImage(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		HandleError(c, err)
		return
	}

	item, err := findOwnedMenuItem(uid, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if h.store == nil {
		HandleError(c, service.ErrStorageDisabled)
		return
	}

	limit := h.upload.MaxBytes
	if c.Request.ContentLength > limit+multipartSlack {
		HandleError(c, h.upload.tooLarge())
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)

	file, err := c.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			HandleError(c, h.upload.tooLarge())
			return
		}
		BadRequest(c, "No image file provided")
		return
	}
	if !isImage(file.Header.Get("Content-Type")) {
		BadRequest(c, "Only image files are allowed")
		return
	}
	if file.Size > limit {
		HandleError(c, h.upload.tooLarge())
		return
	}

	src, err := file.Open()
	if err != nil {
		HandleError(c, err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		HandleError(c, err)
		return
	}
	if int64(len(data)) > limit {
		HandleError(c, h.upload.tooLarge())
		return
	}

	sniffed := mimetype.Detect(data)
	if !isImage(sniffed.String()) {
		BadRequest(c, "Only image files are allowed")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = sniffed.Extension()
	}
	key := path.Join(h.upload.KeyPrefix, uuid.NewString()+ext)

	ctx := c.Request.Context()
	imageURL, err := h.store.Put(ctx, key, sniffed.String(), data)
	if err != nil {
		logger.L().Error("image upload failed",
			zap.String("menuItemId", item.ID),
			zap.String("key", key),
			zap.Error(err),
		)
		InternalError(c, "Failed to upload image")
		return
	}

	if err := database.DB.Model(&models.MenuItem{}).Where("id = ?", item.ID).Update("image_url", imageURL).Error; err != nil {
		h.janitor.Discard(imageURL)
		HandleError(c, err)
		return
	}

	if item.ImageURL != nil && *item.ImageURL != imageURL {
		h.janitor.Discard(*item.ImageURL)
	}
	h.share.forgetCategoryMenu(ctx, item.CategoryID)

	SuccessWithMessage(c, "Image uploaded successfully", UploadedImage{
		MenuItem:         UploadedMenuItem{ID: item.ID, Name: item.Name, ImageURL: &imageURL},
		UploadedImageURL: imageURL,
		Key:              key,
	})
}
