package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"catering/database"
	"catering/middleware"
	"catering/models"
	"catering/service"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

// MenuHandler menu CRUD and sharing for the owner
type MenuHandler struct {
	share   *ShareCache
	janitor *service.ImageJanitor
	email   *service.EmailService
	baseURL string
}

// NewMenuHandler all dependencies may be nil
func NewMenuHandler(share *ShareCache, janitor *service.ImageJanitor, email *service.EmailService, baseURL string) *MenuHandler {
	return &MenuHandler{share: share, janitor: janitor, email: email, baseURL: strings.TrimRight(baseURL, "/")}
}

// CreateMenuRequest create menu body
type CreateMenuRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255" example:"Wedding Buffet"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	IsPublic    *bool   `json:"isPublic"`
}

// UpdateMenuRequest partial update, absent fields stay unchanged
type UpdateMenuRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	IsPublic    *bool   `json:"isPublic"`
}

// MenuListQuery list filters
type MenuListQuery struct {
	PageQuery
	IsPublic *bool  `form:"isPublic"`
	Search   string `form:"search" binding:"omitempty,max=255"`
}

// ShareEmailRequest send the share link by email
type ShareEmailRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"omitempty,max=1000"`
}

func newShareToken() (string, error) {
	return gonanoid.New()
}

// menuTree preloads categories, subcategories, items and tags ordered by sortOrder
func menuTree(db *gorm.DB, activeOnly bool) *gorm.DB {
	scope := func(tx *gorm.DB) *gorm.DB {
		if activeOnly {
			tx = tx.Where("is_active = ?", true)
		}
		return tx.Order("sort_order ASC").Order("created_at ASC")
	}
	topLevel := func(tx *gorm.DB) *gorm.DB {
		return scope(tx.Where("parent_category_id IS NULL"))
	}
	return db.
		Preload("Categories", topLevel).
		Preload("Categories.MenuItems", scope).
		Preload("Categories.MenuItems.Tags").
		Preload("Categories.ChildCategories", scope).
		Preload("Categories.ChildCategories.MenuItems", scope).
		Preload("Categories.ChildCategories.MenuItems.Tags")
}

// List the caller's menus
// @Summary List menus
// @Description Menus owned by the caller, newest first, with category counts
// @Tags Menus
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param isPublic query bool false "Filter by visibility"
// @Param search query string false "Substring of name or description"
// @Success 200 {object} PageResponse{data=[]models.Menu}
// @Failure 401 {object} ErrorResponse
// @Router /api/menus [get]
func (h *MenuHandler) List(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var q MenuListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleError(c, err)
		return
	}
	q.normalize()

	query := database.DB.Model(&models.Menu{}).Where("owner_user_id = ?", uid)
	if q.IsPublic != nil {
		query = query.Where("is_public = ?", *q.IsPublic)
	}
	if strings.TrimSpace(q.Search) != "" {
		p := likePattern(q.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		HandleError(c, err)
		return
	}

	menus := []models.Menu{}
	if err := query.
		Select("menus.*, (SELECT COUNT(*) FROM categories WHERE categories.menu_id = menus.id) AS category_count").
		Order("created_at DESC").
		Offset(q.offset()).Limit(q.Limit).
		Find(&menus).Error; err != nil {
		HandleError(c, err)
		return
	}

	Paginated(c, menus, q.Page, q.Limit, total)
}

// Get one menu with its full tree
// @Summary Get menu
// @Tags Menus
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu ID"
// @Success 200 {object} Response{data=models.Menu}
// @Failure 404 {object} ErrorResponse
// @Router /api/menus/{id} [get]
func (h *MenuHandler) Get(c *gin.Context) {
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

	var menu models.Menu
	err = menuTree(database.DB, false).Where("id = ? AND owner_user_id = ?", id, uid).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "Menu not found")
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, menu)
}

// Create a menu owned by the caller
// @Summary Create menu
// @Description Creates a menu and issues its share token
// @Tags Menus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMenuRequest true "Menu"
// @Success 201 {object} Response{data=models.Menu}
// @Failure 400 {object} ErrorResponse
// @Router /api/menus [post]
func (h *MenuHandler) Create(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}
	name, err := requiredName(req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}
	token, err := newShareToken()
	if err != nil {
		HandleError(c, err)
		return
	}

	menu := models.Menu{
		Name:        name,
		Description: sanitizeOptional(req.Description),
		IsPublic:    req.IsPublic != nil && *req.IsPublic,
		ShareToken:  &token,
		OwnerUserID: uid,
		OwnerEmail:  middleware.GetCurrentUserEmail(c),
	}
	if err := database.DB.Omit("Categories").Create(&menu).Error; err != nil {
		HandleError(c, err)
		return
	}

	Created(c, "Menu created successfully", menu)
}

// Update menu fields
// @Summary Update menu
// @Tags Menus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu ID"
// @Param request body UpdateMenuRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Menu}
// @Failure 404 {object} ErrorResponse
// @Router /api/menus/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
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
	var req UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}

	menu, err := findOwnedMenu(uid, id, "Menu not found")
	if err != nil {
		HandleError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name, err := requiredName(*req.Name)
		if err != nil {
			HandleError(c, err)
			return
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = sanitizeOptional(req.Description)
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&models.Menu{}).Where("id = ?", menu.ID).Updates(updates).Error; err != nil {
			HandleError(c, err)
			return
		}
		var fresh models.Menu
		if err := database.DB.Where("id = ?", menu.ID).First(&fresh).Error; err != nil {
			HandleError(c, err)
			return
		}
		menu = &fresh
		h.share.forgetToken(c.Request.Context(), menu.ShareToken)
	}

	SuccessWithMessage(c, "Menu updated successfully", menu)
}

// Delete a menu with everything under it
// @Summary Delete menu
// @Tags Menus
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Router /api/menus/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
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

	menu, err := findOwnedMenu(uid, id, "Menu not found")
	if err != nil {
		HandleError(c, err)
		return
	}

	images, err := itemImagesUnder(database.DB.Model(&models.Category{}).Select("id").Where("menu_id = ?", menu.ID))
	if err != nil {
		HandleError(c, err)
		return
	}

	if err := database.DB.Where("id = ?", menu.ID).Delete(&models.Menu{}).Error; err != nil {
		HandleError(c, err)
		return
	}

	h.janitor.Discard(images...)
	h.share.forgetToken(c.Request.Context(), menu.ShareToken)
	SuccessWithMessage(c, "Menu deleted successfully", nil)
}

// RotateShareToken replaces the share token, invalidating old links
// @Summary Rotate share token
// @Tags Menus
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu ID"
// @Success 200 {object} Response{data=models.Menu}
// @Failure 404 {object} ErrorResponse
// @Router /api/menus/{id}/share-token [post]
func (h *MenuHandler) RotateShareToken(c *gin.Context) {
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

	menu, err := findOwnedMenu(uid, id, "Menu not found")
	if err != nil {
		HandleError(c, err)
		return
	}
	old := menu.ShareToken

	token, err := newShareToken()
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := database.DB.Model(&models.Menu{}).Where("id = ?", menu.ID).Update("share_token", token).Error; err != nil {
		HandleError(c, err)
		return
	}
	menu.ShareToken = &token

	h.share.forgetToken(c.Request.Context(), old)
	SuccessWithMessage(c, "Share link regenerated", menu)
}

// ShareByEmail mails the public link of a menu
// @Summary Email share link
// @Tags Menus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu ID"
// @Param request body ShareEmailRequest true "Recipient"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Router /api/menus/{id}/share-email [post]
func (h *MenuHandler) ShareByEmail(c *gin.Context) {
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
	var req ShareEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}
	if !h.email.Enabled() {
		HandleError(c, service.ErrEmailDisabled)
		return
	}

	menu, err := findOwnedMenu(uid, id, "Menu not found")
	if err != nil {
		HandleError(c, err)
		return
	}
	if menu.ShareToken == nil {
		BadRequest(c, "Menu has no share link")
		return
	}

	link := h.previewLink(*menu.ShareToken)
	if err := h.email.SendMenuShareEmail(req.Email, middleware.GetCurrentUserEmail(c), menu.Name, link, sanitizeText(req.Message)); err != nil {
		HandleError(c, err)
		return
	}
	SuccessWithMessage(c, "Share link sent", gin.H{"link": link})
}

func (h *MenuHandler) previewLink(token string) string {
	return h.baseURL + "/preview/" + url.PathEscape(token)
}

// Export downloads the menu as a spreadsheet
// @Summary Export menu
// @Tags Menus
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Menu ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /api/menus/{id}/export [get]
func (h *MenuHandler) Export(c *gin.Context) {
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

	var menu models.Menu
	err = menuTree(database.DB, false).Where("id = ? AND owner_user_id = ?", id, uid).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "Menu not found")
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	buf, err := service.BuildMenuWorkbook(&menu)
	if err != nil {
		HandleError(c, err)
		return
	}
	writeWorkbook(c, menu.Name, buf.Bytes())
}

func writeWorkbook(c *gin.Context, name string, data []byte) {
	filename := url.PathEscape(strings.TrimSpace(name)) + ".xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))
	c.Data(http.StatusOK, service.XLSXContentType, data)
}
