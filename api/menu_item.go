package api

import (
	"strings"

	"catering/database"
	"catering/models"
	"catering/service"

	"github.com/gin-gonic/gin"
)

// MenuItemHandler items of the caller's leaf categories
type MenuItemHandler struct {
	share   *ShareCache
	janitor *service.ImageJanitor
	store   service.ObjectStore
	upload  UploadLimits
}

// NewMenuItemHandler store may be nil, which disables image uploads
func NewMenuItemHandler(share *ShareCache, janitor *service.ImageJanitor, store service.ObjectStore, upload UploadLimits) *MenuItemHandler {
	return &MenuItemHandler{share: share, janitor: janitor, store: store, upload: upload.withDefaults()}
}

// CreateMenuItemRequest create item body
type CreateMenuItemRequest struct {
	CategoryID  string   `json:"categoryId" binding:"required,uuid"`
	Name        string   `json:"name" binding:"required,min=1,max=255" example:"Paneer Tikka"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	Ingredients *string  `json:"ingredients" binding:"omitempty,max=5000"`
	SortOrder   *int     `json:"sortOrder" binding:"omitempty,min=0"`
	IsActive    *bool    `json:"isActive"`
	TagIDs      []string `json:"tagIds" binding:"omitempty,max=50,dive,uuid"`
}

// UpdateMenuItemRequest partial update; tagIds present replaces all tags, [] clears them
type UpdateMenuItemRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string   `json:"description" binding:"omitempty,max=5000"`
	Ingredients *string   `json:"ingredients" binding:"omitempty,max=5000"`
	SortOrder   *int      `json:"sortOrder" binding:"omitempty,min=0"`
	IsActive    *bool     `json:"isActive"`
	TagIDs      *[]string `json:"tagIds" binding:"omitempty,max=50,dive,uuid"`
}

// MenuItemListQuery list filters; tagIds matches items carrying any of the tags
type MenuItemListQuery struct {
	PageQuery
	CategoryID string `form:"categoryId" binding:"omitempty,uuid"`
	Search     string `form:"search" binding:"omitempty,max=255"`
}

// ReorderMenuItemsRequest item ids of one category in their new order
type ReorderMenuItemsRequest struct {
	CategoryID string   `json:"categoryId" binding:"required,uuid"`
	OrderedIDs []string `json:"orderedIds" binding:"required,min=1,max=500,dive,uuid"`
}

func loadMenuItem(id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := database.DB.
		Preload("Tags", byName).
		Preload("Category").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List the caller's menu items
// @Summary List menu items
// @Tags MenuItems
// @Produce json
// @Security BearerAuth
// @Param categoryId query string false "Category ID"
// @Param tagIds query []string false "Tag IDs, any of" collectionFormat(multi)
// @Param search query string false "Substring of name, description or ingredients"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} PageResponse{data=[]models.MenuItem}
// @Failure 400 {object} ErrorResponse
// @Router /api/menu-items [get]
func (h *MenuItemHandler) List(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var q MenuItemListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleError(c, err)
		return
	}
	q.normalize()
	tagIDs, err := queryIDs(c, "tagIds")
	if err != nil {
		HandleError(c, err)
		return
	}

	query := database.DB.Model(&models.MenuItem{}).
		Joins("JOIN categories ON categories.id = menu_items.category_id").
		Joins("JOIN menus ON menus.id = categories.menu_id").
		Where("menus.owner_user_id = ?", uid)
	if q.CategoryID != "" {
		query = query.Where("menu_items.category_id = ?", q.CategoryID)
	}
	if len(tagIDs) > 0 {
		tagged := database.DB.Model(&models.MenuItemTag{}).Select("menu_item_id").Where("tag_id IN ?", tagIDs)
		query = query.Where("menu_items.id IN (?)", tagged)
	}
	if strings.TrimSpace(q.Search) != "" {
		p := likePattern(q.Search)
		query = query.Where("(LOWER(menu_items.name) LIKE ? OR LOWER(menu_items.description) LIKE ? OR LOWER(menu_items.ingredients) LIKE ?)", p, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		HandleError(c, err)
		return
	}

	items := []models.MenuItem{}
	if err := query.
		Preload("Tags", byName).
		Preload("Category").
		Order("menu_items.sort_order ASC").Order("menu_items.created_at ASC").
		Offset(q.offset()).Limit(q.Limit).
		Find(&items).Error; err != nil {
		HandleError(c, err)
		return
	}

	Paginated(c, items, q.Page, q.Limit, total)
}

// Get one menu item with tags and category
// @Summary Get menu item
// @Tags MenuItems
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu item ID"
// @Success 200 {object} Response{data=models.MenuItem}
// @Failure 404 {object} ErrorResponse
// @Router /api/menu-items/{id} [get]
func (h *MenuItemHandler) Get(c *gin.Context) {
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
	if _, err := findOwnedMenuItem(uid, id); err != nil {
		HandleError(c, err)
		return
	}

	item, err := loadMenuItem(id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// Create a menu item in a leaf category
// @Summary Create menu item
// @Description The category must not have subcategories
// @Tags MenuItems
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMenuItemRequest true "Menu item"
// @Success 201 {object} Response{data=models.MenuItem}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/menu-items [post]
func (h *MenuItemHandler) Create(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}
	name, err := requiredName(req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}

	cat, err := findOwnedCategory(uid, req.CategoryID)
	if err != nil {
		HandleError(c, err)
		return
	}

	item := models.MenuItem{
		CategoryID:  cat.ID,
		Name:        name,
		Description: sanitizeOptional(req.Description),
		Ingredients: sanitizeOptional(req.Ingredients),
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	if err := service.CreateMenuItem(database.DB, &item, req.TagIDs); err != nil {
		HandleError(c, err)
		return
	}

	created, err := loadMenuItem(item.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.share.forgetMenu(c.Request.Context(), cat.MenuID)
	Created(c, "Menu item created successfully", created)
}

// Update menu item fields and tags
// @Summary Update menu item
// @Tags MenuItems
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu item ID"
// @Param request body UpdateMenuItemRequest true "Fields to change"
// @Success 200 {object} Response{data=models.MenuItem}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/menu-items/{id} [put]
func (h *MenuItemHandler) Update(c *gin.Context) {
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
	var req UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}

	item, err := findOwnedMenuItem(uid, id)
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
	if req.Ingredients != nil {
		updates["ingredients"] = sanitizeOptional(req.Ingredients)
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 || req.TagIDs != nil {
		if err := service.UpdateMenuItem(database.DB, item.ID, updates, req.TagIDs); err != nil {
			HandleError(c, err)
			return
		}
		h.share.forgetCategoryMenu(c.Request.Context(), item.CategoryID)
	}

	updated, err := loadMenuItem(item.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessWithMessage(c, "Menu item updated successfully", updated)
}

// Delete a menu item; its image is removed from storage afterwards
// @Summary Delete menu item
// @Tags MenuItems
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu item ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Router /api/menu-items/{id} [delete]
func (h *MenuItemHandler) Delete(c *gin.Context) {
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

	if err := database.DB.Where("id = ?", item.ID).Delete(&models.MenuItem{}).Error; err != nil {
		HandleError(c, err)
		return
	}

	if item.ImageURL != nil {
		h.janitor.Discard(*item.ImageURL)
	}
	h.share.forgetCategoryMenu(c.Request.Context(), item.CategoryID)
	SuccessWithMessage(c, "Menu item deleted successfully", nil)
}

// Reorder items of one category
// @Summary Reorder menu items
// @Description Assigns sortOrder 0..n-1 following orderedIds; all ids must belong to the category
// @Tags MenuItems
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderMenuItemsRequest true "New order"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Router /api/menu-items/reorder [put]
func (h *MenuItemHandler) Reorder(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req ReorderMenuItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}

	cat, err := findOwnedCategory(uid, req.CategoryID)
	if err != nil {
		HandleError(c, err)
		return
	}

	if err := service.ReorderMenuItems(database.DB, cat.ID, req.OrderedIDs); err != nil {
		HandleError(c, err)
		return
	}

	h.share.forgetMenu(c.Request.Context(), cat.MenuID)
	SuccessWithMessage(c, "Menu items reordered successfully", gin.H{"orderedIds": req.OrderedIDs})
}
