package api

import (
	"catering/database"
	"catering/models"
	"catering/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler categories and subcategories of the caller's menus
type CategoryHandler struct {
	share   *ShareCache
	janitor *service.ImageJanitor
}

// NewCategoryHandler dependencies may be nil
func NewCategoryHandler(share *ShareCache, janitor *service.ImageJanitor) *CategoryHandler {
	return &CategoryHandler{share: share, janitor: janitor}
}

// CreateCategoryRequest parentCategoryId makes it a subcategory
type CreateCategoryRequest struct {
	MenuID           string  `json:"menuId" binding:"required,uuid"`
	Name             string  `json:"name" binding:"required,min=1,max=255" example:"Starters"`
	Description      *string `json:"description" binding:"omitempty,max=5000"`
	ParentCategoryID *string `json:"parentCategoryId" binding:"omitempty,uuid"`
	SortOrder        *int    `json:"sortOrder" binding:"omitempty,min=0"`
	IsActive         *bool   `json:"isActive"`
}

// UpdateCategoryRequest partial update; menu and parent cannot change
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	SortOrder   *int    `json:"sortOrder" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"isActive"`
}

// CategoryListQuery list filters; without parentCategoryId only top-level categories are listed
type CategoryListQuery struct {
	PageQuery
	MenuID           string `form:"menuId" binding:"required,uuid"`
	ParentCategoryID string `form:"parentCategoryId" binding:"omitempty,uuid"`
	IncludeItems     bool   `form:"includeItems"`
}

// ReorderCategoriesRequest sibling ids in their new order
type ReorderCategoriesRequest struct {
	MenuID           string   `json:"menuId" binding:"required,uuid"`
	ParentCategoryID *string  `json:"parentCategoryId" binding:"omitempty,uuid"`
	OrderedIDs       []string `json:"orderedIds" binding:"required,min=1,max=500,dive,uuid"`
}

func byPosition(tx *gorm.DB) *gorm.DB {
	return tx.Order("sort_order ASC").Order("created_at ASC")
}

func categoryTree(db *gorm.DB, withItems bool) *gorm.DB {
	db = db.Preload("ChildCategories", byPosition)
	if withItems {
		db = db.
			Preload("MenuItems", byPosition).
			Preload("MenuItems.Tags").
			Preload("ChildCategories.MenuItems", byPosition).
			Preload("ChildCategories.MenuItems.Tags")
	}
	return db
}

// List categories of one menu
// @Summary List categories
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param menuId query string true "Menu ID"
// @Param parentCategoryId query string false "List subcategories of this category"
// @Param includeItems query bool false "Embed menu items"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} PageResponse{data=[]models.Category}
// @Failure 404 {object} ErrorResponse
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var q CategoryListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleError(c, err)
		return
	}
	q.normalize()

	if _, err := findOwnedMenu(uid, q.MenuID, "Menu not found or unauthorized"); err != nil {
		HandleError(c, err)
		return
	}

	query := database.DB.Model(&models.Category{}).Where("menu_id = ?", q.MenuID)
	if q.ParentCategoryID != "" {
		query = query.Where("parent_category_id = ?", q.ParentCategoryID)
	} else {
		query = query.Where("parent_category_id IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		HandleError(c, err)
		return
	}

	categories := []models.Category{}
	if err := categoryTree(query, q.IncludeItems).
		Order("sort_order ASC").Order("created_at ASC").
		Offset(q.offset()).Limit(q.Limit).
		Find(&categories).Error; err != nil {
		HandleError(c, err)
		return
	}

	Paginated(c, categories, q.Page, q.Limit, total)
}

// Get one category with subcategories and items
// @Summary Get category
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Response{data=models.Category}
// @Failure 404 {object} ErrorResponse
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
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
	if _, err := findOwnedCategory(uid, id); err != nil {
		HandleError(c, err)
		return
	}

	var cat models.Category
	if err := categoryTree(database.DB, true).Where("id = ?", id).First(&cat).Error; err != nil {
		HandleError(c, err)
		return
	}
	Success(c, cat)
}

// Create a category or subcategory
// @Summary Create category
// @Description A parent must belong to the same menu, be top level, and hold no menu items
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} Response{data=models.Category}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}
	name, err := requiredName(req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}

	if _, err := findOwnedMenu(uid, req.MenuID, "Menu not found or unauthorized"); err != nil {
		HandleError(c, err)
		return
	}

	cat := models.Category{
		MenuID:           req.MenuID,
		ParentCategoryID: req.ParentCategoryID,
		Name:             name,
		Description:      sanitizeOptional(req.Description),
		IsActive:         req.IsActive == nil || *req.IsActive,
	}
	if req.SortOrder != nil {
		cat.SortOrder = *req.SortOrder
	}

	if err := service.CreateCategory(database.DB, &cat); err != nil {
		HandleError(c, err)
		return
	}

	h.share.forgetMenu(c.Request.Context(), cat.MenuID)
	Created(c, "Category created successfully", cat)
}

// Update category fields
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Category}
// @Failure 404 {object} ErrorResponse
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
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
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}

	cat, err := findOwnedCategory(uid, id)
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
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&models.Category{}).Where("id = ?", cat.ID).Updates(updates).Error; err != nil {
			HandleError(c, err)
			return
		}
		var fresh models.Category
		if err := database.DB.Where("id = ?", cat.ID).First(&fresh).Error; err != nil {
			HandleError(c, err)
			return
		}
		cat = &fresh
		h.share.forgetMenu(c.Request.Context(), cat.MenuID)
	}

	SuccessWithMessage(c, "Category updated successfully", cat)
}

// Delete a category with its subcategories and items
// @Summary Delete category
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
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

	cat, err := findOwnedCategory(uid, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	images, err := itemImagesUnder(database.DB.Model(&models.Category{}).Select("id").
		Where("id = ? OR parent_category_id = ?", cat.ID, cat.ID))
	if err != nil {
		HandleError(c, err)
		return
	}

	if err := service.DeleteCategory(database.DB, cat); err != nil {
		HandleError(c, err)
		return
	}

	h.janitor.Discard(images...)
	h.share.forgetMenu(c.Request.Context(), cat.MenuID)
	SuccessWithMessage(c, "Category deleted successfully", nil)
}

// Reorder siblings in one request
// @Summary Reorder categories
// @Description Assigns sortOrder 0..n-1 following orderedIds; all ids must share menu and parent
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderCategoriesRequest true "New order"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Router /api/categories/reorder [put]
func (h *CategoryHandler) Reorder(c *gin.Context) {
	uid, err := currentUserID(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}

	if _, err := findOwnedMenu(uid, req.MenuID, "Menu not found or unauthorized"); err != nil {
		HandleError(c, err)
		return
	}

	if err := service.ReorderCategories(database.DB, req.MenuID, req.ParentCategoryID, req.OrderedIDs); err != nil {
		HandleError(c, err)
		return
	}

	h.share.forgetMenu(c.Request.Context(), req.MenuID)
	SuccessWithMessage(c, "Categories reordered successfully", gin.H{"orderedIds": req.OrderedIDs})
}
