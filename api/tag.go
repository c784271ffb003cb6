package api

import (
	"errors"
	"strings"

	"catering/database"
	"catering/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TagHandler the global tag catalog
type TagHandler struct{}

func NewTagHandler() *TagHandler {
	return &TagHandler{}
}

// CreateTagRequest color defaults to a neutral grey
type CreateTagRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=100" example:"Vegan"`
	Type  string  `json:"type" binding:"required,oneof=dietary highlight cuisine spice_level" example:"dietary"`
	Color string  `json:"color" binding:"omitempty,hexcolor6" example:"#22C55E"`
	Icon  *string `json:"icon" binding:"omitempty,max=32"`
}

// UpdateTagRequest partial update
type UpdateTagRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Type  *string `json:"type" binding:"omitempty,oneof=dietary highlight cuisine spice_level"`
	Color *string `json:"color" binding:"omitempty,hexcolor6"`
	Icon  *string `json:"icon" binding:"omitempty,max=32"`
}

// TagListQuery list filters
type TagListQuery struct {
	PageQuery
	Type   string `form:"type" binding:"omitempty,oneof=dietary highlight cuisine spice_level"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

const tagWithUsage = "tags.*, (SELECT COUNT(*) FROM menu_item_tags WHERE menu_item_tags.tag_id = tags.id) AS usage_count"

func byName(tx *gorm.DB) *gorm.DB {
	return tx.Order("name ASC")
}

func findTag(id string) (*models.Tag, error) {
	var tag models.Tag
	err := database.DB.Select(tagWithUsage).Where("id = ?", id).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound("Tag not found")
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// List tags
// @Summary List tags
// @Description Tags ordered by name, each with the number of items using it
// @Tags Tags
// @Produce json
// @Param type query string false "Tag type" Enums(dietary, highlight, cuisine, spice_level)
// @Param search query string false "Substring of the name"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} PageResponse{data=[]models.Tag}
// @Router /api/tags [get]
func (h *TagHandler) List(c *gin.Context) {
	var q TagListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleError(c, err)
		return
	}
	q.normalize()

	query := database.DB.Model(&models.Tag{})
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if strings.TrimSpace(q.Search) != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(q.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		HandleError(c, err)
		return
	}

	tags := []models.Tag{}
	if err := byName(query.Select(tagWithUsage)).
		Offset(q.offset()).Limit(q.Limit).
		Find(&tags).Error; err != nil {
		HandleError(c, err)
		return
	}

	Paginated(c, tags, q.Page, q.Limit, total)
}

// Get one tag
// @Summary Get tag
// @Tags Tags
// @Produce json
// @Param id path string true "Tag ID"
// @Success 200 {object} Response{data=models.Tag}
// @Failure 404 {object} ErrorResponse
// @Router /api/tags/{id} [get]
func (h *TagHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		HandleError(c, err)
		return
	}
	tag, err := findTag(id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, tag)
}

// Create a tag
// @Summary Create tag
// @Tags Tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTagRequest true "Tag"
// @Success 201 {object} Response{data=models.Tag}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}
	name, err := requiredName(req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}

	tag := models.Tag{
		Name:  name,
		Type:  models.TagType(req.Type),
		Color: strings.ToUpper(req.Color),
		Icon:  sanitizeOptional(req.Icon),
	}
	if err := database.DB.Create(&tag).Error; err != nil {
		HandleError(c, err)
		return
	}
	Created(c, "Tag created successfully", tag)
}

// Update a tag
// @Summary Update tag
// @Tags Tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tag ID"
// @Param request body UpdateTagRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Tag}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/tags/{id} [put]
func (h *TagHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		HandleError(c, err)
		return
	}
	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}

	tag, err := findTag(id)
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
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Color != nil {
		updates["color"] = strings.ToUpper(*req.Color)
	}
	if req.Icon != nil {
		updates["icon"] = sanitizeOptional(req.Icon)
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&models.Tag{}).Where("id = ?", tag.ID).Updates(updates).Error; err != nil {
			HandleError(c, err)
			return
		}
		if tag, err = findTag(id); err != nil {
			HandleError(c, err)
			return
		}
	}

	SuccessWithMessage(c, "Tag updated successfully", tag)
}

// Delete a tag and detach it from every item
// @Summary Delete tag
// @Tags Tags
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tag ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Router /api/tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		HandleError(c, err)
		return
	}

	res := database.DB.Where("id = ?", id).Delete(&models.Tag{})
	if res.Error != nil {
		HandleError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		NotFound(c, "Tag not found")
		return
	}
	SuccessWithMessage(c, "Tag deleted successfully", nil)
}
