package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"catering/database"
	"catering/models"
	"catering/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ShareHandler unauthenticated access to shared menus
type ShareHandler struct {
	share *ShareCache
}

// NewShareHandler share may be nil
func NewShareHandler(share *ShareCache) *ShareHandler {
	return &ShareHandler{share: share}
}

// OrderRequest a guest's selection from a shared menu
type OrderRequest struct {
	ItemIDs     []string `json:"itemIds" binding:"required,min=1,max=500,dive,uuid"`
	ContactName string   `json:"contactName" binding:"omitempty,max=255"`
	GuestCount  int      `json:"guestCount" binding:"omitempty,min=0,max=100000"`
	Notes       string   `json:"notes" binding:"omitempty,max=2000"`
}

const shareNotFound = "Menu not found or share token is invalid"

func shareToken(c *gin.Context) (string, error) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" || len(token) > 64 {
		return "", errNotFound(shareNotFound)
	}
	return token, nil
}

// Get the menu tree behind a share token, active entries only
// @Summary View shared menu
// @Description Anyone holding the token can read the menu, regardless of isPublic. Inactive categories and menu items are left out.
// @Tags Share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} Response{data=models.Menu}
// @Failure 404 {object} ErrorResponse
// @Router /api/menus/share/{token} [get]
func (h *ShareHandler) Get(c *gin.Context) {
	token, err := shareToken(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	ctx := c.Request.Context()

	if body, ok := h.share.get(ctx, token); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	var menu models.Menu
	err = menuTree(database.DB, true).Where("share_token = ?", token).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, shareNotFound)
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	body, err := json.Marshal(Response{Success: true, Data: menu})
	if err != nil {
		HandleError(c, err)
		return
	}
	h.share.put(ctx, token, body)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Order builds a spreadsheet of the items a guest picked
// @Summary Order summary from a shared menu
// @Tags Share
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param token path string true "Share token"
// @Param request body OrderRequest true "Selection"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/menus/share/{token}/order [post]
func (h *ShareHandler) Order(c *gin.Context) {
	token, err := shareToken(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, err)
		return
	}

	var menu models.Menu
	err = database.DB.Where("share_token = ?", token).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, shareNotFound)
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	var found []models.MenuItem
	if err := database.DB.
		Preload("Tags").
		Preload("Category").
		Joins("JOIN categories ON categories.id = menu_items.category_id").
		Where("categories.menu_id = ? AND menu_items.id IN ? AND menu_items.is_active = ?", menu.ID, req.ItemIDs, true).
		Find(&found).Error; err != nil {
		HandleError(c, err)
		return
	}
	if len(found) == 0 {
		BadRequest(c, "None of the selected items belong to this menu")
		return
	}

	// keep the guest's order, skip ids that did not match
	byID := make(map[string]models.MenuItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}
	items := make([]models.MenuItem, 0, len(found))
	for _, id := range req.ItemIDs {
		if item, ok := byID[id]; ok {
			items = append(items, item)
			delete(byID, id)
		}
	}

	buf, err := service.BuildOrderWorkbook(menu.Name, service.OrderSelection{
		ContactName: sanitizeText(req.ContactName),
		GuestCount:  req.GuestCount,
		Notes:       sanitizeText(req.Notes),
		Items:       items,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	writeWorkbook(c, menu.Name+" order", buf.Bytes())
}
