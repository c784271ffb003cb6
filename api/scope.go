package api

import (
	"context"
	"errors"

	"catering/cache"
	"catering/database"
	"catering/logger"
	"catering/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Every lookup below is scoped to the caller: rows of other owners read as missing.

func findOwnedMenu(userID, menuID, notFoundMsg string) (*models.Menu, error) {
	var menu models.Menu
	err := database.DB.Where("id = ? AND owner_user_id = ?", menuID, userID).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound(notFoundMsg)
	}
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func findOwnedCategory(userID, categoryID string) (*models.Category, error) {
	var cat models.Category
	err := database.DB.
		Joins("JOIN menus ON menus.id = categories.menu_id").
		Where("categories.id = ? AND menus.owner_user_id = ?", categoryID, userID).
		First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound("Category not found")
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func findOwnedMenuItem(userID, itemID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := database.DB.
		Joins("JOIN categories ON categories.id = menu_items.category_id").
		Joins("JOIN menus ON menus.id = categories.menu_id").
		Where("menu_items.id = ? AND menus.owner_user_id = ?", itemID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound("Menu item not found")
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// itemImagesUnder image URLs of every item below the given categories
func itemImagesUnder(categoryScope *gorm.DB) ([]string, error) {
	var urls []string
	err := database.DB.Model(&models.MenuItem{}).
		Where("category_id IN (?) AND image_url IS NOT NULL AND image_url <> ''", categoryScope).
		Pluck("image_url", &urls).Error
	return urls, err
}

// ShareCache caches the public share view; a nil cache disables it
type ShareCache struct {
	store cache.Cache
}

// NewShareCache wraps store, which may be nil
func NewShareCache(store cache.Cache) *ShareCache {
	return &ShareCache{store: store}
}

func (s *ShareCache) enabled() bool {
	return s != nil && s.store != nil
}

func (s *ShareCache) get(ctx context.Context, token string) ([]byte, bool) {
	if !s.enabled() {
		return nil, false
	}
	body, err := s.store.Get(ctx, cache.ShareKey(token))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.L().Warn("share cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return body, true
}

func (s *ShareCache) put(ctx context.Context, token string, body []byte) {
	if !s.enabled() {
		return
	}
	if err := s.store.Set(ctx, cache.ShareKey(token), body, 0); err != nil {
		logger.L().Warn("share cache write failed", zap.Error(err))
	}
}

// forgetToken drops the cached view of one token
func (s *ShareCache) forgetToken(ctx context.Context, token *string) {
	if !s.enabled() || token == nil || *token == "" {
		return
	}
	if err := s.store.Delete(ctx, cache.ShareKey(*token)); err != nil {
		logger.L().Warn("share cache delete failed", zap.Error(err))
	}
}

// forgetMenu drops the cached view of the menu that owns a changed row
func (s *ShareCache) forgetMenu(ctx context.Context, menuID string) {
	if !s.enabled() {
		return
	}
	var tokens []string
	if err := database.DB.Model(&models.Menu{}).Where("id = ? AND share_token IS NOT NULL", menuID).Pluck("share_token", &tokens).Error; err != nil {
		logger.L().Warn("share cache lookup failed", zap.Error(err))
		return
	}
	for i := range tokens {
		s.forgetToken(ctx, &tokens[i])
	}
}

// forgetCategoryMenu like forgetMenu, starting from a category
func (s *ShareCache) forgetCategoryMenu(ctx context.Context, categoryID string) {
	if !s.enabled() {
		return
	}
	var menuIDs []string
	if err := database.DB.Model(&models.Category{}).Where("id = ?", categoryID).Pluck("menu_id", &menuIDs).Error; err != nil {
		logger.L().Warn("share cache lookup failed", zap.Error(err))
		return
	}
	for _, id := range menuIDs {
		s.forgetMenu(ctx, id)
	}
}
