package service

import (
	"errors"
	"fmt"

	"catering/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RuleError a violated structural rule; the message is safe to return to clients
type RuleError struct {
	msg string
}

func (e *RuleError) Error() string { return e.msg }

var (
	ErrCategoryHasItems      = &RuleError{"cannot add subcategories to a category that has menu items"}
	ErrCategoryHasChildren   = &RuleError{"cannot add menu items to a category that has subcategories"}
	ErrParentMenuMismatch    = &RuleError{"parent category must be in the same menu"}
	ErrNestingTooDeep        = &RuleError{"subcategories cannot have their own subcategories"}
	ErrNotSiblings           = &RuleError{"every id in orderedIds must be a distinct sibling category"}
	ErrNotCategoryItems      = &RuleError{"every id in orderedIds must be a distinct menu item of the category"}
	ErrUnknownTag            = &RuleError{"one or more tags do not exist"}
	ErrParentCategoryMissing = errors.New("parent category not found")
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

// CanAcceptItems reports whether a category has no subcategories
func CanAcceptItems(db *gorm.DB, categoryID string) (bool, error) {
	var n int64
	if err := db.Model(&models.Category{}).Where("parent_category_id = ?", categoryID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count subcategories: %w", err)
	}
	return n == 0, nil
}

// CanAcceptSubcategories reports whether a category has no menu items
func CanAcceptSubcategories(db *gorm.DB, categoryID string) (bool, error) {
	var n int64
	if err := db.Model(&models.MenuItem{}).Where("category_id = ?", categoryID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count menu items: %w", err)
	}
	return n == 0, nil
}

// CreateCategory inserts cat. For a subcategory the parent row is locked, the
// exclusivity rule re-checked and the parent flagged hasSubcategories in the
// same transaction.
func CreateCategory(db *gorm.DB, cat *models.Category) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if cat.ParentCategoryID != nil {
			var parent models.Category
			err := tx.Clauses(forUpdate).Where("id = ?", *cat.ParentCategoryID).First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParentCategoryMissing
			}
			if err != nil {
				return err
			}
			if parent.MenuID != cat.MenuID {
				return ErrParentMenuMismatch
			}
			if !parent.IsTopLevel() {
				return ErrNestingTooDeep
			}

			ok, err := CanAcceptSubcategories(tx, parent.ID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrCategoryHasItems
			}

			if err := tx.Model(&models.Category{}).Where("id = ?", parent.ID).
				Update("has_subcategories", true).Error; err != nil {
				return fmt.Errorf("flag parent: %w", err)
			}
		}
		return tx.Create(cat).Error
	})
}

// DeleteCategory removes cat together with its subcategories and items; when the
// last child of a parent goes, the parent's hasSubcategories flag is cleared.
func DeleteCategory(db *gorm.DB, cat *models.Category) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if cat.ParentCategoryID != nil {
			var parent models.Category
			err := tx.Clauses(forUpdate).Select("id").Where("id = ?", *cat.ParentCategoryID).First(&parent).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if err := tx.Where("id = ?", cat.ID).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		if cat.ParentCategoryID == nil {
			return nil
		}

		var remaining int64
		if err := tx.Model(&models.Category{}).Where("parent_category_id = ?", *cat.ParentCategoryID).
			Count(&remaining).Error; err != nil {
			return fmt.Errorf("count siblings: %w", err)
		}
		if remaining > 0 {
			return nil
		}
		return tx.Model(&models.Category{}).Where("id = ?", *cat.ParentCategoryID).
			Update("has_subcategories", false).Error
	})
}

// CreateMenuItem locks the target category, re-checks that it has no
// subcategories, then inserts the item and its tag links.
func CreateMenuItem(db *gorm.DB, item *models.MenuItem, tagIDs []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.Clauses(forUpdate).Select("id").Where("id = ?", item.CategoryID).First(&cat).Error; err != nil {
			return err
		}

		ok, err := CanAcceptItems(tx, item.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCategoryHasChildren
		}

		if err := tx.Omit("Tags", "Category").Create(item).Error; err != nil {
			return err
		}
		return linkTags(tx, item.ID, tagIDs)
	})
}

// UpdateMenuItem applies column updates; a non-nil tagIDs replaces the tag set
// entirely, an empty one clears it.
func UpdateMenuItem(db *gorm.DB, itemID string, updates map[string]interface{}, tagIDs *[]string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.MenuItem{}).Where("id = ?", itemID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if tagIDs == nil {
			return nil
		}
		if err := tx.Where("menu_item_id = ?", itemID).Delete(&models.MenuItemTag{}).Error; err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		return linkTags(tx, itemID, *tagIDs)
	})
}

func linkTags(tx *gorm.DB, itemID string, tagIDs []string) error {
	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}

	var found int64
	if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return fmt.Errorf("count tags: %w", err)
	}
	if found != int64(len(ids)) {
		return ErrUnknownTag
	}

	rows := make([]models.MenuItemTag, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.MenuItemTag{MenuItemID: itemID, TagID: id})
	}
	return tx.Create(&rows).Error
}

// ReorderCategories sets sortOrder 0..n-1 following orderedIDs. Every id must be
// a category of menuID under parentID (nil for top level).
func ReorderCategories(db *gorm.DB, menuID string, parentID *string, orderedIDs []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if hasDuplicates(orderedIDs) {
			return ErrNotSiblings
		}

		q := tx.Model(&models.Category{}).Where("menu_id = ? AND id IN ?", menuID, orderedIDs)
		if parentID == nil {
			q = q.Where("parent_category_id IS NULL")
		} else {
			q = q.Where("parent_category_id = ?", *parentID)
		}
		var matched int64
		if err := q.Count(&matched).Error; err != nil {
			return err
		}
		if matched != int64(len(orderedIDs)) {
			return ErrNotSiblings
		}

		return applyOrder(tx, &models.Category{}, orderedIDs)
	})
}

// ReorderMenuItems sets sortOrder 0..n-1 for items of one category
func ReorderMenuItems(db *gorm.DB, categoryID string, orderedIDs []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if hasDuplicates(orderedIDs) {
			return ErrNotCategoryItems
		}

		var matched int64
		if err := tx.Model(&models.MenuItem{}).Where("category_id = ? AND id IN ?", categoryID, orderedIDs).
			Count(&matched).Error; err != nil {
			return err
		}
		if matched != int64(len(orderedIDs)) {
			return ErrNotCategoryItems
		}

		return applyOrder(tx, &models.MenuItem{}, orderedIDs)
	})
}

func applyOrder(tx *gorm.DB, model interface{}, orderedIDs []string) error {
	for i, id := range orderedIDs {
		if err := tx.Model(model).Where("id = ?", id).Update("sort_order", i).Error; err != nil {
			return fmt.Errorf("set sort order: %w", err)
		}
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func hasDuplicates(ids []string) bool {
	return len(uniqueIDs(ids)) != len(ids)
}
