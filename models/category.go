package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category a menu section. Top-level categories have no parent; a category holds
// either subcategories or menu items, never both.
type Category struct {
	ID               string    `json:"id" gorm:"type:char(36);primaryKey"`
	MenuID           string    `json:"menuId" gorm:"type:char(36);not null;index"`
	ParentCategoryID *string   `json:"parentCategoryId" gorm:"type:char(36);index"`
	Name             string    `json:"name" gorm:"size:255;not null"`
	Description      *string   `json:"description" gorm:"type:text"`
	SortOrder        int       `json:"sortOrder" gorm:"not null;index"`
	IsActive         bool      `json:"isActive" gorm:"not null"`
	HasSubcategories bool      `json:"hasSubcategories" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	ChildCategories []Category `json:"childCategories,omitempty" gorm:"foreignKey:ParentCategoryID;constraint:OnDelete:CASCADE"`
	MenuItems       []MenuItem `json:"menuItems,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeCreate assigns the primary key
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsTopLevel reports whether the category sits directly under its menu
func (c *Category) IsTopLevel() bool {
	return c.ParentCategoryID == nil
}
