package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItem a dish inside a leaf category
type MenuItem struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	CategoryID  string    `json:"categoryId" gorm:"type:char(36);not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Ingredients *string   `json:"ingredients" gorm:"type:text"`
	ImageURL    *string   `json:"imageUrl" gorm:"size:1024"`
	SortOrder   int       `json:"sortOrder" gorm:"not null;index"`
	IsActive    bool      `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Tags     []Tag     `json:"tags" gorm:"many2many:menu_item_tags;constraint:OnDelete:CASCADE"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

// BeforeCreate assigns the primary key
func (i *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// MenuItemTag join row between menu items and tags
type MenuItemTag struct {
	MenuItemID string `gorm:"type:char(36);primaryKey"`
	TagID      string `gorm:"type:char(36);primaryKey;index"`
}

func (MenuItemTag) TableName() string {
	return "menu_item_tags"
}
