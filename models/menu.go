package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Menu a catering menu owned by one user, optionally shared by token
type Menu struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	IsPublic    bool      `json:"isPublic" gorm:"not null"`
	ShareToken  *string   `json:"shareToken" gorm:"size:64;uniqueIndex"`
	OwnerUserID string    `json:"ownerUserId" gorm:"size:191;not null;index"`
	OwnerEmail  string    `json:"ownerEmail" gorm:"size:255"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Categories []Category `json:"categories,omitempty" gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE"`

	// filled by list queries only
	CategoryCount *int64 `json:"categoryCount,omitempty" gorm:"->;-:migration"`
}

func (Menu) TableName() string {
	return "menus"
}

// BeforeCreate assigns the primary key
func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
