package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagType classifies a tag
type TagType string

const (
	TagTypeDietary    TagType = "dietary"
	TagTypeHighlight  TagType = "highlight"
	TagTypeCuisine    TagType = "cuisine"
	TagTypeSpiceLevel TagType = "spice_level"
)

// DefaultTagColor used when a tag is created without a color
const DefaultTagColor = "#6B7280"

// ValidTagTypes all accepted tag types
var ValidTagTypes = []TagType{TagTypeDietary, TagTypeHighlight, TagTypeCuisine, TagTypeSpiceLevel}

// Valid reports whether t is one of ValidTagTypes
func (t TagType) Valid() bool {
	for _, v := range ValidTagTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Tag a global label attached to menu items
type Tag struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Type      TagType   `json:"type" gorm:"size:20;not null;index"`
	Color     string    `json:"color" gorm:"size:7;not null"`
	Icon      *string   `json:"icon" gorm:"size:32"`
	CreatedAt time.Time `json:"createdAt"`

	// filled by list queries only
	UsageCount *int64 `json:"usageCount,omitempty" gorm:"->;-:migration"`
}

func (Tag) TableName() string {
	return "tags"
}

// BeforeCreate assigns the primary key
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	return nil
}

// PredefinedTags the catalog seeded into an empty database
func PredefinedTags() []Tag {
	tag := func(name string, typ TagType, color, icon string) Tag {
		return Tag{Name: name, Type: typ, Color: color, Icon: &icon}
	}
	return []Tag{
		tag("Vegetarian", TagTypeDietary, "#4CAF50", "🥬"),
		tag("Non-Vegetarian", TagTypeDietary, "#FF5722", "🍖"),
		tag("Egg-Based", TagTypeDietary, "#FFC107", "🥚"),
		tag("Vegan", TagTypeDietary, "#8BC34A", "🌱"),
		tag("Gluten-Free", TagTypeDietary, "#9C27B0", "🌾"),
		tag("Dairy-Free", TagTypeDietary, "#00BCD4", "🥛"),
		tag("Nut-Free", TagTypeDietary, "#795548", "🥜"),

		tag("Signature Dish", TagTypeHighlight, "#FF6B6B", "⭐"),
		tag("Chef Special", TagTypeHighlight, "#4ECDC4", "👨‍🍳"),
		tag("Popular", TagTypeHighlight, "#45B7D1", "🔥"),
		tag("New", TagTypeHighlight, "#96CEB4", "✨"),

		tag("Mild", TagTypeSpiceLevel, "#4CAF50", "🌶️"),
		tag("Medium", TagTypeSpiceLevel, "#FF9800", "🌶️🌶️"),
		tag("Spicy", TagTypeSpiceLevel, "#F44336", "🌶️🌶️🌶️"),

		tag("Indian", TagTypeCuisine, "#FF5722", "🇮🇳"),
		tag("Chinese", TagTypeCuisine, "#F44336", "🇨🇳"),
		tag("Italian", TagTypeCuisine, "#4CAF50", "🇮🇹"),
		tag("Continental", TagTypeCuisine, "#2196F3", "🍽️"),
		tag("Mexican", TagTypeCuisine, "#FF9800", "🇲🇽"),
		tag("Thai", TagTypeCuisine, "#9C27B0", "🇹🇭"),
		tag("Japanese", TagTypeCuisine, "#607D8B", "🇯🇵"),
		tag("Mediterranean", TagTypeCuisine, "#795548", "🫒"),
	}
}
