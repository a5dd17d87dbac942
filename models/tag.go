package models

import "gorm.io/gorm"

// Tag classifies recipes for filtering. Color is a `#rrggbb` hex string and
// Slug is the stable identifier used in query parameters.
type Tag struct {
	gorm.Model
	Name  string `gorm:"size:200;not null" json:"name"`
	Color string `gorm:"size:7" json:"color"`
	Slug  string `gorm:"uniqueIndex;size:200;not null" json:"slug"`
}
