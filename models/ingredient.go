package models

import "gorm.io/gorm"

// Ingredient is a catalog entry shared across recipes. The same name may
// appear with different measurement units.
type Ingredient struct {
	gorm.Model
	Name            string `gorm:"size:200;not null;index" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null" json:"measurement_unit"`
}
