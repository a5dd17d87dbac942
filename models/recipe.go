package models

import (
	"time"

	"gorm.io/gorm"
)

// Recipe is a published dish description. Tag links live in the recipe_tags
// join table; ingredient links are owned RecipeIngredient rows that are
// replaced wholesale whenever the recipe is updated.
type Recipe struct {
	gorm.Model
	AuthorID    uint               `gorm:"not null;index" json:"author_id"`
	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	Text        string             `gorm:"type:text" json:"text"`
	Image       string             `json:"image"`
	CookingTime int                `gorm:"not null" json:"cooking_time"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags,omitempty"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

// RecipeIngredient links a recipe to one ingredient with an amount. The rows
// are hard-deleted on replacement, so there is no DeletedAt column; a soft
// delete would leave the (recipe, ingredient) unique index occupied.
type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RecipeID     uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int         `gorm:"not null" json:"amount"`
	CreatedAt    time.Time   `json:"created_at"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"ingredient,omitempty"`
}
