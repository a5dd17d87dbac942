// Package kitchen holds the business core of the service: the relation
// toggle operations over favorites, cart items and subscriptions, the
// shopping list aggregation, and the transactional recipe write path.
// Handlers translate between HTTP and this package; everything here speaks
// entities and domain errors only.
package kitchen

import "gorm.io/gorm"

const (
	// MinAmount and MaxAmount bound cooking_time and ingredient amounts.
	// Violations are rejected at write time, never clamped.
	MinAmount = 1
	MaxAmount = 32000

	// MinIngredients is the smallest ingredient list a recipe may carry.
	MinIngredients = 1

	// RecipePreviewCount caps the recipe preview embedded in a writer
	// snapshot.
	RecipePreviewCount = 3
)

// Service exposes the core operations against a relational store.
type Service struct {
	db *gorm.DB
}

// New builds a Service on top of the given database handle.
func New(db *gorm.DB) *Service {
	return &Service{db: db}
}
