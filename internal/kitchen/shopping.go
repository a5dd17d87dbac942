package kitchen

import (
	"context"
	"fmt"
)

// ShoppingItem is one consolidated line of a user's shopping list.
type ShoppingItem struct {
	Name            string `json:"name"`
	TotalAmount     int64  `json:"total_amount"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ShoppingList aggregates the ingredients of every recipe in the user's cart:
// rows are grouped by (name, measurement unit) and amounts summed within each
// group. Output is ordered by ingredient name, then unit, so exports are
// deterministic. An empty cart yields an empty list.
func (s *Service) ShoppingList(ctx context.Context, userID uint) ([]ShoppingItem, error) {
	items := make([]ShoppingItem, 0)

	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name asc, ingredients.measurement_unit asc").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}

	return items, nil
}
