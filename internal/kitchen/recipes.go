package kitchen

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"forkful/models"
)

// IngredientEntry pairs an ingredient id with the amount used by a recipe.
type IngredientEntry struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeInput carries the writable fields of a recipe. Tag and ingredient
// references must resolve to existing rows.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uint
	Ingredients []IngredientEntry
}

// CreateRecipe validates the input and creates the recipe together with its
// tag links and ingredient rows in one transaction, so an unresolved tag or
// ingredient never leaves a half-constructed recipe behind.
func (s *Service) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(in); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       in.Image,
		CookingTime: in.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := ensureIngredientsExist(tx, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if len(tags) > 0 {
			if err := tx.Model(&recipe).Association("Tags").Append(&tags); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
		}
		return insertIngredientRows(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe overwrites the recipe's scalar fields and replaces the entire
// tag and ingredient sets. The replacement is a full overwrite inside one
// transaction; readers never observe a partial set.
func (s *Service) UpdateRecipe(ctx context.Context, recipeID uint, in RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(in); err != nil {
		return nil, err
	}

	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := ensureIngredientsExist(tx, in.Ingredients); err != nil {
			return err
		}

		fields := map[string]any{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		// An absent image keeps the stored one.
		if in.Image != "" {
			fields["image"] = in.Image
		}
		if err := tx.Model(recipe).Updates(fields).Error; err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		if len(tags) > 0 {
			if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
				return fmt.Errorf("replace tags: %w", err)
			}
		} else if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear tag links: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear ingredient rows: %w", err)
		}
		return insertIngredientRows(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipeID)
}

// DeleteRecipe removes the recipe and every row that references it. The
// relation rows go first so the store never holds a favorite or cart entry
// pointing at a missing recipe.
func (s *Service) DeleteRecipe(ctx context.Context, recipeID uint) error {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete ingredient rows: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("delete cart items: %w", err)
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear tag links: %w", err)
		}
		if err := tx.Unscoped().Delete(&models.Recipe{}, recipe.ID).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
}

// GetRecipe loads one recipe with its author, tags and ingredient rows.
func (s *Service) GetRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("recipe not found")
		}
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	return &recipe, nil
}

func validateRecipeInput(in RecipeInput) error {
	if in.CookingTime < MinAmount || in.CookingTime > MaxAmount {
		return InvalidOperation(fmt.Sprintf("cooking_time must be between %d and %d", MinAmount, MaxAmount))
	}
	if len(in.Ingredients) < MinIngredients {
		return ValidationFailure("at least one ingredient is required")
	}

	seen := make(map[uint]struct{}, len(in.Ingredients))
	for _, entry := range in.Ingredients {
		if entry.Amount < MinAmount || entry.Amount > MaxAmount {
			return InvalidOperation(fmt.Sprintf("ingredient amount must be between %d and %d", MinAmount, MaxAmount))
		}
		if _, dup := seen[entry.ID]; dup {
			return ValidationFailure("ingredient listed more than once")
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

func resolveTags(tx *gorm.DB, tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	unique := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		unique[id] = struct{}{}
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	if len(tags) != len(unique) {
		return nil, NotFound("tag not found")
	}
	return tags, nil
}

func ensureIngredientsExist(tx *gorm.DB, entries []IngredientEntry) error {
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}

	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("resolve ingredients: %w", err)
	}
	if count != int64(len(ids)) {
		return NotFound("ingredient not found")
	}
	return nil
}

func insertIngredientRows(tx *gorm.DB, recipeID uint, entries []IngredientEntry) error {
	rows := make([]models.RecipeIngredient, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: entry.ID,
			Amount:       entry.Amount,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert ingredient rows: %w", err)
	}
	return nil
}
