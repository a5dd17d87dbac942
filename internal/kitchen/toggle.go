package kitchen

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"forkful/models"
)

// RelationKind names one of the three per-user membership relations.
type RelationKind string

const (
	RelationFavorite     RelationKind = "favorite"
	RelationCart         RelationKind = "cart"
	RelationSubscription RelationKind = "subscription"
)

// RecipeSnapshot is the reduced recipe view returned by favorite and cart
// toggles and embedded in writer snapshots.
type RecipeSnapshot struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// WriterSnapshot is the author profile returned by subscription operations:
// the profile fields plus the total recipe count and a capped preview of the
// newest recipes.
type WriterSnapshot struct {
	Email        string           `json:"email"`
	ID           uint             `json:"id"`
	Username     string           `json:"username"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	IsSubscribed bool             `json:"is_subscribed"`
	Recipes      []RecipeSnapshot `json:"recipes"`
	RecipesCount int64            `json:"recipes_count"`
}

// ToggleResult carries the snapshot view of the toggle target. Exactly one
// field is set: Recipe for favorite/cart, Writer for subscription.
type ToggleResult struct {
	Recipe *RecipeSnapshot
	Writer *WriterSnapshot
}

// AddRelation inserts one membership row for (actor, target). Preconditions
// run in a fixed order: the target must exist, a subscription target must not
// be the actor, and the pair must not already be related. A concurrent add
// that slips past the existence check still resolves as a conflict through
// the unique pair index.
func (s *Service) AddRelation(ctx context.Context, kind RelationKind, actorID, targetID uint) (*ToggleResult, error) {
	switch kind {
	case RelationFavorite, RelationCart:
		recipe, err := s.findRecipe(ctx, targetID)
		if err != nil {
			return nil, err
		}
		exists, err := s.relationExists(ctx, kind, actorID, targetID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, Conflict(addConflictDetail(kind))
		}
		if err := s.createRelation(ctx, kind, actorID, targetID); err != nil {
			return nil, err
		}
		return &ToggleResult{Recipe: snapshotRecipe(*recipe)}, nil

	case RelationSubscription:
		var writer models.User
		if err := s.db.WithContext(ctx).First(&writer, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFound("user not found")
			}
			return nil, fmt.Errorf("load writer: %w", err)
		}
		if actorID == targetID {
			return nil, InvalidOperation("cannot subscribe to self")
		}
		exists, err := s.relationExists(ctx, kind, actorID, targetID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, Conflict(addConflictDetail(kind))
		}
		if err := s.createRelation(ctx, kind, actorID, targetID); err != nil {
			return nil, err
		}
		snapshot, err := s.WriterSnapshot(ctx, actorID, writer)
		if err != nil {
			return nil, err
		}
		return &ToggleResult{Writer: snapshot}, nil
	}

	return nil, fmt.Errorf("unknown relation kind %q", kind)
}

// RemoveRelation deletes the membership row for (actor, target). The target
// must exist and the pair must currently be related; deletion is hard and
// immediate.
func (s *Service) RemoveRelation(ctx context.Context, kind RelationKind, actorID, targetID uint) error {
	switch kind {
	case RelationFavorite, RelationCart:
		if _, err := s.findRecipe(ctx, targetID); err != nil {
			return err
		}
	case RelationSubscription:
		var writer models.User
		if err := s.db.WithContext(ctx).First(&writer, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("user not found")
			}
			return fmt.Errorf("load writer: %w", err)
		}
	default:
		return fmt.Errorf("unknown relation kind %q", kind)
	}

	result := s.relationQuery(ctx, kind, actorID, targetID).Delete(relationModel(kind))
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return InvalidOperation(removeMissingDetail(kind))
	}
	return nil
}

// WriterSnapshot assembles the subscription view of a writer for the given
// viewer: profile, total recipe count and the newest recipes up to the
// preview cap.
func (s *Service) WriterSnapshot(ctx context.Context, viewerID uint, writer models.User) (*WriterSnapshot, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", writer.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count writer recipes: %w", err)
	}

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).
		Where("author_id = ?", writer.ID).
		Order("created_at desc, id desc").
		Limit(RecipePreviewCount).
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("load writer recipes: %w", err)
	}

	subscribed := false
	if viewerID != 0 {
		exists, err := s.relationExists(ctx, RelationSubscription, viewerID, writer.ID)
		if err != nil {
			return nil, err
		}
		subscribed = exists
	}

	preview := make([]RecipeSnapshot, 0, len(recipes))
	for _, recipe := range recipes {
		preview = append(preview, *snapshotRecipe(recipe))
	}

	return &WriterSnapshot{
		Email:        writer.Email,
		ID:           writer.ID,
		Username:     writer.Username,
		FirstName:    writer.FirstName,
		LastName:     writer.LastName,
		IsSubscribed: subscribed,
		Recipes:      preview,
		RecipesCount: count,
	}, nil
}

func (s *Service) findRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("recipe not found")
		}
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	return &recipe, nil
}

func (s *Service) relationExists(ctx context.Context, kind RelationKind, actorID, targetID uint) (bool, error) {
	var count int64
	if err := s.relationQuery(ctx, kind, actorID, targetID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s: %w", kind, err)
	}
	return count > 0, nil
}

func (s *Service) relationQuery(ctx context.Context, kind RelationKind, actorID, targetID uint) *gorm.DB {
	query := s.db.WithContext(ctx).Model(relationModel(kind))
	if kind == RelationSubscription {
		return query.Where("subscriber_id = ? AND writer_id = ?", actorID, targetID)
	}
	return query.Where("user_id = ? AND recipe_id = ?", actorID, targetID)
}

func (s *Service) createRelation(ctx context.Context, kind RelationKind, actorID, targetID uint) error {
	var err error
	switch kind {
	case RelationFavorite:
		err = s.db.WithContext(ctx).Create(&models.Favorite{UserID: actorID, RecipeID: targetID}).Error
	case RelationCart:
		err = s.db.WithContext(ctx).Create(&models.CartItem{UserID: actorID, RecipeID: targetID}).Error
	case RelationSubscription:
		err = s.db.WithContext(ctx).Create(&models.Subscription{SubscriberID: actorID, WriterID: targetID}).Error
	}
	if err != nil {
		// Lost a race with an identical add; the unique index kept it to
		// one row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Conflict(addConflictDetail(kind))
		}
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

func relationModel(kind RelationKind) any {
	switch kind {
	case RelationFavorite:
		return &models.Favorite{}
	case RelationCart:
		return &models.CartItem{}
	default:
		return &models.Subscription{}
	}
}

func snapshotRecipe(recipe models.Recipe) *RecipeSnapshot {
	return &RecipeSnapshot{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func addConflictDetail(kind RelationKind) string {
	switch kind {
	case RelationFavorite:
		return "recipe is already in favorites"
	case RelationCart:
		return "recipe is already in the shopping cart"
	default:
		return "already subscribed to this author"
	}
}

func removeMissingDetail(kind RelationKind) string {
	switch kind {
	case RelationFavorite:
		return "recipe is not in favorites"
	case RelationCart:
		return "recipe is not in the shopping cart"
	default:
		return "not subscribed to this author"
	}
}
