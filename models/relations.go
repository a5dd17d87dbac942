package models

import "time"

// The three membership tables below share a shape: an (actor, target) pair
// guarded by a composite unique index, created and destroyed individually and
// never updated in place. None of them soft-delete; a removed pair must be
// addable again immediately.

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
}

// CartItem marks a recipe as present in a user's shopping cart.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
}

// Subscription records that a subscriber follows a writer's recipes.
// Subscriber and writer are always distinct users.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscriber_writer" json:"subscriber_id"`
	WriterID     uint      `gorm:"not null;uniqueIndex:idx_subscriber_writer" json:"writer_id"`
	CreatedAt    time.Time `json:"created_at"`
	Subscriber   *User     `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE" json:"subscriber,omitempty"`
	Writer       *User     `gorm:"foreignKey:WriterID;constraint:OnDelete:CASCADE" json:"writer,omitempty"`
}
