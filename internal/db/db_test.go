package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"forkful/internal/config"
	"forkful/models"
)

func TestInitializeRejectsEmptyURL(t *testing.T) {
	if _, err := Initialize(config.DatabaseConfig{URL: "   "}); err == nil {
		t.Fatal("expected error for empty database URL")
	}
}

func TestAutoMigrateRejectsNilHandle(t *testing.T) {
	if err := AutoMigrate(nil); err == nil {
		t.Fatal("expected error for nil database handle")
	}
}

func TestAutoMigrateCreatesRelationTables(t *testing.T) {
	database, err := gorm.Open(sqlite.Open("file:db_automigrate?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := AutoMigrate(database); err != nil {
		t.Fatalf("AutoMigrate returned error: %v", err)
	}

	for _, table := range []any{
		&models.User{}, &models.Tag{}, &models.Ingredient{}, &models.Recipe{},
		&models.RecipeIngredient{}, &models.Favorite{}, &models.CartItem{}, &models.Subscription{},
	} {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table for %T to exist", table)
		}
	}

	// The toggle service depends on the pair index to resolve concurrent adds
	// as one success and one conflict.
	if !database.Migrator().HasIndex(&models.Favorite{}, "idx_favorite_user_recipe") {
		t.Fatal("expected composite unique index on favorites")
	}
	if !database.Migrator().HasIndex(&models.Subscription{}, "idx_subscriber_writer") {
		t.Fatal("expected composite unique index on subscriptions")
	}
}
