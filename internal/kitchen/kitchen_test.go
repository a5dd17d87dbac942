package kitchen

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"forkful/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := database.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.CartItem{},
		&models.Subscription{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	return New(database), database
}

func seedUser(t *testing.T, database *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func seedRecipe(t *testing.T, database *gorm.DB, authorID uint, name string) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		CookingTime: 10,
	}
	if err := database.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe %s: %v", name, err)
	}
	return recipe
}

func seedIngredient(t *testing.T, database *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := database.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed ingredient %s: %v", name, err)
	}
	return ingredient
}

func seedTag(t *testing.T, database *gorm.DB, name, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: "#ff0000", Slug: slug}
	if err := database.Create(&tag).Error; err != nil {
		t.Fatalf("failed to seed tag %s: %v", name, err)
	}
	return tag
}
