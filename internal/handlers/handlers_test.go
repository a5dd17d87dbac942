package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"forkful/models"
)

func withTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	originalDB := database
	originalService := service

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.CartItem{},
		&models.Subscription{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	Configure(sessionManager, db)
	return db, func() {
		database = originalDB
		service = originalService
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func withTestSessionManager(t *testing.T) (*scs.SessionManager, func()) {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	return sm, func() {
		sessionManager = original
	}
}

func withTestTokens(t *testing.T) func() {
	t.Helper()
	originalSecret := tokenSecret
	tokenSecret = []byte("test-signing-secret")
	return func() {
		tokenSecret = originalSecret
	}
}

// anonymousSessionRequest attaches a fresh session context without marking
// the request as authenticated.
func anonymousSessionRequest(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	ctx, err := sessionManager.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	return req.WithContext(ctx)
}

func authenticateRequest(t *testing.T, sm *scs.SessionManager, req *http.Request, userID uint) *http.Request {
	t.Helper()
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)
	sm.Put(req.Context(), sessionUserIDKey, int(userID))
	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	return req
}

func createTestUser(t *testing.T, db *gorm.DB, email, username, password string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{Email: email, Username: username, PasswordHash: string(hashed)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestStaff(t *testing.T, db *gorm.DB, email, username string) models.User {
	t.Helper()
	user := createTestUser(t, db, email, username, "irrelevant-password")
	if err := db.Model(&user).Update("is_staff", true).Error; err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}
	user.IsStaff = true
	return user
}

func createTestTag(t *testing.T, db *gorm.DB, name, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: "#49B64E", Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return tag
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ingredient
}

func createTestRecipe(t *testing.T, db *gorm.DB, authorID uint, name string) models.Recipe {
	t.Helper()
	recipe := models.Recipe{AuthorID: authorID, Name: name, Text: "stir well", CookingTime: 10}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}
