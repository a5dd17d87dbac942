package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "forkful/internal/log"
	"forkful/models"
)

// New returns an in-memory sqlite database seeded with representative kitchen
// data. It backs local development when no database URL is configured.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:forkful-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.CartItem{},
		&models.Subscription{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("pantry"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	chef := &models.User{
		Email:        "marta@forkful.app",
		Username:     "marta",
		FirstName:    "Marta",
		LastName:     "Reyes",
		PasswordHash: string(password),
	}
	guest := &models.User{
		Email:        "oliver@forkful.app",
		Username:     "oliver",
		FirstName:    "Oliver",
		LastName:     "Quinn",
		PasswordHash: string(password),
	}
	for _, user := range []*models.User{chef, guest} {
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			return err
		}
	}

	breakfast := models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	dinner := models.Tag{Name: "Dinner", Color: "#49B64E", Slug: "dinner"}
	for _, tag := range []*models.Tag{&breakfast, &dinner} {
		if err := db.WithContext(ctx).Create(tag).Error; err != nil {
			return err
		}
	}

	flour := models.Ingredient{Name: "Wheat flour", MeasurementUnit: "g"}
	milk := models.Ingredient{Name: "Milk", MeasurementUnit: "ml"}
	beetroot := models.Ingredient{Name: "Beetroot", MeasurementUnit: "g"}
	for _, ingredient := range []*models.Ingredient{&flour, &milk, &beetroot} {
		if err := db.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	pancakes := models.Recipe{
		AuthorID:    chef.ID,
		Name:        "Buttermilk Pancakes",
		Text:        "Whisk the batter until smooth, rest ten minutes, fry on a hot buttered pan.",
		CookingTime: 25,
		Tags:        []models.Tag{breakfast},
	}
	borscht := models.Recipe{
		AuthorID:    chef.ID,
		Name:        "Borscht",
		Text:        "Simmer the beetroot with stock, finish with dill and a spoon of sour cream.",
		CookingTime: 90,
		Tags:        []models.Tag{dinner},
	}
	if err := db.WithContext(ctx).Create(&pancakes).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&borscht).Error; err != nil {
		return err
	}

	rows := []models.RecipeIngredient{
		{RecipeID: pancakes.ID, IngredientID: flour.ID, Amount: 300},
		{RecipeID: pancakes.ID, IngredientID: milk.ID, Amount: 400},
		{RecipeID: borscht.ID, IngredientID: beetroot.ID, Amount: 500},
	}
	for _, row := range rows {
		rowCopy := row
		if err := db.WithContext(ctx).Create(&rowCopy).Error; err != nil {
			return err
		}
	}

	relations := []any{
		&models.Favorite{UserID: guest.ID, RecipeID: pancakes.ID},
		&models.CartItem{UserID: guest.ID, RecipeID: borscht.ID},
		&models.Subscription{SubscriberID: guest.ID, WriterID: chef.ID},
	}
	for _, relation := range relations {
		if err := db.WithContext(ctx).Create(relation).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
