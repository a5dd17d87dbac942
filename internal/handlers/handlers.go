package handlers

import (
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"forkful/internal/kitchen"
	"forkful/internal/media"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	service        *kitchen.Service
	mediaStore     *media.Store
	tokenSecret    []byte
	tokenTTL       = 24 * time.Hour

	validate = validator.New()
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
	if db != nil {
		service = kitchen.New(db)
	} else {
		service = nil
	}
}

// ConfigureMedia installs the image store used by the recipe write path.
func ConfigureMedia(store *media.Store) {
	mediaStore = store
}

// ConfigureTokens installs the signing secret and lifetime for API tokens.
func ConfigureTokens(secret string, ttl time.Duration) {
	tokenSecret = []byte(secret)
	if ttl > 0 {
		tokenTTL = ttl
	}
}
