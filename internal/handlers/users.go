package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"forkful/internal/kitchen"
	applog "forkful/internal/log"
	"forkful/models"
)

type userResponse struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type signupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required,min=8"`
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// UsersResource handles the profile surface under /api/users: signup,
// listing, retrieval, password change, and the subscription operations.
func UsersResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeDetail(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users"), "/")

	switch path {
	case "":
		switch r.Method {
		case http.MethodGet:
			listUsers(w, r)
		case http.MethodPost:
			signup(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case "me":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		showCurrentUser(w, r)
		return
	case "set_password":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		setPassword(w, r)
		return
	case "subscriptions":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listSubscriptions(w, r)
		return
	}

	segments := strings.Split(path, "/")
	idValue, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	userID := uint(idValue)

	if len(segments) == 2 && segments[1] == "subscribe" {
		toggleSubscription(w, r, userID)
		return
	}
	if len(segments) == 1 && r.Method == http.MethodGet {
		showUser(w, r, userID)
		return
	}
	http.NotFound(w, r)
}

func signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if messages := validatePayload(req); messages != nil {
		writeDetail(w, http.StatusBadRequest, messages...)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		applog.Error(r.Context(), "failed to hash password", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hashed),
	}
	if err := database.WithContext(r.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeDetail(w, http.StatusBadRequest, "a user with this email or username already exists")
			return
		}
		applog.Error(r.Context(), "failed to create user", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	applog.Info(r.Context(), "user registered", "user", user.Username)
	writeJSON(w, http.StatusCreated, projectUser(user, false))
}

func listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := paginationParams(r)

	var total int64
	if err := database.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		applog.Error(ctx, "failed to count users", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var users []models.User
	err := database.WithContext(ctx).
		Order("last_name asc, first_name asc, username asc").
		Offset(params.offset()).
		Limit(params.limit).
		Find(&users).Error
	if err != nil {
		applog.Error(ctx, "failed to list users", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	subscribed := subscribedWriterSet(r, currentUser(r))
	results := make([]userResponse, 0, len(users))
	for _, user := range users {
		_, isSubscribed := subscribed[user.ID]
		results = append(results, projectUser(user, isSubscribed))
	}

	writeJSON(w, http.StatusOK, newPageEnvelope(r, total, params, results))
}

func showUser(w http.ResponseWriter, r *http.Request, userID uint) {
	var user models.User
	if err := database.WithContext(r.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeDetail(w, http.StatusNotFound, "user not found")
			return
		}
		applog.Error(r.Context(), "failed to load user", "error", err, "id", userID)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	subscribed := subscribedWriterSet(r, currentUser(r))
	_, isSubscribed := subscribed[user.ID]
	writeJSON(w, http.StatusOK, projectUser(user, isSubscribed))
}

func showCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r)
	if actor == nil {
		writeDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, projectUser(*actor, false))
}

func setPassword(w http.ResponseWriter, r *http.Request) {
	actor := currentUser(r)
	if actor == nil {
		writeDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req setPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if messages := validatePayload(req); messages != nil {
		writeDetail(w, http.StatusBadRequest, messages...)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeDetail(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	if req.NewPassword == req.CurrentPassword {
		writeDetail(w, http.StatusBadRequest, "new password matches the current password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		applog.Error(r.Context(), "failed to hash password", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := database.WithContext(r.Context()).Model(actor).Update("password_hash", string(hashed)).Error; err != nil {
		applog.Error(r.Context(), "failed to update password", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func listSubscriptions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, kitchen.OpToggleRelation)
	if !ok {
		return
	}
	ctx := r.Context()
	params := paginationParams(r)

	var total int64
	if err := database.WithContext(ctx).Model(&models.Subscription{}).Where("subscriber_id = ?", actor.ID).Count(&total).Error; err != nil {
		applog.Error(ctx, "failed to count subscriptions", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var subscriptions []models.Subscription
	err := database.WithContext(ctx).
		Preload("Writer").
		Where("subscriber_id = ?", actor.ID).
		Order("writer_id desc").
		Offset(params.offset()).
		Limit(params.limit).
		Find(&subscriptions).Error
	if err != nil {
		applog.Error(ctx, "failed to list subscriptions", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := make([]*kitchen.WriterSnapshot, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		if subscription.Writer == nil {
			continue
		}
		snapshot, err := service.WriterSnapshot(ctx, actor.ID, *subscription.Writer)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		results = append(results, snapshot)
	}

	writeJSON(w, http.StatusOK, newPageEnvelope(r, total, params, results))
}

func toggleSubscription(w http.ResponseWriter, r *http.Request, writerID uint) {
	actor, ok := requireActor(w, r, kitchen.OpToggleRelation)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		result, err := service.AddRelation(r.Context(), kitchen.RelationSubscription, actor.ID, writerID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		applog.Info(r.Context(), "subscription added", "subscriber", actor.ID, "writer", writerID)
		writeJSON(w, http.StatusCreated, result.Writer)
	case http.MethodDelete:
		if err := service.RemoveRelation(r.Context(), kitchen.RelationSubscription, actor.ID, writerID); err != nil {
			writeDomainError(w, r, err)
			return
		}
		applog.Info(r.Context(), "subscription removed", "subscriber", actor.ID, "writer", writerID)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// subscribedWriterSet returns the ids of writers the viewer subscribes to, or
// an empty set for anonymous viewers.
func subscribedWriterSet(r *http.Request, viewer *models.User) map[uint]struct{} {
	set := make(map[uint]struct{})
	if viewer == nil {
		return set
	}

	var writerIDs []uint
	err := database.WithContext(r.Context()).
		Model(&models.Subscription{}).
		Where("subscriber_id = ?", viewer.ID).
		Pluck("writer_id", &writerIDs).Error
	if err != nil {
		applog.Error(r.Context(), "failed to load subscription set", "error", err)
		return set
	}
	for _, id := range writerIDs {
		set[id] = struct{}{}
	}
	return set
}

func projectUser(user models.User, isSubscribed bool) userResponse {
	return userResponse{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}
