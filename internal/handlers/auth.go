package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"forkful/internal/kitchen"
	applog "forkful/internal/log"
	"forkful/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResource handles token login and logout under /api/auth/token.
func AuthResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeDetail(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/auth/token"), "/")
	switch path {
	case "login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		tokenLogin(w, r)
	case "logout":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		tokenLogout(w, r)
	default:
		http.NotFound(w, r)
	}
}

func tokenLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if messages := validatePayload(req); messages != nil {
		writeDetail(w, http.StatusBadRequest, messages...)
		return
	}

	user, err := findUserByEmail(r, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeDetail(w, http.StatusBadRequest, "unable to log in with provided credentials")
			return
		}
		applog.Error(r.Context(), "failed to load user during login", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeDetail(w, http.StatusBadRequest, "unable to log in with provided credentials")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
	}

	token, err := issueToken(user.ID)
	if err != nil {
		applog.Error(r.Context(), "failed to issue token", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"auth_token": token})
}

func tokenLogout(w http.ResponseWriter, r *http.Request) {
	if actor := currentUser(r); actor == nil {
		writeDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	return nil
}

func findUserByEmail(r *http.Request, email string) (*models.User, error) {
	user := &models.User{}
	err := database.WithContext(r.Context()).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// currentUser resolves the request's user from the session cookie or a bearer
// token. A nil result means the request is anonymous, which is a valid state
// for every read endpoint.
func currentUser(r *http.Request) *models.User {
	if database == nil {
		return nil
	}

	if sessionManager != nil && sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) {
		if id := sessionManager.GetInt(r.Context(), sessionUserIDKey); id > 0 {
			if user := loadUser(r, uint(id)); user != nil {
				return user
			}
		}
	}

	if raw := bearerToken(r); raw != "" {
		if id, ok := parseToken(raw); ok {
			return loadUser(r, id)
		}
	}

	return nil
}

// requireActor resolves the current user and checks the operation against the
// permission predicate. It writes the failure response itself.
func requireActor(w http.ResponseWriter, r *http.Request, op kitchen.Operation) (*models.User, bool) {
	actor := currentUser(r)
	if actor == nil {
		writeDetail(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	if !kitchen.Allowed(actor, op, 0) {
		writeDetail(w, http.StatusForbidden, "you do not have permission to perform this action")
		return nil, false
	}
	return actor, true
}

func loadUser(r *http.Request, id uint) *models.User {
	user := &models.User{}
	if err := database.WithContext(r.Context()).First(user, id).Error; err != nil {
		return nil
	}
	return user
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	for _, scheme := range []string{"Bearer ", "Token "} {
		if strings.HasPrefix(header, scheme) {
			return strings.TrimSpace(strings.TrimPrefix(header, scheme))
		}
	}
	return ""
}

func issueToken(userID uint) (string, error) {
	if len(tokenSecret) == 0 {
		return "", errors.New("token secret not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenSecret)
}

func parseToken(raw string) (uint, bool) {
	if len(tokenSecret) == 0 {
		return 0, false
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return tokenSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
