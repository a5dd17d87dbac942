package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"forkful/internal/kitchen"
	"forkful/models"
)

func TestSignupCreatesUser(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	body := `{"email":"New@Example.com","username":"newcook","first_name":"New","last_name":"Cook","password":"longenough"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/", strings.NewReader(body))
	w := httptest.NewRecorder()
	UsersResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var response userResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %q", response.Email)
	}
	if response.IsSubscribed {
		t.Fatal("fresh accounts must not report a subscription")
	}

	var stored models.User
	if err := db.Where("username = ?", "newcook").First(&stored).Error; err != nil {
		t.Fatalf("failed to load stored user: %v", err)
	}
	if stored.PasswordHash == "longenough" {
		t.Fatal("password must not be stored in clear text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough")); err != nil {
		t.Fatalf("stored hash does not match the password: %v", err)
	}
}

func TestSignupRejectsDuplicatesAndShortPasswords(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	createTestUser(t, database, "taken@example.com", "taken", "super-secret")

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"duplicate email",
			`{"email":"taken@example.com","username":"other","password":"longenough"}`,
			"already exists",
		},
		{
			"duplicate username",
			`{"email":"other@example.com","username":"taken","password":"longenough"}`,
			"already exists",
		},
		{
			"short password",
			`{"email":"other@example.com","username":"other","password":"short"}`,
			"failed min validation",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users/", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			UsersResource(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tc.want) {
				t.Fatalf("expected %q in body, got %s", tc.want, w.Body.String())
			}
		})
	}
}

func TestSetPassword(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	user := createTestUser(t, database, "cook@example.com", "cook", "old-password")

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/users/set_password/", strings.NewReader(body))
		req = authenticateRequest(t, sm, req, user.ID)
		w := httptest.NewRecorder()
		UsersResource(w, req)
		return w
	}

	if w := send(`{"new_password":"fresh-password","current_password":"wrong"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for wrong current password, got %d", w.Code)
	}
	if w := send(`{"new_password":"old-password","current_password":"old-password"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unchanged password, got %d", w.Code)
	}
	if w := send(`{"new_password":"fresh-password","current_password":"old-password"}`); w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("fresh-password")); err != nil {
		t.Fatalf("new password was not stored: %v", err)
	}
}

func TestSubscribeEndpointRoundTrip(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	reader := createTestUser(t, database, "reader@example.com", "reader", "super-secret")
	writer := createTestUser(t, database, "writer@example.com", "writer", "super-secret")
	createTestRecipe(t, database, writer.ID, "Borscht")

	subscribeURL := fmt.Sprintf("/api/users/%d/subscribe/", writer.ID)

	req := httptest.NewRequest(http.MethodPost, subscribeURL, nil)
	req = authenticateRequest(t, sm, req, reader.ID)
	w := httptest.NewRecorder()
	UsersResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var snapshot kitchen.WriterSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if snapshot.ID != writer.ID || !snapshot.IsSubscribed {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.RecipesCount != 1 || len(snapshot.Recipes) != 1 {
		t.Fatalf("expected one preview recipe, got %+v", snapshot)
	}

	// Repeating the subscription is a conflict.
	req = httptest.NewRequest(http.MethodPost, subscribeURL, nil)
	req = authenticateRequest(t, sm, req, reader.ID)
	w = httptest.NewRecorder()
	UsersResource(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for repeated subscribe, got %d", w.Code)
	}

	// The subscriptions listing now carries the writer.
	req = httptest.NewRequest(http.MethodGet, "/api/users/subscriptions/", nil)
	req = authenticateRequest(t, sm, req, reader.ID)
	w = httptest.NewRecorder()
	UsersResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var page struct {
		Count   int64                    `json:"count"`
		Results []kitchen.WriterSnapshot `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.Count != 1 || len(page.Results) != 1 || page.Results[0].ID != writer.ID {
		t.Fatalf("unexpected subscriptions page: %+v", page)
	}

	req = httptest.NewRequest(http.MethodDelete, subscribeURL, nil)
	req = authenticateRequest(t, sm, req, reader.ID)
	w = httptest.NewRecorder()
	UsersResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", w.Code, w.Body.String())
	}

	var remaining int64
	if err := database.Model(&models.Subscription{}).Count(&remaining).Error; err != nil {
		t.Fatalf("failed to count subscriptions: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected no subscription rows, got %d", remaining)
	}
}

func TestListUsersPaginates(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	for i := 0; i < 8; i++ {
		createTestUser(t, database, fmt.Sprintf("cook%d@example.com", i), fmt.Sprintf("cook%d", i), "super-secret")
	}

	req := anonymousSessionRequest(t, httptest.NewRequest(http.MethodGet, "/api/users/?limit=3&page=2", nil))
	w := httptest.NewRecorder()
	UsersResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var page struct {
		Count    int64          `json:"count"`
		Next     *string        `json:"next"`
		Previous *string        `json:"previous"`
		Results  []userResponse `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.Count != 8 {
		t.Fatalf("expected count 8, got %d", page.Count)
	}
	if len(page.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(page.Results))
	}
	if page.Next == nil || page.Previous == nil {
		t.Fatalf("expected both page links on the middle page: %+v", page)
	}
	if !strings.Contains(*page.Next, "page=3") {
		t.Fatalf("unexpected next link: %s", *page.Next)
	}
}

func TestShowUserReportsSubscriptionFlag(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	reader := createTestUser(t, database, "reader@example.com", "reader", "super-secret")
	writer := createTestUser(t, database, "writer@example.com", "writer", "super-secret")
	if err := database.Create(&models.Subscription{SubscriberID: reader.ID, WriterID: writer.ID}).Error; err != nil {
		t.Fatalf("failed to seed subscription: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/users/%d/", writer.ID), nil)
	req = authenticateRequest(t, sm, req, reader.ID)
	w := httptest.NewRecorder()
	UsersResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var response userResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.IsSubscribed {
		t.Fatal("expected is_subscribed to be true for a subscribed viewer")
	}

	// Anonymous viewers always see the flag down.
	anonReq := anonymousSessionRequest(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/users/%d/", writer.ID), nil))
	anonW := httptest.NewRecorder()
	UsersResource(anonW, anonReq)
	if anonW.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", anonW.Code)
	}
	var anonResponse userResponse
	if err := json.Unmarshal(anonW.Body.Bytes(), &anonResponse); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if anonResponse.IsSubscribed {
		t.Fatal("anonymous viewers must not see a subscription flag")
	}
}
