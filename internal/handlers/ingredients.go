package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"forkful/internal/kitchen"
	applog "forkful/internal/log"
	"forkful/models"
)

type ingredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type ingredientRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
}

// IngredientsResource handles /api/ingredients: public reads with
// case-insensitive prefix search, staff-only writes. The list is never
// paginated.
func IngredientsResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeDetail(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/ingredients"), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodPatch, http.MethodPut:
		updateIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).Model(&models.Ingredient{}).Order("name asc")

	// The `name` parameter overrides the generic `search` one; both prefix
	// match on the ingredient name.
	term := r.URL.Query().Get("name")
	if term == "" {
		term = r.URL.Query().Get("search")
	}
	if term != "" {
		query = query.Where("lower(name) LIKE lower(?)", term+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := make([]ingredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		results = append(results, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, results)
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ingredient, ok := findIngredient(w, r, ingredientID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r, kitchen.OpManageCatalog); !ok {
		return
	}

	var req ingredientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if messages := validatePayload(req); messages != nil {
		writeDetail(w, http.StatusBadRequest, messages...)
		return
	}

	ingredient := models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := database.WithContext(r.Context()).Create(&ingredient).Error; err != nil {
		applog.Error(r.Context(), "failed to create ingredient", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, projectIngredient(ingredient))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	if _, ok := requireActor(w, r, kitchen.OpManageCatalog); !ok {
		return
	}
	ingredient, ok := findIngredient(w, r, ingredientID)
	if !ok {
		return
	}

	var req ingredientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if messages := validatePayload(req); messages != nil {
		writeDetail(w, http.StatusBadRequest, messages...)
		return
	}

	updates := map[string]any{"name": req.Name, "measurement_unit": req.MeasurementUnit}
	if err := database.WithContext(r.Context()).Model(ingredient).Updates(updates).Error; err != nil {
		applog.Error(r.Context(), "failed to update ingredient", "error", err, "id", ingredientID)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	if _, ok := requireActor(w, r, kitchen.OpManageCatalog); !ok {
		return
	}
	ingredient, ok := findIngredient(w, r, ingredientID)
	if !ok {
		return
	}

	if err := database.WithContext(r.Context()).Unscoped().Delete(ingredient).Error; err != nil {
		applog.Error(r.Context(), "failed to delete ingredient", "error", err, "id", ingredientID)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func findIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) (*models.Ingredient, bool) {
	var ingredient models.Ingredient
	if err := database.WithContext(r.Context()).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeDetail(w, http.StatusNotFound, "ingredient not found")
			return nil, false
		}
		applog.Error(r.Context(), "failed to load ingredient", "error", err, "id", ingredientID)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return &ingredient, true
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}
