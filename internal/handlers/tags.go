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

type tagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type tagRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor,len=7"`
	Slug  string `json:"slug" validate:"required,max=200"`
}

// TagsResource handles /api/tags: public reads, staff-only writes. The tag
// list is never paginated.
func TagsResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeDetail(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tags"), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listTags(w, r)
		case http.MethodPost:
			createTag(w, r)
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
	tagID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showTag(w, r, tagID)
	case http.MethodPatch, http.MethodPut:
		updateTag(w, r, tagID)
	case http.MethodDelete:
		deleteTag(w, r, tagID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listTags(w http.ResponseWriter, r *http.Request) {
	var tags []models.Tag
	if err := database.WithContext(r.Context()).Order("slug desc").Find(&tags).Error; err != nil {
		applog.Error(r.Context(), "failed to list tags", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		results = append(results, projectTag(tag))
	}
	writeJSON(w, http.StatusOK, results)
}

func showTag(w http.ResponseWriter, r *http.Request, tagID uint) {
	tag, ok := findTag(w, r, tagID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectTag(*tag))
}

func createTag(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r, kitchen.OpManageCatalog); !ok {
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if messages := validatePayload(req); messages != nil {
		writeDetail(w, http.StatusBadRequest, messages...)
		return
	}

	tag := models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := database.WithContext(r.Context()).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeDetail(w, http.StatusBadRequest, "a tag with this slug already exists")
			return
		}
		applog.Error(r.Context(), "failed to create tag", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, projectTag(tag))
}

func updateTag(w http.ResponseWriter, r *http.Request, tagID uint) {
	if _, ok := requireActor(w, r, kitchen.OpManageCatalog); !ok {
		return
	}
	tag, ok := findTag(w, r, tagID)
	if !ok {
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if messages := validatePayload(req); messages != nil {
		writeDetail(w, http.StatusBadRequest, messages...)
		return
	}

	updates := map[string]any{"name": req.Name, "color": req.Color, "slug": req.Slug}
	if err := database.WithContext(r.Context()).Model(tag).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeDetail(w, http.StatusBadRequest, "a tag with this slug already exists")
			return
		}
		applog.Error(r.Context(), "failed to update tag", "error", err, "id", tagID)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, projectTag(*tag))
}

func deleteTag(w http.ResponseWriter, r *http.Request, tagID uint) {
	if _, ok := requireActor(w, r, kitchen.OpManageCatalog); !ok {
		return
	}
	tag, ok := findTag(w, r, tagID)
	if !ok {
		return
	}

	if err := database.WithContext(r.Context()).Unscoped().Delete(tag).Error; err != nil {
		applog.Error(r.Context(), "failed to delete tag", "error", err, "id", tagID)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func findTag(w http.ResponseWriter, r *http.Request, tagID uint) (*models.Tag, bool) {
	var tag models.Tag
	if err := database.WithContext(r.Context()).First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeDetail(w, http.StatusNotFound, "tag not found")
			return nil, false
		}
		applog.Error(r.Context(), "failed to load tag", "error", err, "id", tagID)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return &tag, true
}

func projectTag(tag models.Tag) tagResponse {
	return tagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
}
