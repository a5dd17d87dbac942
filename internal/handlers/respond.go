package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"forkful/internal/kitchen"
	applog "forkful/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

// writeDetail renders the `{"detail": [...]}` error shape shared by every
// failure response.
func writeDetail(w http.ResponseWriter, status int, messages ...string) {
	writeJSON(w, status, map[string][]string{"detail": messages})
}

// writeDomainError maps a kitchen failure to its status code. Conflicts and
// invalid operations both answer 400; the distinction lives in the detail
// text.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch kitchen.KindOf(err) {
	case kitchen.KindNotFound:
		writeDetail(w, http.StatusNotFound, err.Error())
	case kitchen.KindConflict, kitchen.KindInvalidOperation, kitchen.KindValidationFailure:
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		applog.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// validatePayload runs struct validation and flattens the failures into one
// detail message per field.
func validatePayload(payload any) []string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	messages := []string{}
	if ok := asValidationErrors(err, &fieldErrs); ok {
		for _, fe := range fieldErrs {
			messages = append(messages, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
		return messages
	}
	return []string{"invalid request payload"}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = fieldErrs
	return true
}
