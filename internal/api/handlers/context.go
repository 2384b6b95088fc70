// Package handlers implements the HTTP surface over the domain
// services. Handlers decode and validate input, call the service, and
// render JSON or an RFC 7807 problem.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/katesim/explore-events/internal/api/problem"
	"github.com/katesim/explore-events/internal/domain/categories"
	"github.com/katesim/explore-events/internal/domain/comments"
	"github.com/katesim/explore-events/internal/domain/compilations"
	"github.com/katesim/explore-events/internal/domain/events"
	"github.com/katesim/explore-events/internal/domain/requests"
	"github.com/katesim/explore-events/internal/domain/users"
	"github.com/katesim/explore-events/internal/stats"
)

const (
	typeValidationError = "https://explore.events/problems/validation-error"
	typeNotFound        = "https://explore.events/problems/not-found"
	typeForbidden       = "https://explore.events/problems/forbidden"
	typeConflict        = "https://explore.events/problems/conflict"
	typeServerError     = "https://explore.events/problems/server-error"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, env string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request body", err, env)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request body", err, env)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, key, env string) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue(key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request",
			events.ValidationError{Field: key, Message: "must be a positive integer"}, env)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, events.ValidationError{Field: key, Message: "must be a non-negative integer"}
	}
	return value, nil
}

func queryInt64List(r *http.Request, key string) ([]int64, error) {
	values := r.URL.Query()[key]
	var result []int64
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, events.ValidationError{Field: key, Message: "must be a list of integers"}
			}
			result = append(result, id)
		}
	}
	return result, nil
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, events.ValidationError{Field: key, Message: "must be an RFC 3339 timestamp"}
	}
	return &value, nil
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, events.ValidationError{Field: key, Message: "must be a boolean"}
	}
	return &value, nil
}

// writeDomainError maps domain sentinels onto problem responses. Every
// handler funnels service errors through here so status mapping stays
// in one place.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var eventsValidation events.ValidationError
	var statsValidation stats.ValidationError
	var fieldErrors validator.ValidationErrors

	switch {
	case errors.As(err, &eventsValidation),
		errors.As(err, &statsValidation),
		errors.As(err, &fieldErrors):
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, env)
	case errors.Is(err, events.ErrNotFound),
		errors.Is(err, requests.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, categories.ErrNotFound),
		errors.Is(err, compilations.ErrNotFound),
		errors.Is(err, comments.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", err, env)
	case errors.Is(err, events.ErrForbidden),
		errors.Is(err, requests.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Operation not allowed", err, env)
	case errors.Is(err, events.ErrConflict),
		errors.Is(err, requests.ErrConflict),
		errors.Is(err, users.ErrEmailExists),
		errors.Is(err, categories.ErrNameExists),
		errors.Is(err, categories.ErrInUse),
		errors.Is(err, comments.ErrEventNotPublished):
		problem.Write(w, r, http.StatusConflict, typeConflict, "Conflict", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", err, env)
	}
}
