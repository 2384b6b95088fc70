package handlers

import (
	"net/http"

	"github.com/katesim/explore-events/internal/api/problem"
	"github.com/katesim/explore-events/internal/domain/users"
)

type UsersHandler struct {
	Service *users.Service
	Env     string
}

func NewUsersHandler(service *users.Service, env string) *UsersHandler {
	return &UsersHandler{Service: service, Env: env}
}

type newUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=250"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserResponse(user *users.User) userResponse {
	return userResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body newUserRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	created, err := h.Service.Create(r.Context(), users.User{Name: body.Name, Email: body.Email})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := queryInt64List(r, "ids")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}
	from, size, ok := pageParams(w, r, h.Env)
	if !ok {
		return
	}

	result, err := h.Service.List(r.Context(), ids, from, size)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	responses := make([]userResponse, 0, len(result))
	for i := range result {
		responses = append(responses, toUserResponse(&result[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), userID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
