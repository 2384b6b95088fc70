package handlers

import (
	"net/http"

	"github.com/katesim/explore-events/internal/domain/categories"
)

type CategoriesHandler struct {
	Service *categories.Service
	Env     string
}

func NewCategoriesHandler(service *categories.Service, env string) *CategoriesHandler {
	return &CategoriesHandler{Service: service, Env: env}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	created, err := h.Service.Create(r.Context(), categories.Category{Name: body.Name})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, categoryResponse{ID: created.ID, Name: created.Name})
}

func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "catId", h.Env)
	if !ok {
		return
	}

	category, err := h.Service.Get(r.Context(), categoryID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, categoryResponse{ID: category.ID, Name: category.Name})
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	from, size, ok := pageParams(w, r, h.Env)
	if !ok {
		return
	}

	result, err := h.Service.List(r.Context(), from, size)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	responses := make([]categoryResponse, 0, len(result))
	for _, category := range result {
		responses = append(responses, categoryResponse{ID: category.ID, Name: category.Name})
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "catId", h.Env)
	if !ok {
		return
	}

	var body categoryRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	updated, err := h.Service.Rename(r.Context(), categoryID, body.Name)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, categoryResponse{ID: updated.ID, Name: updated.Name})
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "catId", h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), categoryID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
