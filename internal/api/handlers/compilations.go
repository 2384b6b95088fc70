package handlers

import (
	"net/http"

	"github.com/katesim/explore-events/internal/api/problem"
	"github.com/katesim/explore-events/internal/domain/compilations"
)

type CompilationsHandler struct {
	Service *compilations.Service
	Env     string
}

func NewCompilationsHandler(service *compilations.Service, env string) *CompilationsHandler {
	return &CompilationsHandler{Service: service, Env: env}
}

type newCompilationRequest struct {
	Title    string  `json:"title" validate:"required,min=1,max=50"`
	Pinned   bool    `json:"pinned"`
	EventIDs []int64 `json:"events" validate:"omitempty,dive,gt=0"`
}

type updateCompilationRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=50"`
	Pinned   *bool   `json:"pinned"`
	EventIDs []int64 `json:"events" validate:"omitempty,dive,gt=0"`
}

type compilationResponse struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Pinned   bool    `json:"pinned"`
	EventIDs []int64 `json:"events"`
}

func toCompilationResponse(compilation *compilations.Compilation) compilationResponse {
	eventIDs := compilation.EventIDs
	if eventIDs == nil {
		eventIDs = []int64{}
	}
	return compilationResponse{
		ID:       compilation.ID,
		Title:    compilation.Title,
		Pinned:   compilation.Pinned,
		EventIDs: eventIDs,
	}
}

func (h *CompilationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body newCompilationRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	created, err := h.Service.Create(r.Context(), compilations.Compilation{
		Title:    body.Title,
		Pinned:   body.Pinned,
		EventIDs: body.EventIDs,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, toCompilationResponse(created))
}

func (h *CompilationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	compilationID, ok := pathID(w, r, "compId", h.Env)
	if !ok {
		return
	}

	compilation, err := h.Service.Get(r.Context(), compilationID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toCompilationResponse(compilation))
}

func (h *CompilationsHandler) List(w http.ResponseWriter, r *http.Request) {
	pinned, err := queryBool(r, "pinned")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, h.Env)
		return
	}
	from, size, ok := pageParams(w, r, h.Env)
	if !ok {
		return
	}

	result, err := h.Service.List(r.Context(), pinned, from, size)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	responses := make([]compilationResponse, 0, len(result))
	for i := range result {
		responses = append(responses, toCompilationResponse(&result[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *CompilationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	compilationID, ok := pathID(w, r, "compId", h.Env)
	if !ok {
		return
	}

	var body updateCompilationRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	updated, err := h.Service.Update(r.Context(), compilationID, compilations.Patch{
		Title:    body.Title,
		Pinned:   body.Pinned,
		EventIDs: body.EventIDs,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toCompilationResponse(updated))
}

func (h *CompilationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	compilationID, ok := pathID(w, r, "compId", h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), compilationID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
