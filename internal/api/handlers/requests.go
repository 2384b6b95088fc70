package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/katesim/explore-events/internal/api/problem"
	"github.com/katesim/explore-events/internal/domain/events"
	"github.com/katesim/explore-events/internal/domain/requests"
	"github.com/katesim/explore-events/internal/domain/users"
)

type RequestsHandler struct {
	Service *requests.Service
	Users   *users.Service
	Env     string
}

func NewRequestsHandler(service *requests.Service, usersService *users.Service, env string) *RequestsHandler {
	return &RequestsHandler{Service: service, Users: usersService, Env: env}
}

// requireUser resolves the path user against the user directory so
// requester-scoped endpoints answer 404 for users that do not exist.
func (h *RequestsHandler) requireUser(w http.ResponseWriter, r *http.Request, userID int64) bool {
	if _, err := h.Users.Get(r.Context(), userID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return false
	}
	return true
}

type requestResponse struct {
	ID        int64     `json:"id"`
	Event     int64     `json:"event"`
	Requester int64     `json:"requester"`
	Created   time.Time `json:"created"`
	Status    string    `json:"status"`
}

func toRequestResponse(request *requests.Request) requestResponse {
	return requestResponse{
		ID:        request.ID,
		Event:     request.EventID,
		Requester: request.RequesterID,
		Created:   request.CreatedOn,
		Status:    string(request.Status),
	}
}

func toRequestResponses(batch []requests.Request) []requestResponse {
	responses := make([]requestResponse, 0, len(batch))
	for i := range batch {
		responses = append(responses, toRequestResponse(&batch[i]))
	}
	return responses
}

func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}

	if !h.requireUser(w, r, userID) {
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("eventId"))
	eventID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || eventID <= 0 {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request",
			events.ValidationError{Field: "eventId", Message: "must be a positive integer"}, h.Env)
		return
	}

	created, err := h.Service.Create(r.Context(), eventID, userID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *RequestsHandler) ListByRequester(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}

	if !h.requireUser(w, r, userID) {
		return
	}

	result, err := h.Service.ListByRequester(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponses(result))
}

func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "requestId", h.Env)
	if !ok {
		return
	}
	if !h.requireUser(w, r, userID) {
		return
	}

	canceled, err := h.Service.Cancel(r.Context(), requestID, userID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(canceled))
}

// ListForEvent returns the requests addressed to one of the caller's
// own events.
func (h *RequestsHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	result, err := h.Service.ListForEventByInitiator(r.Context(), nil, eventID, userID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponses(result))
}

type statusUpdateRequest struct {
	RequestIDs []int64 `json:"requestIds" validate:"required,min=1,dive,gt=0"`
	Status     string  `json:"status" validate:"required,oneof=CONFIRMED REJECTED"`
}

type statusUpdateResponse struct {
	ConfirmedRequests []requestResponse `json:"confirmedRequests"`
	RejectedRequests  []requestResponse `json:"rejectedRequests"`
}

// UpdateStatus confirms or rejects a batch of pending requests for one
// of the caller's own events.
func (h *RequestsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	var body statusUpdateRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	var response statusUpdateResponse
	switch requests.Status(body.Status) {
	case requests.StatusConfirmed:
		updated, err := h.Service.Confirm(r.Context(), body.RequestIDs, eventID, userID)
		if err != nil {
			writeDomainError(w, r, err, h.Env)
			return
		}
		for i := range updated {
			if updated[i].Status == requests.StatusConfirmed {
				response.ConfirmedRequests = append(response.ConfirmedRequests, toRequestResponse(&updated[i]))
			} else {
				response.RejectedRequests = append(response.RejectedRequests, toRequestResponse(&updated[i]))
			}
		}
	case requests.StatusRejected:
		rejected, err := h.Service.Reject(r.Context(), body.RequestIDs, eventID, userID)
		if err != nil {
			writeDomainError(w, r, err, h.Env)
			return
		}
		response.RejectedRequests = toRequestResponses(rejected)
	}

	if response.ConfirmedRequests == nil {
		response.ConfirmedRequests = []requestResponse{}
	}
	if response.RejectedRequests == nil {
		response.RejectedRequests = []requestResponse{}
	}
	writeJSON(w, http.StatusOK, response)
}
