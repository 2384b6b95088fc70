package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/katesim/explore-events/internal/api/problem"
	"github.com/katesim/explore-events/internal/domain/categories"
	"github.com/katesim/explore-events/internal/domain/events"
	"github.com/katesim/explore-events/internal/domain/users"
	"github.com/katesim/explore-events/internal/stats"
)

type EventsHandler struct {
	Service    *events.Service
	Users      *users.Service
	Categories *categories.Service
	Stats      *stats.Client
	Env        string
}

func NewEventsHandler(service *events.Service, usersService *users.Service, categoriesService *categories.Service, statsClient *stats.Client, env string) *EventsHandler {
	return &EventsHandler{
		Service:    service,
		Users:      usersService,
		Categories: categoriesService,
		Stats:      statsClient,
		Env:        env,
	}
}

// requireCategory resolves a referenced category so event writes answer
// 404 for categories that do not exist instead of failing downstream.
func (h *EventsHandler) requireCategory(w http.ResponseWriter, r *http.Request, categoryID int64) bool {
	if _, err := h.Categories.Get(r.Context(), categoryID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return false
	}
	return true
}

type locationPayload struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type newEventRequest struct {
	Title             string          `json:"title" validate:"required,min=3,max=120"`
	Annotation        string          `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string          `json:"description" validate:"required,min=20,max=7000"`
	EventDate         time.Time       `json:"eventDate" validate:"required"`
	Location          locationPayload `json:"location"`
	Paid              bool            `json:"paid"`
	ParticipantLimit  int             `json:"participantLimit" validate:"gte=0"`
	RequestModeration *bool           `json:"requestModeration"`
	Category          int64           `json:"category" validate:"required,gt=0"`
}

type updateEventRequest struct {
	Title             *string          `json:"title" validate:"omitempty,min=3,max=120"`
	Annotation        *string          `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Description       *string          `json:"description" validate:"omitempty,min=20,max=7000"`
	EventDate         *time.Time       `json:"eventDate"`
	Location          *locationPayload `json:"location"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int             `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool            `json:"requestModeration"`
	Category          *int64           `json:"category" validate:"omitempty,gt=0"`
	StateAction       string           `json:"stateAction"`
}

func (body updateEventRequest) patch() events.Patch {
	patch := events.Patch{
		Title:             body.Title,
		Annotation:        body.Annotation,
		Description:       body.Description,
		EventDate:         body.EventDate,
		ParticipantLimit:  body.ParticipantLimit,
		Paid:              body.Paid,
		RequestModeration: body.RequestModeration,
		CategoryID:        body.Category,
	}
	if body.Location != nil {
		patch.Latitude = &body.Location.Lat
		patch.Longitude = &body.Location.Lon
	}
	return patch
}

type eventResponse struct {
	ID                int64           `json:"id"`
	Title             string          `json:"title"`
	Annotation        string          `json:"annotation"`
	Description       string          `json:"description"`
	EventDate         time.Time       `json:"eventDate"`
	Location          locationPayload `json:"location"`
	Paid              bool            `json:"paid"`
	ParticipantLimit  int             `json:"participantLimit"`
	ConfirmedRequests int             `json:"confirmedRequests"`
	RequestModeration bool            `json:"requestModeration"`
	State             string          `json:"state"`
	CreatedOn         time.Time       `json:"createdOn"`
	PublishedOn       *time.Time      `json:"publishedOn,omitempty"`
	Initiator         int64           `json:"initiator"`
	Category          int64           `json:"category"`
	Views             int64           `json:"views"`
}

func toEventResponse(event *events.Event) eventResponse {
	return eventResponse{
		ID:                event.ID,
		Title:             event.Title,
		Annotation:        event.Annotation,
		Description:       event.Description,
		EventDate:         event.EventDate,
		Location:          locationPayload{Lat: event.Latitude, Lon: event.Longitude},
		Paid:              event.Paid,
		ParticipantLimit:  event.ParticipantLimit,
		ConfirmedRequests: event.ConfirmedRequests,
		RequestModeration: event.RequestModeration,
		State:             string(event.State),
		CreatedOn:         event.CreatedOn,
		PublishedOn:       event.PublishedOn,
		Initiator:         event.InitiatorID,
		Category:          event.CategoryID,
	}
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}

	var body newEventRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}
	if _, err := h.Users.Get(r.Context(), userID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	if !h.requireCategory(w, r, body.Category) {
		return
	}

	moderation := true
	if body.RequestModeration != nil {
		moderation = *body.RequestModeration
	}

	created, err := h.Service.Create(r.Context(), events.Event{
		Title:             body.Title,
		Annotation:        body.Annotation,
		Description:       body.Description,
		EventDate:         body.EventDate,
		Latitude:          body.Location.Lat,
		Longitude:         body.Location.Lon,
		Paid:              body.Paid,
		ParticipantLimit:  body.ParticipantLimit,
		RequestModeration: moderation,
		InitiatorID:       userID,
		CategoryID:        body.Category,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(created))
}

func (h *EventsHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}
	from, size, ok := pageParams(w, r, h.Env)
	if !ok {
		return
	}

	result, err := h.Service.ListByInitiator(r.Context(), userID, from, size)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, h.toEventResponses(r, result))
}

func (h *EventsHandler) GetByOwner(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	event, err := h.Service.GetByIDAndInitiator(r.Context(), eventID, userID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *EventsHandler) UpdateByOwner(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	var body updateEventRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	action, err := events.ParseOwnerStateAction(body.StateAction)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	if body.Category != nil && !h.requireCategory(w, r, *body.Category) {
		return
	}

	updated, err := h.Service.UpdateByOwner(r.Context(), eventID, userID, body.patch(), action)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(updated))
}

func (h *EventsHandler) AdminSearch(w http.ResponseWriter, r *http.Request) {
	params, err := parseAdminSearch(r)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Search(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, h.toEventResponses(r, result))
}

func (h *EventsHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	var body updateEventRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	action, err := events.ParseAdminStateAction(body.StateAction)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	if body.Category != nil && !h.requireCategory(w, r, *body.Category) {
		return
	}

	updated, err := h.Service.UpdateByAdmin(r.Context(), eventID, body.patch(), action)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(updated))
}

func (h *EventsHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	params, err := parsePublicSearch(r)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.SearchPublished(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	h.recordHit(r)
	writeJSON(w, http.StatusOK, h.toEventResponses(r, result))
}

func (h *EventsHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}

	event, err := h.Service.GetPublishedByID(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	h.recordHit(r)
	response := toEventResponse(event)
	response.Views = h.viewCount(r, event.ID)
	writeJSON(w, http.StatusOK, response)
}

// recordHit reports the page view to the stats service. Failures are
// logged and swallowed so stats downtime never breaks reads.
func (h *EventsHandler) recordHit(r *http.Request) {
	if h.Stats == nil {
		return
	}
	if err := h.Stats.RecordHit(r.Context(), r.URL.Path, clientAddr(r)); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("hit recording failed")
	}
}

func (h *EventsHandler) viewCount(r *http.Request, eventID int64) int64 {
	counts := h.viewCounts(r, []int64{eventID})
	return counts[eventID]
}

func (h *EventsHandler) viewCounts(r *http.Request, eventIDs []int64) map[int64]int64 {
	result := make(map[int64]int64, len(eventIDs))
	if h.Stats == nil || len(eventIDs) == 0 {
		return result
	}

	uris := make([]string, 0, len(eventIDs))
	for _, id := range eventIDs {
		uris = append(uris, fmt.Sprintf("/events/%d", id))
	}

	counts, err := h.Stats.Counts(r.Context(), uris)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("view count lookup failed")
		return result
	}
	for _, id := range eventIDs {
		result[id] = counts[fmt.Sprintf("/events/%d", id)]
	}
	return result
}

func (h *EventsHandler) toEventResponses(r *http.Request, result []events.Event) []eventResponse {
	eventIDs := make([]int64, 0, len(result))
	for i := range result {
		eventIDs = append(eventIDs, result[i].ID)
	}
	views := h.viewCounts(r, eventIDs)

	responses := make([]eventResponse, 0, len(result))
	for i := range result {
		response := toEventResponse(&result[i])
		response.Views = views[result[i].ID]
		responses = append(responses, response)
	}
	return responses
}

func parseAdminSearch(r *http.Request) (events.AdminSearch, error) {
	var params events.AdminSearch
	var err error

	if params.UserIDs, err = queryInt64List(r, "users"); err != nil {
		return params, err
	}
	if params.CategoryIDs, err = queryInt64List(r, "categories"); err != nil {
		return params, err
	}
	if params.RangeStart, err = queryTime(r, "rangeStart"); err != nil {
		return params, err
	}
	if params.RangeEnd, err = queryTime(r, "rangeEnd"); err != nil {
		return params, err
	}
	for _, raw := range r.URL.Query()["states"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			state, err := events.ParseState(part)
			if err != nil {
				return params, err
			}
			params.States = append(params.States, state)
		}
	}
	if params.From, err = queryInt(r, "from", 0); err != nil {
		return params, err
	}
	if params.Size, err = queryInt(r, "size", 10); err != nil {
		return params, err
	}
	return params, nil
}

func parsePublicSearch(r *http.Request) (events.PublicSearch, error) {
	var params events.PublicSearch
	var err error

	params.Text = strings.TrimSpace(r.URL.Query().Get("text"))
	if params.CategoryIDs, err = queryInt64List(r, "categories"); err != nil {
		return params, err
	}
	if params.Paid, err = queryBool(r, "paid"); err != nil {
		return params, err
	}
	if params.RangeStart, err = queryTime(r, "rangeStart"); err != nil {
		return params, err
	}
	if params.RangeEnd, err = queryTime(r, "rangeEnd"); err != nil {
		return params, err
	}
	if params.RangeStart != nil && params.RangeEnd != nil && params.RangeEnd.Before(*params.RangeStart) {
		return params, events.ValidationError{Field: "rangeEnd", Message: "must be on or after rangeStart"}
	}
	if available, err := queryBool(r, "onlyAvailable"); err != nil {
		return params, err
	} else if available != nil {
		params.OnlyAvailable = *available
	}
	if params.From, err = queryInt(r, "from", 0); err != nil {
		return params, err
	}
	if params.Size, err = queryInt(r, "size", 10); err != nil {
		return params, err
	}
	return params, nil
}

func pageParams(w http.ResponseWriter, r *http.Request, env string) (int, int, bool) {
	from, err := queryInt(r, "from", 0)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, env)
		return 0, 0, false
	}
	size, err := queryInt(r, "size", 10)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request", err, env)
		return 0, 0, false
	}
	return from, size, true
}

func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		return host[:idx]
	}
	return host
}
