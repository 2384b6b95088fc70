package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/katesim/explore-events/internal/api/problem"
	"github.com/katesim/explore-events/internal/stats"
)

// StatsHandler serves the hit recording endpoints of the stats server.
type StatsHandler struct {
	Service *stats.Service
	Env     string
}

func NewStatsHandler(service *stats.Service, env string) *StatsHandler {
	return &StatsHandler{Service: service, Env: env}
}

type hitRequest struct {
	App       string `json:"app" validate:"required,max=100"`
	URI       string `json:"uri" validate:"required,max=2000"`
	IP        string `json:"ip" validate:"required,max=45"`
	Timestamp string `json:"timestamp"`
}

func (h *StatsHandler) RecordHit(w http.ResponseWriter, r *http.Request) {
	var body hitRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	var timestamp time.Time
	if raw := strings.TrimSpace(body.Timestamp); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request",
				stats.ValidationError{Field: "timestamp", Message: "must be an RFC 3339 timestamp"}, h.Env)
			return
		}
		timestamp = parsed
	}

	if _, err := h.Service.Record(r.Context(), stats.Hit{
		App:       body.App,
		URI:       body.URI,
		IP:        body.IP,
		Timestamp: timestamp,
	}); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *StatsHandler) Counts(w http.ResponseWriter, r *http.Request) {
	start, err := queryTime(r, "start")
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	end, err := queryTime(r, "end")
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	if start == nil || end == nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidationError, "Invalid request",
			stats.ValidationError{Field: "start", Message: "start and end are required"}, h.Env)
		return
	}

	unique, err := queryBool(r, "unique")
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	params := stats.CountParams{Start: *start, End: *end}
	if unique != nil {
		params.Unique = *unique
	}
	for _, raw := range r.URL.Query()["uris"] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				params.URIs = append(params.URIs, part)
			}
		}
	}

	counts, err := h.Service.Count(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	if counts == nil {
		counts = []stats.ViewCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}
