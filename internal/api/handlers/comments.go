package handlers

import (
	"net/http"
	"time"

	"github.com/katesim/explore-events/internal/domain/comments"
)

type CommentsHandler struct {
	Service *comments.Service
	Env     string
}

func NewCommentsHandler(service *comments.Service, env string) *CommentsHandler {
	return &CommentsHandler{Service: service, Env: env}
}

type newCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

type commentResponse struct {
	ID      int64     `json:"id"`
	Event   int64     `json:"event"`
	Author  int64     `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

func toCommentResponse(comment *comments.Comment) commentResponse {
	return commentResponse{
		ID:      comment.ID,
		Event:   comment.EventID,
		Author:  comment.AuthorID,
		Text:    comment.Text,
		Created: comment.CreatedOn,
	}
}

func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.Env)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId", h.Env)
	if !ok {
		return
	}

	var body newCommentRequest
	if !decodeJSON(w, r, h.Env, &body) {
		return
	}

	created, err := h.Service.Create(r.Context(), comments.Comment{
		EventID:  eventID,
		AuthorID: userID,
		Text:     body.Text,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(created))
}

func (h *CommentsHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}
	from, size, ok := pageParams(w, r, h.Env)
	if !ok {
		return
	}

	result, err := h.Service.ListByEvent(r.Context(), eventID, from, size)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	responses := make([]commentResponse, 0, len(result))
	for i := range result {
		responses = append(responses, toCommentResponse(&result[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}
