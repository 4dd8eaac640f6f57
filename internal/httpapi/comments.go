package httpapi

import (
	"net/http"

	"github.com/Niracler/song/internal/store"
)

type commentCreateRequest struct {
	ID   *int64 `json:"id" validate:"omitempty,gt=0"`
	Body string `json:"body" validate:"required"`
}

type commentUpdateRequest struct {
	Body string `json:"body" validate:"required"`
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	comments, total, err := s.comments.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(newCommentViews(comments), total, params))
}

func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid comment id"})
		return
	}
	comment, err := s.comments.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentView(comment))
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req commentCreateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	comment, err := s.comments.Create(r.Context(), actor, store.NewComment{ID: req.ID, Body: req.Body})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCommentView(comment))
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid comment id"})
		return
	}

	var req commentUpdateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	comment, err := s.comments.Update(r.Context(), id, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentView(comment))
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid comment id"})
		return
	}
	if err := s.comments.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
