package httpapi

import (
	"net/http"

	"github.com/Niracler/song/internal/store"
)

type tagCreateRequest struct {
	ID   *int64 `json:"id" validate:"omitempty,gt=0"`
	Name string `json:"name" validate:"required"`
}

type tagRenameRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	tags, total, err := s.tags.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(newTagViews(tags), total, params))
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tag id"})
		return
	}
	tag, err := s.tags.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTagView(tag))
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}

	var req tagCreateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	tag, err := s.tags.Create(r.Context(), store.NewTag{ID: req.ID, Name: req.Name})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTagView(tag))
}

func (s *Server) handleRenameTag(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tag id"})
		return
	}

	var req tagRenameRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	tag, err := s.tags.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTagView(tag))
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tag id"})
		return
	}
	if err := s.tags.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
