package httpapi

import (
	"net/http"

	"github.com/Niracler/song/internal/store"
)

type authorCreateRequest struct {
	ID          *int64 `json:"id" validate:"omitempty,gt=0"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type authorUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	authors, total, err := s.authors.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(newAuthorViews(authors), total, params))
}

func (s *Server) handleGetAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid author id"})
		return
	}
	author, err := s.authors.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthorView(author))
}

func (s *Server) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}

	var req authorCreateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	author, err := s.authors.Create(r.Context(), store.NewAuthor{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAuthorView(author))
}

func (s *Server) handleUpdateAuthor(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid author id"})
		return
	}

	var req authorUpdateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	author, err := s.authors.Update(r.Context(), id, store.AuthorChange{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthorView(author))
}

func (s *Server) handleDeleteAuthor(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid author id"})
		return
	}
	if err := s.authors.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
