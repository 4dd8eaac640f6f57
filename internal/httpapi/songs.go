package httpapi

import (
	"net/http"

	"github.com/Niracler/song/internal/store"
)

type songCreateRequest struct {
	ID      *int64  `json:"id" validate:"omitempty,gt=0"`
	Name    string  `json:"name" validate:"required"`
	File    string  `json:"file" validate:"required"`
	Lyrics  string  `json:"lyrics"`
	Authors []int64 `json:"authors" validate:"omitempty,dive,gt=0"`
}

type songUpdateRequest struct {
	Name    *string `json:"name"`
	File    *string `json:"file"`
	Lyrics  *string `json:"lyrics"`
	Authors []int64 `json:"authors" validate:"omitempty,dive,gt=0"`
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	songs, total, err := s.songs.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(newSongViews(songs), total, params))
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}
	song, err := s.songs.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongDetailView(song))
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req songCreateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	song, err := s.songs.Create(r.Context(), actor, store.NewSong{
		ID:      req.ID,
		Name:    req.Name,
		File:    req.File,
		Lyrics:  req.Lyrics,
		Authors: req.Authors,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSongDetailView(song))
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	var req songUpdateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	song, err := s.songs.Update(r.Context(), id, store.SongChange{
		Name:    req.Name,
		File:    req.File,
		Lyrics:  req.Lyrics,
		Authors: req.Authors,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongDetailView(song))
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}
	if err := s.songs.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
