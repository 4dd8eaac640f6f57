package httpapi

import (
	"net/http"
	"strconv"

	"github.com/Niracler/song/internal/store"
)

type playlistCreateRequest struct {
	ID          *int64 `json:"id" validate:"omitempty,gt=0"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
}

type playlistUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Tags        *string `json:"tags"`
	Track       *int64  `json:"track" validate:"omitempty,gt=0"`
}

type playlistTracksRequest struct {
	Songs []int64 `json:"songs" validate:"required,min=1,dive,gt=0"`
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	playlists, total, err := s.playlists.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(newPlaylistViews(playlists), total, params))
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid playlist id"})
		return
	}
	playlist, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistDetailView(playlist))
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req playlistCreateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	playlist, err := s.playlists.Create(r.Context(), actor, store.NewPlaylist{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		TagString:   req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPlaylistDetailView(playlist))
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid playlist id"})
		return
	}

	var req playlistUpdateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	playlist, err := s.playlists.Update(r.Context(), id, store.PlaylistChange{
		Name:        req.Name,
		Description: req.Description,
		TagString:   req.Tags,
		AddTrack:    req.Track,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistDetailView(playlist))
}

func (s *Server) handleAddPlaylistTracks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid playlist id"})
		return
	}

	var req playlistTracksRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	playlist, err := s.playlists.AddTracks(r.Context(), id, req.Songs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistDetailView(playlist))
}

func (s *Server) handleRemovePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid playlist id"})
		return
	}
	songID, err := strconv.ParseInt(r.PathValue("songId"), 10, 64)
	if err != nil || songID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	if err := s.playlists.RemoveTrack(r.Context(), id, songID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid playlist id"})
		return
	}
	if err := s.playlists.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
