package httpapi

import (
	"net/http"

	"github.com/Niracler/song/internal/store"
)

type favoriteCreateRequest struct {
	ID       *int64 `json:"id" validate:"omitempty,gt=0"`
	Playlist int64  `json:"playlist" validate:"required,gt=0"`
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	// With no explicit filters, an authenticated caller sees their own
	// favorites rather than everyone's.
	if len(params.Filters) == 0 {
		if actor, ok := s.actorFromRequest(r); ok && actor.Username != "" {
			params.Filters["username"] = actor.Username
		}
	}

	favorites, total, err := s.favorites.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(newFavoriteViews(favorites), total, params))
}

func (s *Server) handleGetFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid favorite id"})
		return
	}
	favorite, err := s.favorites.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFavoriteView(favorite))
}

func (s *Server) handleCreateFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req favoriteCreateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	favorite, err := s.favorites.Create(r.Context(), actor, store.NewFavorite{
		ID:         req.ID,
		PlaylistID: req.Playlist,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFavoriteView(favorite))
}

func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid favorite id"})
		return
	}
	if err := s.favorites.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
