package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Niracler/song/internal/store"
)

// SongService coordinates track-level operations.
type SongService interface {
	List(ctx context.Context, params store.ListParams) ([]store.Song, int, error)
	Get(ctx context.Context, id int64) (store.Song, error)
	Create(ctx context.Context, actor store.Actor, song store.NewSong) (store.Song, error)
	Update(ctx context.Context, id int64, change store.SongChange) (store.Song, error)
	Delete(ctx context.Context, id int64) error
}

// AuthorService coordinates author catalogue workflows.
type AuthorService interface {
	List(ctx context.Context, params store.ListParams) ([]store.Author, int, error)
	Get(ctx context.Context, id int64) (store.Author, error)
	Create(ctx context.Context, author store.NewAuthor) (store.Author, error)
	Update(ctx context.Context, id int64, change store.AuthorChange) (store.Author, error)
	Delete(ctx context.Context, id int64) error
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	List(ctx context.Context, params store.ListParams) ([]store.Playlist, int, error)
	Get(ctx context.Context, id int64) (store.Playlist, error)
	Create(ctx context.Context, actor store.Actor, playlist store.NewPlaylist) (store.Playlist, error)
	Update(ctx context.Context, id int64, change store.PlaylistChange) (store.Playlist, error)
	AddTracks(ctx context.Context, id int64, songIDs []int64) (store.Playlist, error)
	RemoveTrack(ctx context.Context, id, songID int64) error
	Delete(ctx context.Context, id int64) error
}

// TagService coordinates tag workflows.
type TagService interface {
	List(ctx context.Context, params store.ListParams) ([]store.Tag, int, error)
	Get(ctx context.Context, id int64) (store.Tag, error)
	Create(ctx context.Context, tag store.NewTag) (store.Tag, error)
	Rename(ctx context.Context, id int64, name string) (store.Tag, error)
	Delete(ctx context.Context, id int64) error
}

// CommentService coordinates comment workflows.
type CommentService interface {
	List(ctx context.Context, params store.ListParams) ([]store.Comment, int, error)
	Get(ctx context.Context, id int64) (store.Comment, error)
	Create(ctx context.Context, actor store.Actor, comment store.NewComment) (store.Comment, error)
	Update(ctx context.Context, id int64, body string) (store.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// FavoriteService coordinates playlist favoriting workflows.
type FavoriteService interface {
	List(ctx context.Context, params store.ListParams) ([]store.Favorite, int, error)
	Get(ctx context.Context, id int64) (store.Favorite, error)
	Create(ctx context.Context, actor store.Actor, favorite store.NewFavorite) (store.Favorite, error)
	Delete(ctx context.Context, id int64) error
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	songs     SongService
	authors   AuthorService
	playlists PlaylistService
	tags      TagService
	comments  CommentService
	favorites FavoriteService

	jwtSecret []byte
	validate  *validator.Validate
}

// New configures a Server with the given services. jwtSecret verifies the
// bearer tokens issued by the external auth collaborator.
func New(
	songs SongService,
	authors AuthorService,
	playlists PlaylistService,
	tags TagService,
	comments CommentService,
	favorites FavoriteService,
	jwtSecret []byte,
) *Server {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		songs:     songs,
		authors:   authors,
		playlists: playlists,
		tags:      tags,
		comments:  comments,
		favorites: favorites,
		jwtSecret: jwtSecret,
		validate:  validate,
	}
}

// Routes exposes the HTTP handlers for the catalog.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/songs", s.handleListSongs)
	mux.HandleFunc("POST /api/v1/songs", s.handleCreateSong)
	mux.HandleFunc("GET /api/v1/songs/{id}", s.handleGetSong)
	mux.HandleFunc("PUT /api/v1/songs/{id}", s.handleUpdateSong)
	mux.HandleFunc("DELETE /api/v1/songs/{id}", s.handleDeleteSong)

	mux.HandleFunc("GET /api/v1/authors", s.handleListAuthors)
	mux.HandleFunc("POST /api/v1/authors", s.handleCreateAuthor)
	mux.HandleFunc("GET /api/v1/authors/{id}", s.handleGetAuthor)
	mux.HandleFunc("PUT /api/v1/authors/{id}", s.handleUpdateAuthor)
	mux.HandleFunc("DELETE /api/v1/authors/{id}", s.handleDeleteAuthor)

	mux.HandleFunc("GET /api/v1/playlists", s.handleListPlaylists)
	mux.HandleFunc("POST /api/v1/playlists", s.handleCreatePlaylist)
	mux.HandleFunc("GET /api/v1/playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("PUT /api/v1/playlists/{id}", s.handleUpdatePlaylist)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", s.handleDeletePlaylist)
	mux.HandleFunc("PUT /api/v1/playlists/{id}/tracks", s.handleAddPlaylistTracks)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/tracks/{songId}", s.handleRemovePlaylistTrack)

	mux.HandleFunc("GET /api/v1/tags", s.handleListTags)
	mux.HandleFunc("POST /api/v1/tags", s.handleCreateTag)
	mux.HandleFunc("GET /api/v1/tags/{id}", s.handleGetTag)
	mux.HandleFunc("PUT /api/v1/tags/{id}", s.handleRenameTag)
	mux.HandleFunc("DELETE /api/v1/tags/{id}", s.handleDeleteTag)

	mux.HandleFunc("GET /api/v1/comments", s.handleListComments)
	mux.HandleFunc("POST /api/v1/comments", s.handleCreateComment)
	mux.HandleFunc("GET /api/v1/comments/{id}", s.handleGetComment)
	mux.HandleFunc("PUT /api/v1/comments/{id}", s.handleUpdateComment)
	mux.HandleFunc("DELETE /api/v1/comments/{id}", s.handleDeleteComment)

	mux.HandleFunc("GET /api/v1/favorites", s.handleListFavorites)
	mux.HandleFunc("POST /api/v1/favorites", s.handleCreateFavorite)
	mux.HandleFunc("GET /api/v1/favorites/{id}", s.handleGetFavorite)
	mux.HandleFunc("DELETE /api/v1/favorites/{id}", s.handleDeleteFavorite)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps store failures onto the wire taxonomy: validation → 400,
// missing references → 404, duplicate id / duplicate favorite → 409.
func writeError(w http.ResponseWriter, err error) {
	var vErr *store.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Message, Field: vErr.Field})
	case errors.Is(err, store.ErrIDTaken), errors.Is(err, store.ErrFavoriteExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrSongNotFound),
		errors.Is(err, store.ErrAuthorNotFound),
		errors.Is(err, store.ErrPlaylistNotFound),
		errors.Is(err, store.ErrTagNotFound),
		errors.Is(err, store.ErrCommentNotFound),
		errors.Is(err, store.ErrFavoriteNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeValid decodes the JSON body into dst and runs struct validation,
// reporting the first failing field.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "failed validation on '" + fe.Tag() + "'",
				Field: fe.Field(),
			})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}
