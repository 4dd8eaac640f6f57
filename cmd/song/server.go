package main

import (
	"net/http"
	"strings"

	"github.com/Niracler/song/internal/app/authors"
	"github.com/Niracler/song/internal/app/comments"
	"github.com/Niracler/song/internal/app/favorites"
	"github.com/Niracler/song/internal/app/playlists"
	"github.com/Niracler/song/internal/app/songs"
	"github.com/Niracler/song/internal/app/tags"
	"github.com/Niracler/song/internal/httpapi"
	"github.com/Niracler/song/internal/middleware"
	"github.com/Niracler/song/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	songSvc := songs.New(dataStore)
	authorSvc := authors.New(dataStore)
	playlistSvc := playlists.New(dataStore)
	tagSvc := tags.New(dataStore)
	commentSvc := comments.New(dataStore)
	favoriteSvc := favorites.New(dataStore)

	api := httpapi.New(songSvc, authorSvc, playlistSvc, tagSvc, commentSvc, favoriteSvc, []byte(cfg.JWTSecret))

	handler := middleware.Metrics()(api.Routes())
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)

	return withCORS(cfg.AllowedOrigins, handler)
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
