package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Niracler/song/internal/store"
)

// requireActor resolves the caller identity from the bearer token, writing a
// 401 when it is missing or invalid. Tokens are issued by the external auth
// collaborator; this only verifies the signature and extracts the `sub` and
// `username` claims.
func (s *Server) requireActor(w http.ResponseWriter, r *http.Request) (store.Actor, bool) {
	if parseBearerToken(r.Header.Get("Authorization")) == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authorization required"})
		return store.Actor{}, false
	}
	actor, ok := s.actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
		return store.Actor{}, false
	}
	return actor, true
}

// actorFromRequest resolves the caller identity without writing a response.
// Reads stay public; this lets handlers personalize defaults when a valid
// token happens to be present.
func (s *Server) actorFromRequest(r *http.Request) (store.Actor, bool) {
	raw := parseBearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		return store.Actor{}, false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return store.Actor{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return store.Actor{}, false
	}

	actor := store.Actor{}
	switch sub := claims["sub"].(type) {
	case string:
		actor.UserID, _ = strconv.ParseInt(sub, 10, 64)
	case float64:
		actor.UserID = int64(sub)
	}
	if username, ok := claims["username"].(string); ok {
		actor.Username = username
	}
	if actor.UserID == 0 && actor.Username == "" {
		return store.Actor{}, false
	}
	return actor, true
}

func parseBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
