package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Niracler/song/internal/store"
)

var testSecret = []byte("test-secret")

func testToken(t *testing.T, userID int64, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      userID,
		"username": username,
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type stubSongService struct {
	listResponse []store.Song
	listTotal    int
	listErr      error
	lastParams   store.ListParams

	single    store.Song
	singleErr error

	created    store.Song
	createErr  error
	lastActor  store.Actor
	lastCreate store.NewSong
}

func (s *stubSongService) List(ctx context.Context, params store.ListParams) ([]store.Song, int, error) {
	s.lastParams = params
	return s.listResponse, s.listTotal, s.listErr
}

func (s *stubSongService) Get(ctx context.Context, id int64) (store.Song, error) {
	return s.single, s.singleErr
}

func (s *stubSongService) Create(ctx context.Context, actor store.Actor, song store.NewSong) (store.Song, error) {
	s.lastActor = actor
	s.lastCreate = song
	if s.createErr != nil {
		return store.Song{}, s.createErr
	}
	return s.created, nil
}

func (s *stubSongService) Update(ctx context.Context, id int64, change store.SongChange) (store.Song, error) {
	return s.single, s.singleErr
}

func (s *stubSongService) Delete(ctx context.Context, id int64) error {
	return s.singleErr
}

type stubAuthorService struct{}

func (stubAuthorService) List(context.Context, store.ListParams) ([]store.Author, int, error) {
	return nil, 0, nil
}
func (stubAuthorService) Get(context.Context, int64) (store.Author, error) {
	return store.Author{}, nil
}
func (stubAuthorService) Create(context.Context, store.NewAuthor) (store.Author, error) {
	return store.Author{}, nil
}
func (stubAuthorService) Update(context.Context, int64, store.AuthorChange) (store.Author, error) {
	return store.Author{}, nil
}
func (stubAuthorService) Delete(context.Context, int64) error { return nil }

type stubPlaylistService struct {
	single    store.Playlist
	singleErr error

	lastAddTracks []int64
}

func (s *stubPlaylistService) List(context.Context, store.ListParams) ([]store.Playlist, int, error) {
	return nil, 0, nil
}
func (s *stubPlaylistService) Get(context.Context, int64) (store.Playlist, error) {
	return s.single, s.singleErr
}
func (s *stubPlaylistService) Create(context.Context, store.Actor, store.NewPlaylist) (store.Playlist, error) {
	return s.single, s.singleErr
}
func (s *stubPlaylistService) Update(context.Context, int64, store.PlaylistChange) (store.Playlist, error) {
	return s.single, s.singleErr
}
func (s *stubPlaylistService) AddTracks(ctx context.Context, id int64, songIDs []int64) (store.Playlist, error) {
	s.lastAddTracks = songIDs
	return s.single, s.singleErr
}
func (s *stubPlaylistService) RemoveTrack(context.Context, int64, int64) error {
	return s.singleErr
}
func (s *stubPlaylistService) Delete(context.Context, int64) error { return s.singleErr }

type stubTagService struct {
	created   store.Tag
	createErr error
}

func (s *stubTagService) List(context.Context, store.ListParams) ([]store.Tag, int, error) {
	return nil, 0, nil
}
func (s *stubTagService) Get(context.Context, int64) (store.Tag, error) { return store.Tag{}, nil }
func (s *stubTagService) Create(context.Context, store.NewTag) (store.Tag, error) {
	return s.created, s.createErr
}
func (s *stubTagService) Rename(context.Context, int64, string) (store.Tag, error) {
	return s.created, s.createErr
}
func (s *stubTagService) Delete(context.Context, int64) error { return nil }

type stubCommentService struct{}

func (stubCommentService) List(context.Context, store.ListParams) ([]store.Comment, int, error) {
	return nil, 0, nil
}
func (stubCommentService) Get(context.Context, int64) (store.Comment, error) {
	return store.Comment{}, nil
}
func (stubCommentService) Create(context.Context, store.Actor, store.NewComment) (store.Comment, error) {
	return store.Comment{}, nil
}
func (stubCommentService) Update(context.Context, int64, string) (store.Comment, error) {
	return store.Comment{}, nil
}
func (stubCommentService) Delete(context.Context, int64) error { return nil }

type stubFavoriteService struct {
	single     store.Favorite
	singleErr  error
	lastActor  store.Actor
	lastParams store.ListParams
}

func (s *stubFavoriteService) List(ctx context.Context, params store.ListParams) ([]store.Favorite, int, error) {
	s.lastParams = params
	return []store.Favorite{s.single}, 1, s.singleErr
}
func (s *stubFavoriteService) Get(context.Context, int64) (store.Favorite, error) {
	return s.single, s.singleErr
}
func (s *stubFavoriteService) Create(ctx context.Context, actor store.Actor, favorite store.NewFavorite) (store.Favorite, error) {
	s.lastActor = actor
	return s.single, s.singleErr
}
func (s *stubFavoriteService) Delete(context.Context, int64) error { return s.singleErr }

type testServices struct {
	songs     *stubSongService
	playlists *stubPlaylistService
	tags      *stubTagService
	favorites *stubFavoriteService
}

func newTestServer() (*Server, *testServices) {
	svcs := &testServices{
		songs:     &stubSongService{},
		playlists: &stubPlaylistService{},
		tags:      &stubTagService{},
		favorites: &stubFavoriteService{},
	}
	srv := New(svcs.songs, stubAuthorService{}, svcs.playlists, svcs.tags, stubCommentService{}, svcs.favorites, testSecret)
	return srv, svcs
}

func TestListSongsEnvelope(t *testing.T) {
	srv, svcs := newTestServer()
	svcs.songs.listResponse = []store.Song{
		{ID: 2, Name: "B", File: "b.mp3", Lyrics: "[00:01.00]Hi"},
		{ID: 1, Name: "A", File: "a.mp3"},
	}
	svcs.songs.listTotal = 12

	req := httptest.NewRequest(http.MethodGet, "/api/v1/songs?name=B&p=1&page_size=2", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Items      []map[string]any `json:"items"`
		TotalCount int              `json:"total_count"`
		Page       int              `json:"page"`
		PageSize   int              `json:"page_size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 12 || body.Page != 1 || body.PageSize != 2 {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if len(body.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(body.Items))
	}
	// The list shape omits the raw lyric blob.
	if _, ok := body.Items[0]["lyrics"]; ok {
		t.Fatalf("list item leaked lyrics: %v", body.Items[0])
	}
	if _, ok := body.Items[0]["cues"]; ok {
		t.Fatalf("list item leaked cues: %v", body.Items[0])
	}

	if svcs.songs.lastParams.Filters["name"] != "B" {
		t.Fatalf("filter not forwarded: %+v", svcs.songs.lastParams)
	}
}

func TestGetSongRendersCues(t *testing.T) {
	srv, svcs := newTestServer()
	svcs.songs.single = store.Song{
		ID:     5,
		Name:   "Track",
		File:   "a.mp3",
		Lyrics: "[01:02.50]Hello\n[00:00.00]Start",
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/songs/5", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ID   int64 `json:"id"`
		Cues []struct {
			Time float64 `json:"time"`
			Text string  `json:"text"`
		} `json:"cues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Cues) != 2 {
		t.Fatalf("expected 2 cues, got %#v", body.Cues)
	}
	if body.Cues[0].Time != 62.5 || body.Cues[0].Text != "Hello" {
		t.Fatalf("unexpected first cue: %+v", body.Cues[0])
	}
}

func TestCreateSongRequiresAuth(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/songs", bytes.NewBufferString(`{"name":"T","file":"a.mp3"}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateSongResolvesActor(t *testing.T) {
	srv, svcs := newTestServer()
	svcs.songs.created = store.Song{ID: 5, Name: "T", File: "a.mp3"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/songs", bytes.NewBufferString(`{"name":"T","file":"a.mp3"}`))
	req.Header.Set("Authorization", "Bearer "+testToken(t, 42, "ada"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svcs.songs.lastActor.UserID != 42 || svcs.songs.lastActor.Username != "ada" {
		t.Fatalf("unexpected actor: %+v", svcs.songs.lastActor)
	}
}

func TestCreateSongRejectsBadToken(t *testing.T) {
	srv, _ := newTestServer()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": float64(42)})
	signed, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/songs", bytes.NewBufferString(`{"name":"T","file":"a.mp3"}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateSongValidatesPayload(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/songs", bytes.NewBufferString(`{"file":"a.mp3"}`))
	req.Header.Set("Authorization", "Bearer "+testToken(t, 42, "ada"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Field != "name" {
		t.Fatalf("expected field name, got %+v", body)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "missing song", err: store.ErrSongNotFound, want: http.StatusNotFound},
		{name: "taken id", err: store.ErrIDTaken, want: http.StatusConflict},
		{name: "validation", err: &store.ValidationError{Field: "name", Message: "bad"}, want: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, svcs := newTestServer()
			svcs.songs.singleErr = tc.err

			req := httptest.NewRequest(http.MethodGet, "/api/v1/songs/5", nil)
			rec := httptest.NewRecorder()
			srv.Routes().ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestDuplicateFavoriteConflict(t *testing.T) {
	srv, svcs := newTestServer()
	svcs.favorites.singleErr = store.ErrFavoriteExists

	req := httptest.NewRequest(http.MethodPost, "/api/v1/favorites", bytes.NewBufferString(`{"playlist":9}`))
	req.Header.Set("Authorization", "Bearer "+testToken(t, 42, "ada"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestFavoriteFlattening(t *testing.T) {
	srv, svcs := newTestServer()
	now := time.Now()
	svcs.favorites.single = store.Favorite{
		ID:         31,
		Username:   "ada",
		PlaylistID: 9,
		CreatedAt:  now,
		Playlist: store.Playlist{
			ID:        9,
			Name:      "Mix",
			CreatorID: 42,
			CreatedAt: now,
			Tracks:    []store.Song{{ID: 3, Name: "T", File: "t.mp3"}},
			Tags:      []store.Tag{{ID: 1, Name: "rock"}},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/favorites/31", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Playlist fields sit at the top level; the favorite id is `fid`.
	if body["fid"] != float64(31) {
		t.Fatalf("fid = %v", body["fid"])
	}
	if body["id"] != float64(9) || body["name"] != "Mix" {
		t.Fatalf("playlist fields not flattened: %v", body)
	}
	if body["username"] != "ada" {
		t.Fatalf("username = %v", body["username"])
	}
	tracks, ok := body["tracks"].([]any)
	if !ok || len(tracks) != 1 {
		t.Fatalf("tracks = %v", body["tracks"])
	}
}

func TestListFavoritesDefaultsToCaller(t *testing.T) {
	srv, svcs := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, 42, "ada"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svcs.favorites.lastParams.Filters["username"] != "ada" {
		t.Fatalf("expected username default, got %+v", svcs.favorites.lastParams)
	}
}

func TestListFavoritesExplicitFilterWins(t *testing.T) {
	srv, svcs := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/favorites?username=bob", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, 42, "ada"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svcs.favorites.lastParams.Filters["username"] != "bob" {
		t.Fatalf("expected explicit filter kept, got %+v", svcs.favorites.lastParams)
	}
}

func TestAddPlaylistTracksForwardsIDs(t *testing.T) {
	srv, svcs := newTestServer()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/playlists/9/tracks", bytes.NewBufferString(`{"songs":[3,4]}`))
	req.Header.Set("Authorization", "Bearer "+testToken(t, 42, "ada"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(svcs.playlists.lastAddTracks) != 2 || svcs.playlists.lastAddTracks[0] != 3 {
		t.Fatalf("songs not forwarded: %v", svcs.playlists.lastAddTracks)
	}
}

func TestAddPlaylistTracksRequiresSongs(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/playlists/9/tracks", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer "+testToken(t, 42, "ada"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestInvalidPathID(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/songs/abc", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
