package httpapi

import (
	"time"

	"github.com/Niracler/song/internal/lyrics"
	"github.com/Niracler/song/internal/store"
)

// Output shapes per (entity, operation), resolved statically: list and
// detail views are distinct types, not runtime branches.

type listResponse struct {
	Items      any `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

func newListResponse(items any, total int, params store.ListParams) listResponse {
	p := params.Normalized()
	return listResponse{Items: items, TotalCount: total, Page: p.Page, PageSize: p.PageSize}
}

// songView is the song list shape: nested small-author references, no raw
// lyric blob.
type songView struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	File      string            `json:"file"`
	CreatorID int64             `json:"creator_id"`
	CreatedAt time.Time         `json:"created_at"`
	Authors   []store.AuthorRef `json:"authors"`
}

func newSongView(s store.Song) songView {
	return songView{
		ID:        s.ID,
		Name:      s.Name,
		File:      s.File,
		CreatorID: s.CreatorID,
		CreatedAt: s.CreatedAt,
		Authors:   s.Authors,
	}
}

func newSongViews(songs []store.Song) []songView {
	views := make([]songView, len(songs))
	for i, s := range songs {
		views[i] = newSongView(s)
	}
	return views
}

// songDetailView adds the parsed lyric cue sequence to the list shape.
type songDetailView struct {
	songView
	Cues []lyrics.Cue `json:"cues"`
}

func newSongDetailView(s store.Song) songDetailView {
	return songDetailView{
		songView: newSongView(s),
		Cues:     lyrics.Cues(s.Lyrics),
	}
}

// trackRef is the trimmed track shape nested under playlist lists.
type trackRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

type tagRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// playlistView is the playlist list shape: small track references and
// {id, name} tag pairs.
type playlistView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatorID   int64      `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Tracks      []trackRef `json:"tracks"`
	Tags        []tagRef   `json:"tags"`
}

func newPlaylistView(p store.Playlist) playlistView {
	tracks := make([]trackRef, len(p.Tracks))
	for i, t := range p.Tracks {
		tracks[i] = trackRef{ID: t.ID, Name: t.Name, File: t.File}
	}
	tags := make([]tagRef, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = tagRef{ID: t.ID, Name: t.Name}
	}
	return playlistView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatorID:   p.CreatorID,
		CreatedAt:   p.CreatedAt,
		Tracks:      tracks,
		Tags:        tags,
	}
}

func newPlaylistViews(playlists []store.Playlist) []playlistView {
	views := make([]playlistView, len(playlists))
	for i, p := range playlists {
		views[i] = newPlaylistView(p)
	}
	return views
}

// playlistDetailView is the playlist detail shape: full track objects and
// flat tag names.
type playlistDetailView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatorID   int64      `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Tracks      []songView `json:"tracks"`
	Tags        []string   `json:"tags"`
}

func newPlaylistDetailView(p store.Playlist) playlistDetailView {
	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = t.Name
	}
	return playlistDetailView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatorID:   p.CreatorID,
		CreatedAt:   p.CreatedAt,
		Tracks:      newSongViews(p.Tracks),
		Tags:        tags,
	}
}

type tagView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Times     int       `json:"times"`
}

func newTagView(t store.Tag) tagView {
	return tagView{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt, Times: t.Times}
}

func newTagViews(tags []store.Tag) []tagView {
	views := make([]tagView, len(tags))
	for i, t := range tags {
		views[i] = newTagView(t)
	}
	return views
}

type authorView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	NumSongs    int       `json:"num_songs"`
}

func newAuthorView(a store.Author) authorView {
	return authorView{ID: a.ID, Name: a.Name, Description: a.Description, CreatedAt: a.CreatedAt, NumSongs: a.NumSongs}
}

func newAuthorViews(authors []store.Author) []authorView {
	views := make([]authorView, len(authors))
	for i, a := range authors {
		views[i] = newAuthorView(a)
	}
	return views
}

type commentView struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newCommentView(c store.Comment) commentView {
	return commentView{ID: c.ID, Body: c.Body, CreatorID: c.CreatorID, CreatedAt: c.CreatedAt}
}

func newCommentViews(comments []store.Comment) []commentView {
	views := make([]commentView, len(comments))
	for i, c := range comments {
		views[i] = newCommentView(c)
	}
	return views
}

// favoriteView flattens the playlist list shape into the favorite's own
// top level. The favorite's id is renamed to `fid` so it cannot collide
// with the playlist's `id`; the same shape applies to single and list
// renderings.
type favoriteView struct {
	playlistView
	Fid      int64  `json:"fid"`
	Username string `json:"username"`
}

func newFavoriteView(f store.Favorite) favoriteView {
	return favoriteView{
		playlistView: newPlaylistView(f.Playlist),
		Fid:          f.ID,
		Username:     f.Username,
	}
}

func newFavoriteViews(favorites []store.Favorite) []favoriteView {
	views := make([]favoriteView, len(favorites))
	for i, f := range favorites {
		views[i] = newFavoriteView(f)
	}
	return views
}
