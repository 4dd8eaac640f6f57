package playlists

import (
	"context"

	"github.com/Niracler/song/internal/store"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	ListPlaylists(ctx context.Context, params store.ListParams) ([]store.Playlist, int, error)
	GetPlaylist(ctx context.Context, id int64) (store.Playlist, error)
	CreatePlaylist(ctx context.Context, actor store.Actor, playlist store.NewPlaylist) (store.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int64, change store.PlaylistChange) (store.Playlist, error)
	AddTracks(ctx context.Context, id int64, songIDs []int64) (store.Playlist, error)
	RemoveTrack(ctx context.Context, id, songID int64) error
	DeletePlaylist(ctx context.Context, id int64) error
}

// Service coordinates playlist-related operations.
type Service interface {
	List(ctx context.Context, params store.ListParams) ([]store.Playlist, int, error)
	Get(ctx context.Context, id int64) (store.Playlist, error)
	Create(ctx context.Context, actor store.Actor, playlist store.NewPlaylist) (store.Playlist, error)
	Update(ctx context.Context, id int64, change store.PlaylistChange) (store.Playlist, error)
	AddTracks(ctx context.Context, id int64, songIDs []int64) (store.Playlist, error)
	RemoveTrack(ctx context.Context, id, songID int64) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, params store.ListParams) ([]store.Playlist, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListPlaylists(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.GetPlaylist(ctx, id)
}

func (s *service) Create(ctx context.Context, actor store.Actor, playlist store.NewPlaylist) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.CreatePlaylist(ctx, actor, playlist)
}

func (s *service) Update(ctx context.Context, id int64, change store.PlaylistChange) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.UpdatePlaylist(ctx, id, change)
}

func (s *service) AddTracks(ctx context.Context, id int64, songIDs []int64) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.AddTracks(ctx, id, songIDs)
}

func (s *service) RemoveTrack(ctx context.Context, id, songID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RemoveTrack(ctx, id, songID)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, id)
}
