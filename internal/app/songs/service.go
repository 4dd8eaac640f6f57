package songs

import (
	"context"

	"github.com/Niracler/song/internal/store"
)

// Store captures the persistence needs for song workflows.
type Store interface {
	ListSongs(ctx context.Context, params store.ListParams) ([]store.Song, int, error)
	GetSong(ctx context.Context, id int64) (store.Song, error)
	CreateSong(ctx context.Context, actor store.Actor, song store.NewSong) (store.Song, error)
	UpdateSong(ctx context.Context, id int64, change store.SongChange) (store.Song, error)
	DeleteSong(ctx context.Context, id int64) error
}

// Service coordinates song-related operations.
type Service interface {
	List(ctx context.Context, params store.ListParams) ([]store.Song, int, error)
	Get(ctx context.Context, id int64) (store.Song, error)
	Create(ctx context.Context, actor store.Actor, song store.NewSong) (store.Song, error)
	Update(ctx context.Context, id int64, change store.SongChange) (store.Song, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, params store.ListParams) ([]store.Song, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListSongs(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.GetSong(ctx, id)
}

func (s *service) Create(ctx context.Context, actor store.Actor, song store.NewSong) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.CreateSong(ctx, actor, song)
}

func (s *service) Update(ctx context.Context, id int64, change store.SongChange) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.UpdateSong(ctx, id, change)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSong(ctx, id)
}
