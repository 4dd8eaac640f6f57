package favorites

import (
	"context"

	"github.com/Niracler/song/internal/store"
)

// Store captures the persistence needs for favoriting workflows.
type Store interface {
	ListFavorites(ctx context.Context, params store.ListParams) ([]store.Favorite, int, error)
	GetFavorite(ctx context.Context, id int64) (store.Favorite, error)
	CreateFavorite(ctx context.Context, actor store.Actor, favorite store.NewFavorite) (store.Favorite, error)
	DeleteFavorite(ctx context.Context, id int64) error
}

// Service coordinates favoriting workflows.
type Service interface {
	List(ctx context.Context, params store.ListParams) ([]store.Favorite, int, error)
	Get(ctx context.Context, id int64) (store.Favorite, error)
	Create(ctx context.Context, actor store.Actor, favorite store.NewFavorite) (store.Favorite, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, params store.ListParams) ([]store.Favorite, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListFavorites(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (store.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return store.Favorite{}, err
	}
	return s.store.GetFavorite(ctx, id)
}

func (s *service) Create(ctx context.Context, actor store.Actor, favorite store.NewFavorite) (store.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return store.Favorite{}, err
	}
	return s.store.CreateFavorite(ctx, actor, favorite)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteFavorite(ctx, id)
}
