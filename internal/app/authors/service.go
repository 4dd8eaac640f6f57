package authors

import (
	"context"

	"github.com/Niracler/song/internal/store"
)

// Store captures the persistence needs for author workflows.
type Store interface {
	ListAuthors(ctx context.Context, params store.ListParams) ([]store.Author, int, error)
	GetAuthor(ctx context.Context, id int64) (store.Author, error)
	CreateAuthor(ctx context.Context, author store.NewAuthor) (store.Author, error)
	UpdateAuthor(ctx context.Context, id int64, change store.AuthorChange) (store.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
}

// Service coordinates author-related operations.
type Service interface {
	List(ctx context.Context, params store.ListParams) ([]store.Author, int, error)
	Get(ctx context.Context, id int64) (store.Author, error)
	Create(ctx context.Context, author store.NewAuthor) (store.Author, error)
	Update(ctx context.Context, id int64, change store.AuthorChange) (store.Author, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, params store.ListParams) ([]store.Author, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListAuthors(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (store.Author, error) {
	if err := ctx.Err(); err != nil {
		return store.Author{}, err
	}
	return s.store.GetAuthor(ctx, id)
}

func (s *service) Create(ctx context.Context, author store.NewAuthor) (store.Author, error) {
	if err := ctx.Err(); err != nil {
		return store.Author{}, err
	}
	return s.store.CreateAuthor(ctx, author)
}

func (s *service) Update(ctx context.Context, id int64, change store.AuthorChange) (store.Author, error) {
	if err := ctx.Err(); err != nil {
		return store.Author{}, err
	}
	return s.store.UpdateAuthor(ctx, id, change)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteAuthor(ctx, id)
}
