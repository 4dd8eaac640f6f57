package tags

import (
	"context"

	"github.com/Niracler/song/internal/store"
)

// Store captures the persistence needs for tag workflows.
type Store interface {
	ListTags(ctx context.Context, params store.ListParams) ([]store.Tag, int, error)
	GetTag(ctx context.Context, id int64) (store.Tag, error)
	CreateTag(ctx context.Context, tag store.NewTag) (store.Tag, error)
	RenameTag(ctx context.Context, id int64, name string) (store.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

// Service coordinates tag-related operations.
type Service interface {
	List(ctx context.Context, params store.ListParams) ([]store.Tag, int, error)
	Get(ctx context.Context, id int64) (store.Tag, error)
	Create(ctx context.Context, tag store.NewTag) (store.Tag, error)
	Rename(ctx context.Context, id int64, name string) (store.Tag, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, params store.ListParams) ([]store.Tag, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListTags(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (store.Tag, error) {
	if err := ctx.Err(); err != nil {
		return store.Tag{}, err
	}
	return s.store.GetTag(ctx, id)
}

func (s *service) Create(ctx context.Context, tag store.NewTag) (store.Tag, error) {
	if err := ctx.Err(); err != nil {
		return store.Tag{}, err
	}
	return s.store.CreateTag(ctx, tag)
}

func (s *service) Rename(ctx context.Context, id int64, name string) (store.Tag, error) {
	if err := ctx.Err(); err != nil {
		return store.Tag{}, err
	}
	return s.store.RenameTag(ctx, id, name)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteTag(ctx, id)
}
