package comments

import (
	"context"

	"github.com/Niracler/song/internal/store"
)

// Store captures the persistence needs for comment workflows.
type Store interface {
	ListComments(ctx context.Context, params store.ListParams) ([]store.Comment, int, error)
	GetComment(ctx context.Context, id int64) (store.Comment, error)
	CreateComment(ctx context.Context, actor store.Actor, comment store.NewComment) (store.Comment, error)
	UpdateComment(ctx context.Context, id int64, body string) (store.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Service coordinates comment-related operations.
type Service interface {
	List(ctx context.Context, params store.ListParams) ([]store.Comment, int, error)
	Get(ctx context.Context, id int64) (store.Comment, error)
	Create(ctx context.Context, actor store.Actor, comment store.NewComment) (store.Comment, error)
	Update(ctx context.Context, id int64, body string) (store.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, params store.ListParams) ([]store.Comment, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListComments(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (store.Comment, error) {
	if err := ctx.Err(); err != nil {
		return store.Comment{}, err
	}
	return s.store.GetComment(ctx, id)
}

func (s *service) Create(ctx context.Context, actor store.Actor, comment store.NewComment) (store.Comment, error) {
	if err := ctx.Err(); err != nil {
		return store.Comment{}, err
	}
	return s.store.CreateComment(ctx, actor, comment)
}

func (s *service) Update(ctx context.Context, id int64, body string) (store.Comment, error) {
	if err := ctx.Err(); err != nil {
		return store.Comment{}, err
	}
	return s.store.UpdateComment(ctx, id, body)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, id)
}
