package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Comment is a flat user comment.
type Comment struct {
	ID        int64
	Body      string
	CreatorID int64
	CreatedAt time.Time
}

// NewComment is the create payload. A nil ID means auto-assign.
type NewComment struct {
	ID   *int64
	Body string
}

var commentListSpec = listSpec{
	filters: map[string]string{
		"id":         "c.id::text = $%d",
		"created_at": "c.created_at::text = $%d",
	},
	search: []string{"c.body"},
	order: map[string]string{
		"id":         "c.id",
		"body":       "c.body",
		"created_at": "c.created_at",
	},
}

// ListComments returns one page of comments.
func (s *Store) ListComments(ctx context.Context, params ListParams) ([]Comment, int, error) {
	q, err := commentListSpec.build(params)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments c "+q.where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT c.id, c.body, c.creator_id, c.created_at FROM comments c "+q.where+q.tail(), q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Body, &c.CreatorID, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, total, nil
}

// GetComment returns a single comment by id.
func (s *Store) GetComment(ctx context.Context, id int64) (Comment, error) {
	var c Comment
	err := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.body, c.creator_id, c.created_at FROM comments c WHERE c.id = $1`, id).
		Scan(&c.ID, &c.Body, &c.CreatorID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	if err != nil {
		return Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// CreateComment persists a new comment, stamping the creator from the actor.
func (s *Store) CreateComment(ctx context.Context, actor Actor, comment NewComment) (Comment, error) {
	if strings.TrimSpace(comment.Body) == "" {
		return Comment{}, &ValidationError{Field: "body", Message: "is required"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Comment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if comment.ID != nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO comments (id, body, creator_id)
			VALUES ($1, $2, $3)
			RETURNING id`, *comment.ID, comment.Body, actor.UserID).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				err = ErrIDTaken
				return Comment{}, err
			}
			return Comment{}, fmt.Errorf("insert comment: %w", err)
		}
		if err = bumpSequence(ctx, tx, "comments"); err != nil {
			return Comment{}, err
		}
	} else {
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO comments (body, creator_id)
			VALUES ($1, $2)
			RETURNING id`, comment.Body, actor.UserID).Scan(&id); err != nil {
			return Comment{}, fmt.Errorf("insert comment: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Comment{}, fmt.Errorf("commit comment create: %w", err)
	}

	return s.GetComment(ctx, id)
}

// UpdateComment replaces the comment body.
func (s *Store) UpdateComment(ctx context.Context, id int64, body string) (Comment, error) {
	if strings.TrimSpace(body) == "" {
		return Comment{}, &ValidationError{Field: "body", Message: "cannot be blank"}
	}

	res, err := s.db.ExecContext(ctx, `UPDATE comments SET body = $1 WHERE id = $2`, body, id)
	if err != nil {
		return Comment{}, fmt.Errorf("update comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Comment{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return Comment{}, ErrCommentNotFound
	}

	return s.GetComment(ctx, id)
}

// DeleteComment removes the comment.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
