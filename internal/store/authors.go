package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Author is a song author. NumSongs is derived from the live song_authors
// table at read time, never cached.
type Author struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	NumSongs    int
}

// NewAuthor is the create payload. A nil ID means auto-assign.
type NewAuthor struct {
	ID          *int64
	Name        string
	Description string
}

// AuthorChange is the update payload; nil fields are left untouched.
type AuthorChange struct {
	Name        *string
	Description *string
}

var authorListSpec = listSpec{
	filters: map[string]string{
		"id":         "a.id::text = $%d",
		"name":       "a.name = $%d",
		"created_at": "a.created_at::text = $%d",
	},
	search: []string{"a.name"},
	order: map[string]string{
		"id":         "a.id",
		"name":       "a.name",
		"created_at": "a.created_at",
		"num_songs":  "num_songs",
	},
}

const authorSelect = `
	SELECT a.id, a.name, a.description, a.created_at,
	       (SELECT COUNT(*) FROM song_authors sa WHERE sa.author_id = a.id) AS num_songs
	FROM authors a
	`

// ListAuthors returns one page of authors with their song counts.
func (s *Store) ListAuthors(ctx context.Context, params ListParams) ([]Author, int, error) {
	q, err := authorListSpec.build(params)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors a "+q.where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, authorSelect+q.where+q.tail(), q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]Author, 0)
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.NumSongs); err != nil {
			return nil, 0, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate authors: %w", err)
	}
	return authors, total, nil
}

// GetAuthor returns a single author by id.
func (s *Store) GetAuthor(ctx context.Context, id int64) (Author, error) {
	var a Author
	err := s.db.QueryRowContext(ctx, authorSelect+"WHERE a.id = $1", id).
		Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.NumSongs)
	if errors.Is(err, sql.ErrNoRows) {
		return Author{}, ErrAuthorNotFound
	}
	if err != nil {
		return Author{}, fmt.Errorf("get author: %w", err)
	}
	return a, nil
}

// CreateAuthor persists a new author. Name must be non-blank; a
// caller-supplied id must be globally unique among authors.
func (s *Store) CreateAuthor(ctx context.Context, author NewAuthor) (Author, error) {
	if strings.TrimSpace(author.Name) == "" {
		return Author{}, &ValidationError{Field: "name", Message: "is required"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Author{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if author.ID != nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO authors (id, name, description)
			VALUES ($1, $2, $3)
			RETURNING id`,
			*author.ID, author.Name, author.Description).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				err = ErrIDTaken
				return Author{}, err
			}
			return Author{}, fmt.Errorf("insert author: %w", err)
		}
		if err = bumpSequence(ctx, tx, "authors"); err != nil {
			return Author{}, err
		}
	} else {
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO authors (name, description)
			VALUES ($1, $2)
			RETURNING id`,
			author.Name, author.Description).Scan(&id); err != nil {
			return Author{}, fmt.Errorf("insert author: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Author{}, fmt.Errorf("commit author create: %w", err)
	}

	return s.GetAuthor(ctx, id)
}

// UpdateAuthor applies the non-nil fields of the change.
func (s *Store) UpdateAuthor(ctx context.Context, id int64, change AuthorChange) (Author, error) {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if change.Name != nil {
		if strings.TrimSpace(*change.Name) == "" {
			return Author{}, &ValidationError{Field: "name", Message: "cannot be blank"}
		}
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *change.Name)
	}
	if change.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *change.Description)
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf("UPDATE authors SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)), args...)
		if err != nil {
			return Author{}, fmt.Errorf("update author: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return Author{}, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return Author{}, ErrAuthorNotFound
		}
	}

	return s.GetAuthor(ctx, id)
}

// DeleteAuthor removes the author; join rows cascade.
func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAuthorNotFound
	}
	return nil
}
