package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Tag is a playlist label. Names are globally unique; Times counts the
// playlists currently carrying the tag, computed from the live join table.
type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	Times     int
}

// NewTag is the create payload. A nil ID means auto-assign.
type NewTag struct {
	ID   *int64
	Name string
}

var tagListSpec = listSpec{
	filters: map[string]string{
		"id":   "t.id::text = $%d",
		"name": "t.name = $%d",
	},
	search: []string{"t.name"},
	order: map[string]string{
		"id":         "t.id",
		"name":       "t.name",
		"created_at": "t.created_at",
		"times":      "times",
	},
}

const tagSelect = `
	SELECT t.id, t.name, t.created_at,
	       (SELECT COUNT(*) FROM playlist_tags pt WHERE pt.tag_id = t.id) AS times
	FROM tags t
	`

// ListTags returns one page of tags with their usage counts.
func (s *Store) ListTags(ctx context.Context, params ListParams) ([]Tag, int, error) {
	q, err := tagListSpec.build(params)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags t "+q.where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tags: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, tagSelect+q.where+q.tail(), q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]Tag, 0)
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.Times); err != nil {
			return nil, 0, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, total, nil
}

// GetTag returns a single tag by id.
func (s *Store) GetTag(ctx context.Context, id int64) (Tag, error) {
	var t Tag
	err := s.db.QueryRowContext(ctx, tagSelect+"WHERE t.id = $1", id).
		Scan(&t.ID, &t.Name, &t.CreatedAt, &t.Times)
	if errors.Is(err, sql.ErrNoRows) {
		return Tag{}, ErrTagNotFound
	}
	if err != nil {
		return Tag{}, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// CreateTag persists a new tag with an explicitly chosen name.
func (s *Store) CreateTag(ctx context.Context, tag NewTag) (Tag, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return Tag{}, &ValidationError{Field: "name", Message: "is required"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Tag{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if tag.ID != nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO tags (id, name)
			VALUES ($1, $2)
			RETURNING id`, *tag.ID, tag.Name).Scan(&id)
	} else {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO tags (name)
			VALUES ($1)
			RETURNING id`, tag.Name).Scan(&id)
	}
	if err != nil {
		switch uniqueConstraint(err) {
		case "tags_pkey":
			err = ErrIDTaken
			return Tag{}, err
		case "tags_name_key":
			err = &ValidationError{Field: "name", Message: "already exists"}
			return Tag{}, err
		}
		return Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	if tag.ID != nil {
		if err = bumpSequence(ctx, tx, "tags"); err != nil {
			return Tag{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return Tag{}, fmt.Errorf("commit tag create: %w", err)
	}

	return s.GetTag(ctx, id)
}

// RenameTag changes a tag's name, keeping global name uniqueness.
func (s *Store) RenameTag(ctx context.Context, id int64, name string) (Tag, error) {
	if strings.TrimSpace(name) == "" {
		return Tag{}, &ValidationError{Field: "name", Message: "cannot be blank"}
	}

	res, err := s.db.ExecContext(ctx, `UPDATE tags SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return Tag{}, &ValidationError{Field: "name", Message: "already exists"}
		}
		return Tag{}, fmt.Errorf("rename tag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Tag{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return Tag{}, ErrTagNotFound
	}

	return s.GetTag(ctx, id)
}

// DeleteTag removes the tag; playlist associations cascade.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrTagNotFound
	}
	return nil
}

// NormalizeTags parses a space-separated tag string into the matching Tag
// rows, creating any that do not exist yet. Blank tokens are skipped. The
// upsert-by-unique-name makes repeated parses idempotent. A token that fails
// to upsert is skipped and counted rather than aborting the whole parse.
func (s *Store) NormalizeTags(ctx context.Context, tagString string) ([]Tag, int) {
	return normalizeTags(ctx, s.db, tagString)
}

func normalizeTags(ctx context.Context, q querier, tagString string) ([]Tag, int) {
	tags := make([]Tag, 0)
	seen := make(map[string]struct{})
	skipped := 0

	for _, token := range strings.Split(tagString, " ") {
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}

		var t Tag
		err := q.QueryRowContext(ctx, `
			INSERT INTO tags (name)
			VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id, name, created_at`, token).Scan(&t.ID, &t.Name, &t.CreatedAt)
		if err != nil {
			skipped++
			log.Warn().Err(err).Str("tag", token).Msg("skipping unparsable tag token")
			continue
		}
		tags = append(tags, t)
	}

	return tags, skipped
}
