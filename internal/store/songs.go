package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// AuthorRef is the trimmed author shape nested under songs.
type AuthorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Song is a catalog track. Lyrics holds the raw embedded lyric blob; the
// timed cue sequence is derived from it at render time.
type Song struct {
	ID        int64
	Name      string
	File      string
	Lyrics    string
	CreatorID int64
	CreatedAt time.Time
	Authors   []AuthorRef
}

// NewSong is the create payload. A nil ID means auto-assign.
type NewSong struct {
	ID      *int64
	Name    string
	File    string
	Lyrics  string
	Authors []int64
}

// SongChange is the update payload; nil fields are left untouched.
// A non-nil Authors slice replaces the song's author set.
type SongChange struct {
	Name    *string
	File    *string
	Lyrics  *string
	Authors []int64
}

var songListSpec = listSpec{
	filters: map[string]string{
		"id":         "s.id::text = $%d",
		"name":       "s.name = $%d",
		"created_at": "s.created_at::text = $%d",
		"author":     "EXISTS (SELECT 1 FROM song_authors sa WHERE sa.song_id = s.id AND sa.author_id::text = $%d)",
	},
	search: []string{"s.name"},
	order: map[string]string{
		"id":         "s.id",
		"name":       "s.name",
		"created_at": "s.created_at",
	},
}

const songSelect = `
	SELECT s.id, s.name, s.file, s.lyrics, s.creator_id, s.created_at,
	       array_remove(array_agg(a.id ORDER BY a.id), NULL),
	       array_remove(array_agg(a.name ORDER BY a.id), NULL)
	FROM songs s
	LEFT JOIN song_authors sa ON sa.song_id = s.id
	LEFT JOIN authors a ON a.id = sa.author_id
	`

func scanSong(rows interface{ Scan(...any) error }) (Song, error) {
	var (
		song        Song
		authorIDs   []int64
		authorNames []string
	)
	if err := rows.Scan(&song.ID, &song.Name, &song.File, &song.Lyrics, &song.CreatorID, &song.CreatedAt,
		pq.Array(&authorIDs), pq.Array(&authorNames)); err != nil {
		return Song{}, err
	}
	song.Authors = make([]AuthorRef, 0, len(authorIDs))
	for i, id := range authorIDs {
		song.Authors = append(song.Authors, AuthorRef{ID: id, Name: authorNames[i]})
	}
	return song, nil
}

// ListSongs returns one page of songs with nested author references, plus
// the total count of rows matching the narrowing.
func (s *Store) ListSongs(ctx context.Context, params ListParams) ([]Song, int, error) {
	q, err := songListSpec.build(params)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs s "+q.where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count songs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, songSelect+q.where+" GROUP BY s.id"+q.tail(), q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, total, nil
}

// GetSong returns a single song by id.
func (s *Store) GetSong(ctx context.Context, id int64) (Song, error) {
	row := s.db.QueryRowContext(ctx, songSelect+"WHERE s.id = $1 GROUP BY s.id", id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// CreateSong persists a new song, stamping the creator from the actor.
// A caller-supplied id must be globally unique among songs.
func (s *Store) CreateSong(ctx context.Context, actor Actor, song NewSong) (Song, error) {
	if strings.TrimSpace(song.Name) == "" {
		return Song{}, &ValidationError{Field: "name", Message: "is required"}
	}
	if strings.TrimSpace(song.File) == "" {
		return Song{}, &ValidationError{Field: "file", Message: "is required"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if song.ID != nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO songs (id, name, file, lyrics, creator_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			*song.ID, song.Name, song.File, song.Lyrics, actor.UserID).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				err = ErrIDTaken
				return Song{}, err
			}
			return Song{}, fmt.Errorf("insert song: %w", err)
		}
		if err = bumpSequence(ctx, tx, "songs"); err != nil {
			return Song{}, err
		}
	} else {
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO songs (name, file, lyrics, creator_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			song.Name, song.File, song.Lyrics, actor.UserID).Scan(&id); err != nil {
			return Song{}, fmt.Errorf("insert song: %w", err)
		}
	}

	if err = replaceSongAuthorsTx(ctx, tx, id, song.Authors); err != nil {
		return Song{}, err
	}

	if err = tx.Commit(); err != nil {
		return Song{}, fmt.Errorf("commit song create: %w", err)
	}

	return s.GetSong(ctx, id)
}

// UpdateSong applies the non-nil fields of the change.
func (s *Store) UpdateSong(ctx context.Context, id int64, change SongChange) (Song, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if change.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *change.Name)
	}
	if change.File != nil {
		sets = append(sets, fmt.Sprintf("file = $%d", len(args)+1))
		args = append(args, *change.File)
	}
	if change.Lyrics != nil {
		sets = append(sets, fmt.Sprintf("lyrics = $%d", len(args)+1))
		args = append(args, *change.Lyrics)
	}

	if len(sets) > 0 {
		args = append(args, id)
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE songs SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)), args...)
		if err != nil {
			return Song{}, fmt.Errorf("update song: %w", err)
		}
		var affected int64
		if affected, err = res.RowsAffected(); err != nil {
			return Song{}, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = ErrSongNotFound
			return Song{}, err
		}
	} else {
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM songs WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Song{}, fmt.Errorf("check song: %w", err)
		}
		if !exists {
			err = ErrSongNotFound
			return Song{}, err
		}
	}

	if change.Authors != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM song_authors WHERE song_id = $1`, id); err != nil {
			return Song{}, fmt.Errorf("clear song authors: %w", err)
		}
		if err = replaceSongAuthorsTx(ctx, tx, id, change.Authors); err != nil {
			return Song{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return Song{}, fmt.Errorf("commit song update: %w", err)
	}

	return s.GetSong(ctx, id)
}

// DeleteSong removes the song; join rows cascade.
func (s *Store) DeleteSong(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}
	return nil
}

func replaceSongAuthorsTx(ctx context.Context, tx *sql.Tx, songID int64, authorIDs []int64) error {
	if len(authorIDs) == 0 {
		return nil
	}

	var known int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT id) FROM authors WHERE id = ANY($1)`, pq.Array(authorIDs)).Scan(&known); err != nil {
		return fmt.Errorf("check authors: %w", err)
	}
	if known != len(uniqueIDs(authorIDs)) {
		return ErrAuthorNotFound
	}

	for _, authorID := range authorIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO song_authors (song_id, author_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, songID, authorID); err != nil {
			return fmt.Errorf("insert song author: %w", err)
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
