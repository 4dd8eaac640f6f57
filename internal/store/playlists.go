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

// Playlist is a user-curated track list with free-text tags.
type Playlist struct {
	ID          int64
	Name        string
	Description string
	CreatorID   int64
	CreatedAt   time.Time
	Tracks      []Song
	Tags        []Tag
}

// NewPlaylist is the create payload. TagString is the raw space-separated
// tag text; the normalized set becomes the playlist's tags.
type NewPlaylist struct {
	ID          *int64
	Name        string
	Description string
	TagString   string
}

// PlaylistChange is the update payload; nil fields are left untouched.
// A non-nil TagString replaces the tag set wholesale. A non-nil AddTrack
// merges one song into the existing track set; it never removes tracks.
type PlaylistChange struct {
	Name        *string
	Description *string
	TagString   *string
	AddTrack    *int64
}

var playlistListSpec = listSpec{
	filters: map[string]string{
		"id":         "p.id::text = $%d",
		"name":       "p.name = $%d",
		"created_at": "p.created_at::text = $%d",
		"tag":        "EXISTS (SELECT 1 FROM playlist_tags pt WHERE pt.playlist_id = p.id AND pt.tag_id::text = $%d)",
	},
	search: []string{"p.name", "p.description"},
	order: map[string]string{
		"id":         "p.id",
		"name":       "p.name",
		"created_at": "p.created_at",
	},
}

const playlistSelect = `
	SELECT p.id, p.name, p.description, p.creator_id, p.created_at
	FROM playlists p
	`

// ListPlaylists returns one page of playlists with their tracks and tags.
func (s *Store) ListPlaylists(ctx context.Context, params ListParams) ([]Playlist, int, error) {
	q, err := playlistListSpec.build(params)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlists p "+q.where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count playlists: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, playlistSelect+q.where+q.tail(), q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]Playlist, 0)
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatorID, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate playlists: %w", err)
	}

	for i := range playlists {
		if err := s.loadPlaylistAssociations(ctx, &playlists[i]); err != nil {
			return nil, 0, err
		}
	}
	return playlists, total, nil
}

// GetPlaylist returns a single playlist by id with tracks and tags.
func (s *Store) GetPlaylist(ctx context.Context, id int64) (Playlist, error) {
	var p Playlist
	err := s.db.QueryRowContext(ctx, playlistSelect+"WHERE p.id = $1", id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatorID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return Playlist{}, fmt.Errorf("get playlist: %w", err)
	}

	if err := s.loadPlaylistAssociations(ctx, &p); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

// CreatePlaylist persists a new playlist, stamping the creator from the
// actor. Tags come from normalizing TagString inside the same transaction,
// so readers never observe a partially-written tag set.
func (s *Store) CreatePlaylist(ctx context.Context, actor Actor, playlist NewPlaylist) (Playlist, error) {
	if strings.TrimSpace(playlist.Name) == "" {
		return Playlist{}, &ValidationError{Field: "name", Message: "is required"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Playlist{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if playlist.ID != nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO playlists (id, name, description, creator_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			*playlist.ID, playlist.Name, playlist.Description, actor.UserID).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				err = ErrIDTaken
				return Playlist{}, err
			}
			return Playlist{}, fmt.Errorf("insert playlist: %w", err)
		}
		if err = bumpSequence(ctx, tx, "playlists"); err != nil {
			return Playlist{}, err
		}
	} else {
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO playlists (name, description, creator_id)
			VALUES ($1, $2, $3)
			RETURNING id`,
			playlist.Name, playlist.Description, actor.UserID).Scan(&id); err != nil {
			return Playlist{}, fmt.Errorf("insert playlist: %w", err)
		}
	}

	if err = setPlaylistTagsTx(ctx, tx, id, playlist.TagString); err != nil {
		return Playlist{}, err
	}

	if err = tx.Commit(); err != nil {
		return Playlist{}, fmt.Errorf("commit playlist create: %w", err)
	}

	return s.GetPlaylist(ctx, id)
}

// UpdatePlaylist applies the non-nil fields of the change. Name, description
// and the tag replacement commit together; the optional single-track add runs
// after that commit, so a missing song returns ErrSongNotFound while the
// already-applied fields stay persisted (documented partial-apply).
func (s *Store) UpdatePlaylist(ctx context.Context, id int64, change PlaylistChange) (Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Playlist{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if change.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *change.Name)
	}
	if change.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *change.Description)
	}

	if len(sets) > 0 {
		args = append(args, id)
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE playlists SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)), args...)
		if err != nil {
			return Playlist{}, fmt.Errorf("update playlist: %w", err)
		}
		var affected int64
		if affected, err = res.RowsAffected(); err != nil {
			return Playlist{}, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = ErrPlaylistNotFound
			return Playlist{}, err
		}
	} else {
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM playlists WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Playlist{}, fmt.Errorf("check playlist: %w", err)
		}
		if !exists {
			err = ErrPlaylistNotFound
			return Playlist{}, err
		}
	}

	if change.TagString != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM playlist_tags WHERE playlist_id = $1`, id); err != nil {
			return Playlist{}, fmt.Errorf("clear playlist tags: %w", err)
		}
		if err = setPlaylistTagsTx(ctx, tx, id, *change.TagString); err != nil {
			return Playlist{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return Playlist{}, fmt.Errorf("commit playlist update: %w", err)
	}

	if change.AddTrack != nil {
		if err := s.addTrack(ctx, id, *change.AddTrack); err != nil {
			return Playlist{}, err
		}
	}

	return s.GetPlaylist(ctx, id)
}

// AddTracks merges the given songs into the playlist's track set. Existing
// tracks are kept; duplicates are no-ops. All ids are validated up front and
// the merge is atomic.
func (s *Store) AddTracks(ctx context.Context, id int64, songIDs []int64) (Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Playlist{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM playlists WHERE id = $1)`, id).Scan(&exists); err != nil {
		return Playlist{}, fmt.Errorf("check playlist: %w", err)
	}
	if !exists {
		err = ErrPlaylistNotFound
		return Playlist{}, err
	}

	songIDs = uniqueIDs(songIDs)
	if len(songIDs) > 0 {
		var known int
		if err = tx.QueryRowContext(ctx,
			`SELECT COUNT(DISTINCT id) FROM songs WHERE id = ANY($1)`, pq.Array(songIDs)).Scan(&known); err != nil {
			return Playlist{}, fmt.Errorf("check songs: %w", err)
		}
		if known != len(songIDs) {
			err = ErrSongNotFound
			return Playlist{}, err
		}

		for _, songID := range songIDs {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO playlist_tracks (playlist_id, song_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, id, songID); err != nil {
				return Playlist{}, fmt.Errorf("insert playlist track: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return Playlist{}, fmt.Errorf("commit track add: %w", err)
	}

	return s.GetPlaylist(ctx, id)
}

// RemoveTrack deletes one song from the playlist's track set.
func (s *Store) RemoveTrack(ctx context.Context, id, songID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM playlist_tracks WHERE playlist_id = $1 AND song_id = $2`, id, songID)
	if err != nil {
		return fmt.Errorf("delete playlist track: %w", err)
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

// DeletePlaylist removes the playlist; join rows and favorites cascade.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

func (s *Store) addTrack(ctx context.Context, playlistID, songID int64) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM songs WHERE id = $1)`, songID).Scan(&exists); err != nil {
		return fmt.Errorf("check song: %w", err)
	}
	if !exists {
		return ErrSongNotFound
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_tracks (playlist_id, song_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, playlistID, songID); err != nil {
		return fmt.Errorf("insert playlist track: %w", err)
	}
	return nil
}

// setPlaylistTagsTx normalizes tagString and links the resulting tags to the
// playlist. Inside a transaction the normalizer's skip-and-continue policy
// collapses to all-or-nothing: a failed upsert puts the tx in aborted state,
// so every later statement fails and the surrounding update rolls back. With
// TEXT tokens and the ON CONFLICT upsert no per-token failure is reachable,
// which keeps the two policies observably identical here.
func setPlaylistTagsTx(ctx context.Context, tx *sql.Tx, playlistID int64, tagString string) error {
	tags, _ := normalizeTags(ctx, tx, tagString)
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_tags (playlist_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, playlistID, tag.ID); err != nil {
			return fmt.Errorf("insert playlist tag: %w", err)
		}
	}
	return nil
}

func (s *Store) loadPlaylistAssociations(ctx context.Context, p *Playlist) error {
	rows, err := s.db.QueryContext(ctx, songSelect+`
		JOIN playlist_tracks pt ON pt.song_id = s.id
		WHERE pt.playlist_id = $1
		GROUP BY s.id
		ORDER BY s.id ASC`, p.ID)
	if err != nil {
		return fmt.Errorf("list playlist tracks: %w", err)
	}
	defer rows.Close()

	p.Tracks = make([]Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return fmt.Errorf("scan playlist track: %w", err)
		}
		p.Tracks = append(p.Tracks, song)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate playlist tracks: %w", err)
	}

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN playlist_tags pt ON pt.tag_id = t.id
		WHERE pt.playlist_id = $1
		ORDER BY t.id ASC`, p.ID)
	if err != nil {
		return fmt.Errorf("list playlist tags: %w", err)
	}
	defer tagRows.Close()

	p.Tags = make([]Tag, 0)
	for tagRows.Next() {
		var t Tag
		if err := tagRows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan playlist tag: %w", err)
		}
		p.Tags = append(p.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("iterate playlist tags: %w", err)
	}
	return nil
}
