package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Favorite marks a playlist as favorited by a user. The (username, playlist)
// pair is unique; the nested playlist backs the flattened rendering.
type Favorite struct {
	ID         int64
	Username   string
	PlaylistID int64
	CreatedAt  time.Time
	Playlist   Playlist
}

// NewFavorite is the create payload. A nil ID means auto-assign.
type NewFavorite struct {
	ID         *int64
	PlaylistID int64
}

var favoriteListSpec = listSpec{
	filters: map[string]string{
		"id":          "f.id::text = $%d",
		"username":    "f.username = $%d",
		"playlist_id": "f.playlist_id::text = $%d",
	},
	search: nil,
	order: map[string]string{
		"id":         "f.id",
		"created_at": "f.created_at",
	},
}

// ListFavorites returns one page of favorites with their playlists loaded.
func (s *Store) ListFavorites(ctx context.Context, params ListParams) ([]Favorite, int, error) {
	q, err := favoriteListSpec.build(params)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlist_favorites f "+q.where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT f.id, f.username, f.playlist_id, f.created_at FROM playlist_favorites f "+q.where+q.tail(), q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]Favorite, 0)
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.Username, &f.PlaylistID, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate favorites: %w", err)
	}

	for i := range favorites {
		playlist, err := s.GetPlaylist(ctx, favorites[i].PlaylistID)
		if err != nil {
			return nil, 0, err
		}
		favorites[i].Playlist = playlist
	}
	return favorites, total, nil
}

// GetFavorite returns a single favorite by id with its playlist loaded.
func (s *Store) GetFavorite(ctx context.Context, id int64) (Favorite, error) {
	var f Favorite
	err := s.db.QueryRowContext(ctx,
		`SELECT f.id, f.username, f.playlist_id, f.created_at FROM playlist_favorites f WHERE f.id = $1`, id).
		Scan(&f.ID, &f.Username, &f.PlaylistID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Favorite{}, ErrFavoriteNotFound
	}
	if err != nil {
		return Favorite{}, fmt.Errorf("get favorite: %w", err)
	}

	playlist, err := s.GetPlaylist(ctx, f.PlaylistID)
	if err != nil {
		return Favorite{}, err
	}
	f.Playlist = playlist
	return f, nil
}

// CreateFavorite records that the actor favorited a playlist. The store's
// unique constraint on (username, playlist_id) makes the check-then-insert
// atomic; a duplicate pair surfaces as ErrFavoriteExists.
func (s *Store) CreateFavorite(ctx context.Context, actor Actor, favorite NewFavorite) (Favorite, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM playlists WHERE id = $1)`, favorite.PlaylistID).Scan(&exists); err != nil {
		return Favorite{}, fmt.Errorf("check playlist: %w", err)
	}
	if !exists {
		return Favorite{}, ErrPlaylistNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Favorite{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if favorite.ID != nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO playlist_favorites (id, username, playlist_id)
			VALUES ($1, $2, $3)
			RETURNING id`, *favorite.ID, actor.Username, favorite.PlaylistID).Scan(&id)
	} else {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO playlist_favorites (username, playlist_id)
			VALUES ($1, $2)
			RETURNING id`, actor.Username, favorite.PlaylistID).Scan(&id)
	}
	if err != nil {
		switch uniqueConstraint(err) {
		case "playlist_favorites_pkey":
			err = ErrIDTaken
			return Favorite{}, err
		case "playlist_favorites_username_playlist_id_key":
			err = ErrFavoriteExists
			return Favorite{}, err
		}
		if isForeignKeyViolation(err) {
			err = ErrPlaylistNotFound
			return Favorite{}, err
		}
		return Favorite{}, fmt.Errorf("insert favorite: %w", err)
	}
	if favorite.ID != nil {
		if err = bumpSequence(ctx, tx, "playlist_favorites"); err != nil {
			return Favorite{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return Favorite{}, fmt.Errorf("commit favorite create: %w", err)
	}

	return s.GetFavorite(ctx, id)
}

// DeleteFavorite removes the favorite row.
func (s *Store) DeleteFavorite(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlist_favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}
