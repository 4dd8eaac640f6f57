package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestCreateFavoriteDuplicatePair(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM playlists WHERE id = $1)`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
			INSERT INTO playlist_favorites (username, playlist_id)
			VALUES ($1, $2)
			RETURNING id`)).
		WithArgs("ada", int64(9)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "playlist_favorites_username_playlist_id_key"})
	mock.ExpectRollback()

	_, err = s.CreateFavorite(context.Background(), Actor{Username: "ada"}, NewFavorite{PlaylistID: 9})
	if !errors.Is(err, ErrFavoriteExists) {
		t.Fatalf("expected ErrFavoriteExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateFavoriteUnknownPlaylist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM playlists WHERE id = $1)`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = New(db).CreateFavorite(context.Background(), Actor{Username: "ada"}, NewFavorite{PlaylistID: 404})
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateFavoriteSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM playlists WHERE id = $1)`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
			INSERT INTO playlist_favorites (username, playlist_id)
			VALUES ($1, $2)
			RETURNING id`)).
		WithArgs("ada", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))
	mock.ExpectCommit()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT f.id, f.username, f.playlist_id, f.created_at FROM playlist_favorites f WHERE f.id = $1`)).
		WithArgs(int64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "playlist_id", "created_at"}).
			AddRow(int64(31), "ada", int64(9), now))
	expectPlaylistReload(mock, 9, now)

	got, err := s.CreateFavorite(context.Background(), Actor{Username: "ada"}, NewFavorite{PlaylistID: 9})
	if err != nil {
		t.Fatalf("CreateFavorite: %v", err)
	}
	if got.ID != 31 || got.Username != "ada" || got.Playlist.ID != 9 {
		t.Fatalf("unexpected favorite: %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteFavoriteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM playlist_favorites WHERE id = $1`)).
		WithArgs(int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := New(db).DeleteFavorite(context.Background(), 999); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound, got %v", err)
	}
}
