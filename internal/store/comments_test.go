package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateCommentValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	tests := []struct {
		name    string
		comment NewComment
	}{
		{name: "blank body", comment: NewComment{Body: "   "}},
		{name: "empty body", comment: NewComment{Body: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateComment(context.Background(), Actor{UserID: 42}, tc.comment)
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != "body" {
				t.Fatalf("expected body ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateCommentStampsCreator(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
			INSERT INTO comments (body, creator_id)
			VALUES ($1, $2)
			RETURNING id`)).
		WithArgs("nice track", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT c.id, c.body, c.creator_id, c.created_at FROM comments c WHERE c.id = $1`)).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body", "creator_id", "created_at"}).
			AddRow(int64(11), "nice track", int64(42), now))

	got, err := s.CreateComment(context.Background(), Actor{UserID: 42}, NewComment{Body: "nice track"})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if got.ID != 11 || got.CreatorID != 42 {
		t.Fatalf("unexpected comment: %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateCommentBlankBody(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	_, err = New(db).UpdateComment(context.Background(), 11, "  ")

	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "body" {
		t.Fatalf("expected body ValidationError, got %v", err)
	}
}

func TestUpdateCommentNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE comments SET body = $1 WHERE id = $2`)).
		WithArgs("edited", int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = New(db).UpdateComment(context.Background(), 999, "edited")
	if !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestGetCommentNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT c.id, c.body, c.creator_id, c.created_at FROM comments c WHERE c.id = $1`)).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body", "creator_id", "created_at"}))

	_, err = New(db).GetComment(context.Background(), 999)
	if !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}
