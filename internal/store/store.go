package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSongNotFound signals a missing song row or reference.
	ErrSongNotFound = errors.New("song not found")
	// ErrAuthorNotFound signals a missing author row or reference.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrPlaylistNotFound signals a missing playlist row or reference.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrTagNotFound signals a missing tag row.
	ErrTagNotFound = errors.New("tag not found")
	// ErrCommentNotFound signals a missing comment row.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrFavoriteNotFound signals a missing favorite row.
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrFavoriteExists indicates the (username, playlist) pair is already favorited.
	ErrFavoriteExists = errors.New("playlist already favorited")
	// ErrIDTaken indicates a caller-supplied id collides with an existing row.
	ErrIDTaken = errors.New("id already in use")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Actor identifies the caller of a mutation, resolved by an external
// auth collaborator. Creator stamping uses UserID; favorites use Username.
type Actor struct {
	UserID   int64
	Username string
}

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx so association helpers
// can run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// uniqueConstraint names the violated unique constraint, or "" if the error
// is not a unique violation.
func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// bumpSequence realigns a table's id sequence after an explicit-id insert so
// later auto-assigned ids do not collide with caller-supplied ones.
func bumpSequence(ctx context.Context, q querier, table string) error {
	query := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT GREATEST(MAX(id), 1) FROM %s))`,
		table, table)
	if _, err := q.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("bump %s sequence: %w", table, err)
	}
	return nil
}
