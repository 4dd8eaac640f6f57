package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dial tuning. The database may still be starting when the API comes up,
// so early ping failures are expected.
const (
	dbPingTimeout  = 5 * time.Second
	dbDialDeadline = 30 * time.Second
	dbBackoffStart = 500 * time.Millisecond
	dbBackoffCap   = 5 * time.Second
)

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := waitForDatabase(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// waitForDatabase pings with exponential backoff until the instance answers,
// the dial deadline passes, or the caller cancels.
func waitForDatabase(ctx context.Context, db *sql.DB) error {
	deadline := time.Now().Add(dbDialDeadline)
	backoff := dbBackoffStart

	for {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			return fmt.Errorf("ping database: %w", err)
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > dbBackoffCap {
			backoff = dbBackoffCap
		}
	}
}
