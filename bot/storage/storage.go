// Package storage is the durable side of the journey: the users table and
// the per-user viewed-photo history.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/astralex/spacebot/core/logger"
)

// Store wraps the Postgres connection with the two repositories the bot needs.
type Store struct {
	db *sqlx.DB
}

// New builds a Store on top of an open connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureUser inserts the user on first contact and keeps the existing row
// otherwise. The stored name is refreshed on conflict so renames are visible
// in logs and history.
func (s *Store) EnsureUser(ctx context.Context, userID int64, userName string) error {
	const q = `
		INSERT INTO users (user_id, user_name)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_name = EXCLUDED.user_name`
	if _, err := s.db.ExecContext(ctx, q, userID, userName); err != nil {
		logger.SVCUsers.Error("ensure user failed",
			slog.String("event", "users.ensure"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return nil
}

// RecordViewedPhoto stores the (user, url) pair once. Re-recording the same
// pair is a no-op.
func (s *Store) RecordViewedPhoto(ctx context.Context, userID int64, url string) error {
	if url == "" {
		return nil
	}
	const q = `
		INSERT INTO user_photos (user_id, photo_url)
		VALUES ($1, $2)
		ON CONFLICT (user_id, photo_url) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, userID, url); err != nil {
		logger.SVCPhotos.Error("record photo failed",
			slog.String("event", "photos.record"),
			slog.Int64("user_id", userID),
			slog.String("url", url),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("record photo for %d: %w", userID, err)
	}
	logger.SVCPhotos.Debug("photo recorded",
		slog.String("event", "photos.record"),
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return nil
}

// ListViewedPhotos returns every URL recorded for the user in insertion order.
func (s *Store) ListViewedPhotos(ctx context.Context, userID int64) ([]string, error) {
	const q = `SELECT photo_url FROM user_photos WHERE user_id = $1 ORDER BY id`
	var urls []string
	if err := s.db.SelectContext(ctx, &urls, q, userID); err != nil {
		logger.SVCPhotos.Error("list photos failed",
			slog.String("event", "photos.list"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("list photos for %d: %w", userID, err)
	}
	return urls, nil
}
