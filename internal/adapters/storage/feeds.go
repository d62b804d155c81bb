package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostFeed registra una publicación del oráculo.
func (s *SQLiteStorage) PostFeed(ctx context.Context, oracleID, feedName, value string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO data_feeds (oracle, feed_name, value, posted_at) VALUES (?, ?, ?, ?)`,
		oracleID, feedName, value, at.UTC().UnixNano(),
	); err != nil {
		return fmt.Errorf("storage.PostFeed: %w", err)
	}
	return nil
}

// ReadFeed devuelve la última publicación estrictamente anterior a asOf.
// Con empate de timestamp gana la insertada después.
func (s *SQLiteStorage) ReadFeed(ctx context.Context, oracleID, feedName string, asOf time.Time) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM data_feeds
		WHERE oracle = ? AND feed_name = ? AND posted_at < ?
		ORDER BY posted_at DESC, id DESC
		LIMIT 1
	`, oracleID, feedName, asOf.UTC().UnixNano()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage.ReadFeed: %w", err)
	}
	return value, true, nil
}
