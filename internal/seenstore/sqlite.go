package seenstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the SeenStore interface
type SQLiteStore struct {
	db          *sql.DB
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewSQLiteStore creates a new SQLite seen store
func NewSQLiteStore(dbPath string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS seen_messages (
			uid TEXT PRIMARY KEY,
			seen_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on seen_at for faster pruning
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seen_at ON seen_messages(seen_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	store := &SQLiteStore{
		db:          db,
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store, nil
}

// Add records a message identifier as handled
func (s *SQLiteStore) Add(ctx context.Context, uid string, seenAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO seen_messages (uid, seen_at)
		VALUES (?, ?)
	`, uid, seenAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert seen entry: %w", err)
	}

	return nil
}

// Contains reports whether a message identifier was already handled
func (s *SQLiteStore) Contains(ctx context.Context, uid string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx, `
		SELECT uid FROM seen_messages WHERE uid = ?
	`, uid).Scan(&found)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query seen store: %w", err)
	}

	return true, nil
}

// Prune removes entries recorded before the given time
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM seen_messages
		WHERE seen_at < ?
	`, olderThan.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to prune seen entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during prune", zap.Error(err))
	} else {
		s.logger.Debug("Pruned old seen entries", zap.Int64("pruned_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to prune old entries
func (s *SQLiteStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Prune(context.Background(), time.Now().Add(-s.retention)); err != nil {
				s.logger.Error("Failed to prune seen store", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Close stops the background cleanup task and closes the database connection
func (s *SQLiteStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	return nil
}
