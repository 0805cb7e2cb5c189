package seenstore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the SeenStore interface.
// Entries do not survive a restart, so messages already handled may be
// rescanned after one.
type MemoryStore struct {
	entries     map[string]time.Time
	mu          sync.RWMutex
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryStore creates a new in-memory seen store
func NewMemoryStore(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryStore {
	store := &MemoryStore{
		entries:     make(map[string]time.Time),
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store
}

// Add records a message identifier as handled
func (s *MemoryStore) Add(ctx context.Context, uid string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[uid] = seenAt
	return nil
}

// Contains reports whether a message identifier was already handled
func (s *MemoryStore) Contains(ctx context.Context, uid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[uid]
	return ok, nil
}

// Prune removes entries recorded before the given time
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prunedCount := 0
	for uid, seenAt := range s.entries {
		if seenAt.Before(olderThan) {
			delete(s.entries, uid)
			prunedCount++
		}
	}

	s.logger.Debug("Pruned old seen entries", zap.Int("pruned_count", prunedCount))
	return nil
}

// startCleanupTask starts a background task to prune old entries
func (s *MemoryStore) startCleanupTask() {
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

// Close stops the background cleanup task
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	return nil
}
