package ports

import (
	"context"
	"time"
)

// SeenStore remembers message identifiers the monitor has already classified,
// bounded by a retention window. It exists because the mailbox re-scans its
// full lookback window on every poll and offers no server-side cursor.
type SeenStore interface {
	// Add records an identifier.
	Add(ctx context.Context, uid string, seenAt time.Time) error

	// Contains reports whether the identifier was recorded and not yet pruned.
	Contains(ctx context.Context, uid string) (bool, error)

	// Prune removes identifiers seen before the cutoff.
	Prune(ctx context.Context, olderThan time.Time) error

	// Close releases the store's resources.
	Close() error
}
