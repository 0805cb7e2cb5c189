package ports

import (
	"github.com/ngocminh/spam-sentinel/internal/core"
)

// MailSource manages a stateful session against a remote mailbox. A session
// must not be used concurrently from two call sites; the monitor loop owns
// its session exclusively.
type MailSource interface {
	// Connect opens a secure session to the remote mailbox. On failure the
	// source stays disconnected.
	Connect(email, password string) error

	// FetchRecent returns at most limit messages received within the last
	// lookbackDays days, sorted by receive time descending. Per-message
	// parse failures are skipped, not surfaced. An empty time window yields
	// an empty slice, not an error.
	FetchRecent(limit, lookbackDays int) ([]core.EmailMessage, error)

	// Disconnect closes the session best-effort and is idempotent.
	Disconnect()

	// MarkAsSpam moves the message to the spam label on the remote store.
	// Best effort: returns false on any failure.
	MarkAsSpam(uid uint32) bool

	// AddLabel attaches a label to the message on the remote store.
	// Best effort: returns false on any failure.
	AddLabel(uid uint32, label string) bool
}
