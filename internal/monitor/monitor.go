package monitor

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/core"
	"github.com/ngocminh/spam-sentinel/internal/ports"
	"github.com/ngocminh/spam-sentinel/internal/whitelist"
)

// State identifies where the monitor loop currently is in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateInitialScan
	StatePolling
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateInitialScan:
		return "initial_scan"
	case StatePolling:
		return "polling"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const defaultReconnectCooldown = 60 * time.Second

// Options configures a monitor loop.
type Options struct {
	Email             string
	Password          string
	Model             string
	CheckInterval     time.Duration
	InitialLoad       int
	PollLimit         int
	LookbackDays      int
	NotifyOnSpam      bool
	NotifyOnHam       bool
	AutoLabel         bool
	ReconnectCooldown time.Duration
}

// Stats accumulates counters over the lifetime of one Run call.
type Stats struct {
	InitialScanned int
	InitialSpam    int
	Cycles         int
	SpamDetected   int
	HamVerified    int
	Errors         int
}

// Loop watches one mailbox, classifies what arrives and pushes
// notifications. All mailbox access happens on the Run goroutine; the
// session is never shared.
type Loop struct {
	source     ports.MailSource
	classifier ports.MessageClassifier
	sink       ports.NotificationSink
	seen       ports.SeenStore
	whitelist  *whitelist.Checker
	opts       Options
	logger     *zap.Logger

	state atomic.Int32

	mu    sync.Mutex
	stats Stats
}

// New creates a monitor loop. A zero ReconnectCooldown falls back to the
// default of one minute.
func New(
	source ports.MailSource,
	classifier ports.MessageClassifier,
	sink ports.NotificationSink,
	seen ports.SeenStore,
	wl *whitelist.Checker,
	opts Options,
	logger *zap.Logger,
) *Loop {
	if opts.ReconnectCooldown <= 0 {
		opts.ReconnectCooldown = defaultReconnectCooldown
	}
	return &Loop{
		source:     source,
		classifier: classifier,
		sink:       sink,
		seen:       seen,
		whitelist:  wl,
		opts:       opts,
		logger:     logger,
	}
}

// State returns the loop's current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Stats returns a snapshot of the accumulated counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Loop) updateStats(fn func(*Stats)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.stats)
}

// Run drives the loop until the context is cancelled. A failure to establish
// the first connection is fatal; once connected, poll failures trigger
// reconnect attempts instead of exiting.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.setState(StateStopped)
		l.source.Disconnect()
		stats := l.Stats()
		l.logger.Info("Monitor stopped",
			zap.Int("initial_scanned", stats.InitialScanned),
			zap.Int("initial_spam", stats.InitialSpam),
			zap.Int("cycles", stats.Cycles),
			zap.Int("spam_detected", stats.SpamDetected),
			zap.Int("ham_verified", stats.HamVerified),
			zap.Int("errors", stats.Errors))
	}()

	l.setState(StateConnecting)
	if err := l.source.Connect(l.opts.Email, l.opts.Password); err != nil {
		return fmt.Errorf("initial connect: %w", err)
	}

	if err := l.sink.ServiceStarted(); err != nil {
		l.logger.Warn("Failed to send startup notification", zap.Error(err))
	}

	l.setState(StateInitialScan)
	l.initialScan(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}
		l.setState(StatePolling)
		if err := l.pollOnce(ctx); err != nil {
			l.logger.Error("Poll cycle failed", zap.Error(err))
			l.notifyError(fmt.Sprintf("Poll cycle failed: %v", err))
			if err := l.reconnect(ctx); err != nil {
				return nil
			}
			continue
		}
		l.updateStats(func(s *Stats) { s.Cycles++ })
		if err := sleepCtx(ctx, l.opts.CheckInterval); err != nil {
			return nil
		}
	}
}

// initialScan classifies the existing tail of the mailbox to establish a
// baseline. It logs what it finds but sends no notifications.
func (l *Loop) initialScan(ctx context.Context) {
	messages, err := l.source.FetchRecent(l.opts.InitialLoad, l.opts.LookbackDays)
	if err != nil {
		l.logger.Error("Initial scan failed", zap.Error(err))
		return
	}

	spam := 0
	for _, msg := range messages {
		if ctx.Err() != nil {
			return
		}
		label := l.classify(msg)
		l.markSeen(ctx, msg.UID, label)
		if label == core.LabelSpam {
			spam++
			l.logger.Info("Spam found during initial scan",
				zap.String("subject", msg.Subject),
				zap.String("sender", msg.Sender),
				zap.Time("received_at", msg.ReceivedAt))
		}
	}

	l.updateStats(func(s *Stats) {
		s.InitialScanned = len(messages)
		s.InitialSpam = spam
	})
	l.logger.Info("Initial scan complete",
		zap.Int("scanned", len(messages)),
		zap.Int("spam", spam))
}

func (l *Loop) pollOnce(ctx context.Context) error {
	messages, err := l.source.FetchRecent(l.opts.PollLimit, l.opts.LookbackDays)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if ctx.Err() != nil {
			return nil
		}
		uid := formatUID(msg.UID)
		seen, err := l.seen.Contains(ctx, uid)
		if err != nil {
			l.logger.Warn("Seen store lookup failed", zap.String("uid", uid), zap.Error(err))
		}
		if seen {
			continue
		}
		l.handleMessage(ctx, msg)
	}
	return nil
}

func (l *Loop) handleMessage(ctx context.Context, msg core.EmailMessage) {
	label := l.classify(msg)

	switch label {
	case core.LabelSpam:
		l.updateStats(func(s *Stats) { s.SpamDetected++ })
		l.logger.Info("Spam detected",
			zap.String("subject", msg.Subject),
			zap.String("sender", msg.Sender))
		if l.opts.NotifyOnSpam {
			if err := l.sink.SpamDetected(msg.Subject, msg.Sender, msg.ReceivedAt); err != nil {
				l.logger.Warn("Failed to send spam notification", zap.Error(err))
			}
		}
		if l.opts.AutoLabel {
			if !l.source.MarkAsSpam(msg.UID) {
				l.logger.Warn("Could not label message as spam", zap.Uint32("uid", msg.UID))
			}
		}
	case core.LabelHam:
		l.updateStats(func(s *Stats) { s.HamVerified++ })
		if l.opts.NotifyOnHam {
			if err := l.sink.HamVerified(msg.Subject, msg.Sender, msg.ReceivedAt); err != nil {
				l.logger.Warn("Failed to send ham notification", zap.Error(err))
			}
		}
	default:
		l.updateStats(func(s *Stats) { s.Errors++ })
		l.notifyError(fmt.Sprintf("Could not classify message %q", msg.Subject))
	}

	l.markSeen(ctx, msg.UID, label)
}

// classify runs the whitelist short-circuit and the classifier. Any failure
// collapses to the error label so callers have a single outcome to branch on.
func (l *Loop) classify(msg core.EmailMessage) core.Label {
	if l.whitelist != nil && l.whitelist.IsWhitelisted(msg.Sender) {
		l.logger.Debug("Sender whitelisted, treating as ham",
			zap.String("sender", msg.Sender))
		return core.LabelHam
	}

	label, err := l.classifier.ClassifyOne(msg.BodyFull, l.opts.Model)
	if err != nil {
		l.logger.Error("Classification failed",
			zap.Uint32("uid", msg.UID),
			zap.Error(err))
		return core.LabelError
	}
	return label
}

// markSeen records a handled message. Error outcomes are deliberately not
// recorded so the message gets another chance on the next cycle.
func (l *Loop) markSeen(ctx context.Context, uid uint32, label core.Label) {
	if label == core.LabelError {
		return
	}
	if err := l.seen.Add(ctx, formatUID(uid), time.Now()); err != nil {
		l.logger.Warn("Failed to record seen message",
			zap.Uint32("uid", uid),
			zap.Error(err))
	}
}

// reconnect tears the session down and retries until a connect succeeds or
// the context is cancelled. Each attempt waits out the cooldown first.
func (l *Loop) reconnect(ctx context.Context) error {
	l.setState(StateReconnecting)
	for {
		if err := sleepCtx(ctx, l.opts.ReconnectCooldown); err != nil {
			return err
		}
		l.source.Disconnect()
		if err := l.source.Connect(l.opts.Email, l.opts.Password); err != nil {
			l.logger.Warn("Reconnect attempt failed", zap.Error(err))
			continue
		}
		l.logger.Info("Reconnected to mailbox")
		return nil
	}
}

func (l *Loop) notifyError(message string) {
	if err := l.sink.ErrorOccurred(message); err != nil {
		l.logger.Debug("Failed to send error notification", zap.Error(err))
	}
}

func (l *Loop) setState(s State) {
	prev := State(l.state.Swap(int32(s)))
	if prev != s {
		l.logger.Debug("Monitor state changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", s))
	}
}

func formatUID(uid uint32) string {
	return strconv.FormatUint(uint64(uid), 10)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
