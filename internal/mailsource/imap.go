package mailsource

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/core"
)

var (
	ErrNotConnected         = errors.New("not connected to mailbox")
	ErrAuthenticationFailed = errors.New("mailbox authentication failed")
	ErrNetworkError         = errors.New("mailbox network error")
	ErrProtocolError        = errors.New("mailbox protocol error")
)

const (
	dialTimeout = 30 * time.Second
	inboxFolder = "INBOX"

	// Gmail keyword extension. Label writes are advisory: servers without
	// X-GM-LABELS reject the store and the message is left untouched.
	gmailLabelsItem = "+X-GM-LABELS"
	spamLabel       = `\Spam`
)

// IMAPSource reads a mailbox over IMAP with TLS. It is not safe for
// concurrent use; the monitor loop owns a single session at a time.
type IMAPSource struct {
	addr   string
	logger *zap.Logger
	conn   *client.Client
}

func NewIMAPSource(addr string, logger *zap.Logger) *IMAPSource {
	return &IMAPSource{
		addr:   addr,
		logger: logger,
	}
}

// Connect dials the server and logs in. Credential rejections map to
// ErrAuthenticationFailed, transport failures to ErrNetworkError and
// everything else to ErrProtocolError.
func (s *IMAPSource) Connect(email, password string) error {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := client.DialWithDialerTLS(dialer, s.addr, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrNetworkError, s.addr, err)
	}

	if err := conn.Login(email, password); err != nil {
		_ = conn.Logout()
		if isAuthFailure(err) {
			return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
		}
		return fmt.Errorf("%w: login: %v", ErrProtocolError, err)
	}

	s.conn = conn
	s.logger.Info("Connected to mailbox",
		zap.String("server", s.addr),
		zap.String("email", email))
	return nil
}

// FetchRecent returns up to limit messages received within the lookback
// window, newest first. Messages that fail to download or parse are skipped
// and counted rather than failing the whole batch.
func (s *IMAPSource) FetchRecent(limit, lookbackDays int) ([]core.EmailMessage, error) {
	if s.conn == nil {
		return nil, ErrNotConnected
	}

	if _, err := s.conn.Select(inboxFolder, false); err != nil {
		return nil, fmt.Errorf("%w: select %s: %v", ErrProtocolError, inboxFolder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().AddDate(0, 0, -lookbackDays)
	uids, err := s.conn.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrProtocolError, err)
	}
	if len(uids) == 0 {
		return []core.EmailMessage{}, nil
	}
	// Search results come back in mailbox order, oldest first.
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make([]core.EmailMessage, 0, len(uids))
	skipped := 0
	for i := len(uids) - 1; i >= 0; i-- {
		uid := uids[i]
		raw, err := s.fetchBody(uid, section, items)
		if err != nil {
			skipped++
			s.logger.Warn("Skipping message that failed to download",
				zap.Uint32("uid", uid),
				zap.Error(err))
			continue
		}
		msg, err := parseMessage(uid, raw)
		if err != nil {
			skipped++
			s.logger.Warn("Skipping message that failed to parse",
				zap.Uint32("uid", uid),
				zap.Error(err))
			continue
		}
		messages = append(messages, msg)
	}

	sort.SliceStable(messages, func(a, b int) bool {
		return messages[a].ReceivedAt.After(messages[b].ReceivedAt)
	})

	s.logger.Info("Fetched recent messages",
		zap.Int("fetched", len(messages)),
		zap.Int("skipped", skipped),
		zap.Int("lookback_days", lookbackDays))
	return messages, nil
}

func (s *IMAPSource) fetchBody(uid uint32, section *imap.BodySectionName, items []imap.FetchItem) ([]byte, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	ch := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.conn.UidFetch(seqset, items, ch)
	}()

	var raw []byte
	for msg := range ch {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		data, err := io.ReadAll(body)
		if err != nil {
			continue
		}
		raw = data
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch uid %d: %w", uid, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("no body returned for uid %d", uid)
	}
	return raw, nil
}

// Disconnect closes the session. It is safe to call repeatedly and when
// never connected.
func (s *IMAPSource) Disconnect() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Logout(); err != nil {
		s.logger.Debug("Logout failed during teardown", zap.Error(err))
	}
	s.conn = nil
}

// MarkAsSpam applies the server's spam label to the message.
func (s *IMAPSource) MarkAsSpam(uid uint32) bool {
	return s.AddLabel(uid, spamLabel)
}

// AddLabel attaches a label to the message. Failures are logged and
// reported through the return value so callers can keep processing.
func (s *IMAPSource) AddLabel(uid uint32, label string) bool {
	if s.conn == nil {
		s.logger.Warn("Cannot label message without a connection", zap.Uint32("uid", uid))
		return false
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	item := imap.StoreItem(gmailLabelsItem)
	if err := s.conn.UidStore(seqset, item, []interface{}{label}, nil); err != nil {
		s.logger.Warn("Failed to label message",
			zap.Uint32("uid", uid),
			zap.String("label", label),
			zap.Error(err))
		return false
	}

	s.logger.Debug("Labeled message",
		zap.Uint32("uid", uid),
		zap.String("label", label))
	return true
}

func isAuthFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authentication failed") ||
		strings.Contains(msg, "authenticationfailed") ||
		strings.Contains(msg, "invalid credentials")
}
