package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSink(t *testing.T, handler http.HandlerFunc) *TelegramSink {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sink := NewTelegramSink("test-token", "12345", zap.NewNop())
	sink.endpoint = server.URL
	return sink
}

func TestSendDeliversMessage(t *testing.T) {
	var gotPath string
	var gotForm map[string][]string
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotForm = r.PostForm
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, sink.Send("hello"))

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, []string{"12345"}, gotForm["chat_id"])
	assert.Equal(t, []string{"hello"}, gotForm["text"])
	assert.Equal(t, []string{"HTML"}, gotForm["parse_mode"])
}

func TestSendNotConfigured(t *testing.T) {
	sink := NewTelegramSink("", "", zap.NewNop())
	assert.ErrorIs(t, sink.Send("hello"), ErrNotConfigured)
}

func TestSendChannelError(t *testing.T) {
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	err := sink.Send("hello")
	require.Error(t, err)

	var chanErr *ChannelError
	require.ErrorAs(t, err, &chanErr)
	assert.Equal(t, http.StatusBadRequest, chanErr.StatusCode)
	assert.Contains(t, chanErr.Body, "bad request")
}

func TestSendTimeout(t *testing.T) {
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	sink.client = &http.Client{Timeout: 50 * time.Millisecond}

	assert.ErrorIs(t, sink.Send("hello"), ErrTimeout)
}

func TestSpamDetectedTruncatesFields(t *testing.T) {
	var gotText string
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.PostForm.Get("text")
	})

	longSubject := strings.Repeat("s", 150)
	received := time.Date(2026, 2, 3, 9, 15, 0, 0, time.UTC)
	require.NoError(t, sink.SpamDetected(longSubject, "spammer@example.com", received))

	assert.Contains(t, gotText, "Spam detected")
	assert.Contains(t, gotText, strings.Repeat("s", notifyFieldLength)+"...")
	assert.NotContains(t, gotText, strings.Repeat("s", notifyFieldLength+1))
	assert.Contains(t, gotText, "spammer@example.com")
	assert.Contains(t, gotText, "2026-02-03 09:15")
}

func TestHamVerifiedUnknownDate(t *testing.T) {
	var gotText string
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.PostForm.Get("text")
	})

	require.NoError(t, sink.HamVerified("subject", "sender", time.Time{}))
	assert.Contains(t, gotText, "Ham verified")
	assert.Contains(t, gotText, "unknown")
}

func TestServiceStarted(t *testing.T) {
	var gotText string
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.PostForm.Get("text")
	})

	require.NoError(t, sink.ServiceStarted())
	assert.Contains(t, gotText, "started")
}

func TestErrorOccurred(t *testing.T) {
	var gotText string
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.PostForm.Get("text")
	})

	require.NoError(t, sink.ErrorOccurred("connection lost"))
	assert.Contains(t, gotText, "connection lost")
}
