package mailsource

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessagePlainText(t *testing.T) {
	raw := strings.Join([]string{
		"From: Alice <alice@example.com>",
		"Subject: Quarterly report",
		"Date: Mon, 12 Jan 2026 10:30:00 +0000",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Hi team, attaching the quarterly report as discussed.",
	}, "\r\n")

	msg, err := parseMessage(42, []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, uint32(42), msg.UID)
	assert.Equal(t, "Quarterly report", msg.Subject)
	assert.Equal(t, "Alice &lt;alice@example.com&gt;", msg.Sender)
	assert.Equal(t, time.Date(2026, 1, 12, 10, 30, 0, 0, time.UTC), msg.ReceivedAt.UTC())
	assert.Equal(t, "Hi team, attaching the quarterly report as discussed.", msg.BodyFull)
	assert.Equal(t, msg.BodyFull, msg.BodyPreview)
}

func TestParseMessageEncodedSubject(t *testing.T) {
	raw := strings.Join([]string{
		"From: bob@example.com",
		"Subject: =?utf-8?q?Caf=C3=A9_meeting?=",
		"Content-Type: text/plain",
		"",
		"See you there.",
	}, "\r\n")

	msg, err := parseMessage(1, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Café meeting", msg.Subject)
}

func TestParseMessageMissingHeaders(t *testing.T) {
	raw := "Content-Type: text/plain\r\n\r\nbody\r\n"

	msg, err := parseMessage(7, []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "(no subject)", msg.Subject)
	assert.Equal(t, "(unknown sender)", msg.Sender)
	assert.True(t, msg.ReceivedAt.IsZero())
}

func TestParseMessagePrefersPlainOverHTML(t *testing.T) {
	raw := strings.Join([]string{
		"From: a@b.c",
		"Subject: multipart",
		"Content-Type: multipart/alternative; boundary=frontier",
		"",
		"--frontier",
		"Content-Type: text/html",
		"",
		"<p>Rich <b>offer</b></p>",
		"--frontier",
		"Content-Type: text/plain",
		"",
		"Plain offer",
		"--frontier--",
	}, "\r\n")

	msg, err := parseMessage(3, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Plain offer", msg.BodyFull)
}

func TestParseMessageHTMLFallback(t *testing.T) {
	raw := strings.Join([]string{
		"From: a@b.c",
		"Subject: html only",
		"Content-Type: text/html",
		"",
		"<html><body><p>Win   big</p><p>today</p></body></html>",
	}, "\r\n")

	msg, err := parseMessage(4, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Win big today", msg.BodyFull)
}

func TestParseMessageBase64Body(t *testing.T) {
	raw := strings.Join([]string{
		"From: a@b.c",
		"Subject: encoded",
		"Content-Type: text/plain",
		"Content-Transfer-Encoding: base64",
		"",
		"aGVsbG8gd29ybGQ=",
	}, "\r\n")

	msg, err := parseMessage(5, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "hello world", msg.BodyFull)
}

func TestParseMessageQuotedPrintableBody(t *testing.T) {
	raw := strings.Join([]string{
		"From: a@b.c",
		"Subject: encoded",
		"Content-Type: text/plain",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"caf=C3=A9 deal",
	}, "\r\n")

	msg, err := parseMessage(6, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "café deal", msg.BodyFull)
}

func TestParseMessageSkipsAttachments(t *testing.T) {
	raw := strings.Join([]string{
		"From: a@b.c",
		"Subject: with attachment",
		"Content-Type: multipart/mixed; boundary=xx",
		"",
		"--xx",
		"Content-Type: text/plain",
		"Content-Disposition: attachment; filename=notes.txt",
		"",
		"attachment text",
		"--xx",
		"Content-Type: text/plain",
		"",
		"real body",
		"--xx--",
	}, "\r\n")

	msg, err := parseMessage(8, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "real body", msg.BodyFull)
}

func TestParseMessageNoContent(t *testing.T) {
	raw := strings.Join([]string{
		"From: a@b.c",
		"Subject: empty",
		"Content-Type: text/plain",
		"",
		"",
	}, "\r\n")

	msg, err := parseMessage(9, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, noContentMarker, msg.BodyFull)
}

func TestParseMessagePreviewTruncation(t *testing.T) {
	body := strings.Repeat("a", previewLength+50)
	raw := "From: a@b.c\r\nSubject: long\r\nContent-Type: text/plain\r\n\r\n" + body

	msg, err := parseMessage(10, []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, body, msg.BodyFull)
	assert.Equal(t, strings.Repeat("a", previewLength)+"...", msg.BodyPreview)
}

func TestParseMessageRejectsGarbage(t *testing.T) {
	_, err := parseMessage(11, []byte("not a message"))
	assert.Error(t, err)
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;&quot;hi&quot; &amp; &#x27;bye&#x27;&lt;/b&gt;", escapeHTML(`<b>"hi" & 'bye'</b>`))
}
