package mailsource

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/charset"

	"github.com/ngocminh/spam-sentinel/internal/core"
	"github.com/ngocminh/spam-sentinel/internal/textutil"
)

const (
	// noContentMarker stands in when a message has no renderable part.
	noContentMarker = "[no content]"
	previewLength   = 300
)

var wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// parseMessage builds an EmailMessage from the raw protocol bytes of one
// fetched message.
func parseMessage(uid uint32, raw []byte) (core.EmailMessage, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return core.EmailMessage{}, fmt.Errorf("could not parse message: %w", err)
	}

	subject := decodeMIMEWords(msg.Header.Get("Subject"))
	if subject == "" {
		subject = "(no subject)"
	}
	sender := decodeMIMEWords(msg.Header.Get("From"))
	if sender == "" {
		sender = "(unknown sender)"
	}

	// Best effort: an unparsable Date header leaves the zero sentinel so the
	// message sorts last, it never fails the fetch.
	var receivedAt time.Time
	if parsed, err := mail.ParseDate(msg.Header.Get("Date")); err == nil {
		receivedAt = parsed
	}

	body := extractBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	body = textutil.SanitizeUTF8(body)
	if body == "" {
		body = noContentMarker
	}

	return core.EmailMessage{
		UID:         uid,
		Sender:      escapeHTML(sender),
		Subject:     escapeHTML(subject),
		ReceivedAt:  receivedAt,
		BodyFull:    body,
		BodyPreview: escapeHTML(textutil.Truncate(body, previewLength)),
	}, nil
}

// extractBody picks the message's renderable text: text/plain parts are
// preferred, HTML parts are kept as a tag-stripped fallback.
func extractBody(contentType, transferEncoding string, r io.Reader) string {
	plain, html := walkParts(contentType, transferEncoding, r)
	if plain != "" {
		return collapseWhitespace(stripTags(plain))
	}
	if html != "" {
		return collapseWhitespace(stripTags(html))
	}
	return ""
}

// walkParts descends into multipart bodies collecting the first text/plain
// and first text/html payloads. Attachments are skipped.
func walkParts(contentType, transferEncoding string, r io.Reader) (plain, html string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", ""
		}
		mr := multipart.NewReader(r, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			if strings.Contains(strings.ToLower(part.Header.Get("Content-Disposition")), "attachment") {
				continue
			}
			p, h := walkParts(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if plain == "" {
				plain = p
			}
			if html == "" {
				html = h
			}
		}
		return plain, html
	}

	if mediaType == "text/html" {
		return "", decodeTransfer(r, transferEncoding)
	}
	if strings.HasPrefix(mediaType, "text/") {
		return decodeTransfer(r, transferEncoding), ""
	}
	return "", ""
}

// decodeTransfer undoes the content transfer encoding, keeping whatever
// decoded cleanly on error.
func decodeTransfer(r io.Reader, encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		data, _ := io.ReadAll(base64.NewDecoder(base64.StdEncoding, r))
		return string(data)
	case "quoted-printable":
		data, _ := io.ReadAll(quotedprintable.NewReader(r))
		return string(data)
	default:
		data, _ := io.ReadAll(r)
		return string(data)
	}
}

// decodeMIMEWords decodes MIME encoded words in a header value, returning
// the raw value when decoding fails.
func decodeMIMEWords(s string) string {
	if s == "" {
		return ""
	}
	decoded, err := wordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

func stripTags(text string) string {
	return tagPattern.ReplaceAllString(text, " ")
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// escapeHTML escapes HTML-significant characters so subject, sender and
// preview render safely downstream.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
