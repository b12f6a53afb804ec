package mailbox

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	gmailv1 "google.golang.org/api/gmail/v1"

	"inboxai/internal/constants"
	"inboxai/internal/logger"
	"inboxai/pkg/errors"
)

// dateLayouts covers the RFC 2822 family seen in Date headers.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
}

// signaturePatterns remove trailing signatures and footers. Each pattern
// consumes everything after its anchor.
var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\n--\s*\n.*`),
	regexp.MustCompile(`(?is)\nbest regards.*`),
	regexp.MustCompile(`(?is)\nsincerely.*`),
	regexp.MustCompile(`(?is)\nthanks.*\n.*@.*`),
	regexp.MustCompile(`(?is)\nsent from my.*`),
	regexp.MustCompile(`(?is)\n\[.*\].*`),
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

type Normalizer struct {
	logger logger.Logger
}

func NewNormalizer(log logger.Logger) *Normalizer {
	return &Normalizer{logger: log}
}

// Normalize converts a raw API message into a Message. A message that
// cannot be normalized returns an error; callers skip it and keep the rest
// of the batch.
func (n *Normalizer) Normalize(ctx context.Context, raw *gmailv1.Message) (*Message, error) {
	if raw == nil || raw.Payload == nil {
		return nil, errors.ErrNormalization.WithDetail("reason", "empty payload")
	}

	sender := headerValue(raw.Payload.Headers, "From")
	if sender == "" {
		sender = "Unknown"
	}
	subject := headerValue(raw.Payload.Headers, "Subject")
	if subject == "" {
		subject = "No Subject"
	}

	ts := parseDate(headerValue(raw.Payload.Headers, "Date"))

	body := extractBody(raw.Payload)
	body = CleanBody(body)

	return &Message{
		ID:          raw.Id,
		Sender:      senderName(sender),
		SenderEmail: sender,
		Subject:     subject,
		Body:        body,
		Timestamp:   ts,
	}, nil
}

func headerValue(headers []*gmailv1.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// senderName reduces a From header to a display name: the quoted name when
// present, the local part of a bare address, or the raw value.
func senderName(from string) string {
	if i := strings.Index(from, "<"); i >= 0 && strings.Contains(from, ">") {
		name := strings.TrimSpace(from[:i])
		name = strings.Trim(name, `"`)
		if name != "" {
			return name
		}
		// "<addr>" with no display name falls through to the local part.
		from = strings.Trim(from[i:], "<> ")
	}
	if at := strings.IndexByte(from, '@'); at > 0 {
		return from[:at]
	}
	return from
}

func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t
			}
		}
	}
	return time.Now()
}

// extractBody walks the MIME tree preferring text/plain, falling back to
// stripped text/html.
func extractBody(payload *gmailv1.MessagePart) string {
	if body := extractPlainText(payload); body != "" {
		return body
	}
	if html := extractHTML(payload); html != "" {
		return stripHTMLTags(html)
	}
	return ""
}

func extractPlainText(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.EqualFold(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		return decodeBase64URL(part.Body.Data)
	}

	if len(part.Parts) > 0 {
		// multipart/alternative prefers text/plain over siblings
		for _, sub := range part.Parts {
			if strings.EqualFold(sub.MimeType, "text/plain") {
				if body := extractPlainText(sub); body != "" {
					return body
				}
			}
		}
		for _, sub := range part.Parts {
			if body := extractPlainText(sub); body != "" {
				return body
			}
		}
	}

	return ""
}

func extractHTML(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.EqualFold(part.MimeType, "text/html") && part.Body != nil && part.Body.Data != "" {
		return decodeBase64URL(part.Body.Data)
	}

	for _, sub := range part.Parts {
		if body := extractHTML(sub); body != "" {
			return body
		}
	}

	return ""
}

func stripHTMLTags(html string) string {
	for _, tag := range []string{"<br>", "<br/>", "<br />", "</p>", "</div>", "</tr>", "</li>"} {
		html = strings.ReplaceAll(html, tag, "\n")
		html = strings.ReplaceAll(html, strings.ToUpper(tag), "\n")
	}

	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	result := b.String()

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&apos;", "'",
		"&nbsp;", " ",
	)
	return replacer.Replace(result)
}

func decodeBase64URL(data string) string {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// unpadded base64url
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(b)
}

// CleanBody strips signatures and footers, collapses blank lines, and caps
// the length for summarization.
func CleanBody(body string) string {
	if body == "" {
		return ""
	}

	cleaned := body
	for _, pattern := range signaturePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	cleaned = blankLines.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	return Truncate(cleaned, constants.BodyCharLimit)
}

// Truncate caps s at limit characters, appending an ellipsis when anything
// was dropped. The cut is made on rune boundaries so multibyte text stays
// valid UTF-8.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
