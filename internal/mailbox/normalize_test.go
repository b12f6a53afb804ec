package mailbox

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailv1 "google.golang.org/api/gmail/v1"

	"inboxai/internal/logger"
	pkgerrors "inboxai/pkg/errors"
)

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func rawMessage(id, from, subject, date, body string) *gmailv1.Message {
	return &gmailv1.Message{
		Id: id,
		Payload: &gmailv1.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
				{Name: "Date", Value: date},
			},
			Body: &gmailv1.MessagePartBody{Data: encodeBody(body)},
		},
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(logger.NopLogger())

	raw := rawMessage("msg-1", `"Alice Smith" <alice@example.com>`, "Budget Review", "Mon, 02 Jan 2006 15:04:05 -0700", "Let's review the numbers.")

	msg, err := n.Normalize(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "Alice Smith", msg.Sender)
	assert.Equal(t, `"Alice Smith" <alice@example.com>`, msg.SenderEmail)
	assert.Equal(t, "Budget Review", msg.Subject)
	assert.Equal(t, "Let's review the numbers.", msg.Body)
	assert.Equal(t, 2006, msg.Timestamp.Year())
}

func TestNormalizeRejectsEmptyPayload(t *testing.T) {
	n := NewNormalizer(logger.NopLogger())

	_, err := n.Normalize(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNormalization(err))

	_, err = n.Normalize(context.Background(), &gmailv1.Message{Id: "no-payload"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNormalization(err))
}

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer(logger.NopLogger())

	raw := &gmailv1.Message{
		Id: "msg-2",
		Payload: &gmailv1.MessagePart{
			MimeType: "text/plain",
			Body:     &gmailv1.MessagePartBody{Data: encodeBody("hello")},
		},
	}

	msg, err := n.Normalize(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Unknown", msg.Sender)
	assert.Equal(t, "No Subject", msg.Subject)
	// unparseable date falls back to now
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
}

func TestNormalizePrefersPlainText(t *testing.T) {
	n := NewNormalizer(logger.NopLogger())

	raw := &gmailv1.Message{
		Id: "msg-3",
		Payload: &gmailv1.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: "bob@example.com"},
			},
			Parts: []*gmailv1.MessagePart{
				{
					MimeType: "text/html",
					Body:     &gmailv1.MessagePartBody{Data: encodeBody("<p>html body</p>")},
				},
				{
					MimeType: "text/plain",
					Body:     &gmailv1.MessagePartBody{Data: encodeBody("plain body")},
				},
			},
		},
	}

	msg, err := n.Normalize(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "plain body", msg.Body)
}

func TestNormalizeStripsHTMLFallback(t *testing.T) {
	n := NewNormalizer(logger.NopLogger())

	raw := &gmailv1.Message{
		Id: "msg-4",
		Payload: &gmailv1.MessagePart{
			MimeType: "text/html",
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: "bob@example.com"},
			},
			Body: &gmailv1.MessagePartBody{
				Data: encodeBody("<div>Hello <b>there</b> &amp; welcome</div>"),
			},
		},
	}

	msg, err := n.Normalize(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Hello there & welcome", msg.Body)
}

func TestSenderName(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{name: "display name", from: "Alice Smith <alice@example.com>", want: "Alice Smith"},
		{name: "quoted display name", from: `"Alice Smith" <alice@example.com>`, want: "Alice Smith"},
		{name: "bare address", from: "bob@example.com", want: "bob"},
		{name: "angle brackets only", from: "<carol@example.com>", want: "carol"},
		{name: "no address shape", from: "Mailer Daemon", want: "Mailer Daemon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, senderName(tt.from))
		})
	}
}

func TestParseDateLayouts(t *testing.T) {
	tests := []struct {
		name  string
		value string
		year  int
	}{
		{name: "rfc1123z", value: "Mon, 02 Jan 2006 15:04:05 -0700", year: 2006},
		{name: "rfc1123", value: "Mon, 02 Jan 2006 15:04:05 MST", year: 2006},
		{name: "rfc3339", value: "2021-06-15T10:00:00Z", year: 2021},
		{name: "single digit day", value: "Mon, 2 Jan 2006 15:04:05 -0700", year: 2006},
		{name: "zone comment", value: "Mon, 2 Jan 2006 15:04:05 -0700 (MST)", year: 2006},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := parseDate(tt.value)
			assert.Equal(t, tt.year, ts.Year())
		})
	}
}

func TestCleanBodyStripsSignatures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "dash signature",
			body: "Main content here.\n-- \nAlice\nACME Corp",
			want: "Main content here.",
		},
		{
			name: "best regards",
			body: "See you tomorrow.\nBest regards,\nBob",
			want: "See you tomorrow.",
		},
		{
			name: "sincerely",
			body: "Please confirm.\nSincerely,\nCarol",
			want: "Please confirm.",
		},
		{
			name: "sent from my",
			body: "Quick reply.\nSent from my iPhone",
			want: "Quick reply.",
		},
		{
			name: "collapses blank lines",
			body: "First.\n\n\n\nSecond.",
			want: "First.\n\nSecond.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanBody(tt.body))
		})
	}
}

func TestCleanBodyCapsLength(t *testing.T) {
	body := strings.Repeat("a", 5000)
	cleaned := CleanBody(body)
	assert.Len(t, cleaned, 2003)
	assert.True(t, strings.HasSuffix(cleaned, "..."))
}

func TestCleanBodyCapMultibyteSafe(t *testing.T) {
	// Multibyte runes straddling the cap must not be cut mid-sequence.
	body := strings.Repeat("a", 1999) + strings.Repeat("é", 50)
	cleaned := CleanBody(body)

	assert.True(t, utf8.ValidString(cleaned))
	assert.Equal(t, 2003, utf8.RuneCountInString(cleaned))
	assert.True(t, strings.HasSuffix(cleaned, "é..."))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "under limit untouched", input: "short", limit: 10, want: "short"},
		{name: "exact limit untouched", input: "12345", limit: 5, want: "12345"},
		{name: "ascii over limit", input: "abcdef", limit: 3, want: "abc..."},
		{name: "multibyte over limit", input: "ééééé", limit: 3, want: "ééé..."},
		{name: "multibyte under byte length", input: "éé", limit: 3, want: "éé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestDecodeBase64URLUnpadded(t *testing.T) {
	raw := base64.RawURLEncoding.EncodeToString([]byte("unpadded body"))
	assert.Equal(t, "unpadded body", decodeBase64URL(raw))
	assert.Equal(t, "", decodeBase64URL("not base64!!!"))
}
