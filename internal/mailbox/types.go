package mailbox

import "time"

// DateLayout is the human-facing timestamp format carried on summary records.
const DateLayout = "2006-01-02 15:04"

// Message is a normalized mailbox message: plain-text body, cleaned sender,
// parsed timestamp. Produced by the Normalizer from a raw API message.
type Message struct {
	ID          string
	Sender      string // display name derived from the From header
	SenderEmail string // raw From header value
	Subject     string
	Body        string
	Timestamp   time.Time
}
