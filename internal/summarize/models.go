package summarize

import "inboxai/internal/mailbox"

// SummaryRecord is one line of a digest: a summarized message or thread.
type SummaryRecord struct {
	ID         string `json:"id"`
	Sender     string `json:"sender"`
	Subject    string `json:"subject"`
	Date       string `json:"date"`
	Summary    string `json:"summary"`
	EmailCount int    `json:"email_count"`
	Status     string `json:"status"`
}

// MessageGroup is a topic bucket produced by the grouper. Lead is the seed
// message; Members holds every message in the bucket, Lead included.
type MessageGroup struct {
	Lead    *mailbox.Message
	Members []*mailbox.Message
}

func (g *MessageGroup) Size() int {
	return len(g.Members)
}
