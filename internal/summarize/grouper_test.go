package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxai/internal/mailbox"
)

func msg(id, senderEmail, subject string) *mailbox.Message {
	return &mailbox.Message{
		ID:          id,
		Sender:      senderEmail,
		SenderEmail: senderEmail,
		Subject:     subject,
	}
}

func TestGroupBySenderAndThread(t *testing.T) {
	g := NewGrouper()

	messages := []*mailbox.Message{
		msg("1", "alice@example.com", "Budget Review"),
		msg("2", "alice@example.com", "Re: Budget Review"),
		msg("3", "bob@example.com", "Lunch?"),
	}

	groups := g.Group(messages)
	require.Len(t, groups, 2)

	assert.Equal(t, "1", groups[0].Lead.ID)
	assert.Equal(t, 2, groups[0].Size())
	assert.Equal(t, "3", groups[1].Lead.ID)
	assert.Equal(t, 1, groups[1].Size())
}

func TestGroupSubjectMatchAcrossSenders(t *testing.T) {
	g := NewGrouper()

	messages := []*mailbox.Message{
		msg("1", "alice@example.com", "Project Kickoff"),
		msg("2", "bob@example.com", "RE: project kickoff"),
		msg("3", "carol@example.com", "Fwd: Project Kickoff "),
		msg("4", "dave@example.com", "Unrelated"),
	}

	groups := g.Group(messages)
	require.Len(t, groups, 2)
	assert.Equal(t, 3, groups[0].Size())
	assert.Equal(t, "4", groups[1].Lead.ID)
}

func TestGroupEveryMessageExactlyOnce(t *testing.T) {
	g := NewGrouper()

	messages := []*mailbox.Message{
		msg("1", "alice@example.com", "A"),
		msg("2", "bob@example.com", "B"),
		msg("3", "alice@example.com", "C"),
		msg("4", "carol@example.com", "B"),
		msg("5", "dave@example.com", "D"),
	}

	groups := g.Group(messages)

	seen := map[string]int{}
	total := 0
	for _, grp := range groups {
		for _, m := range grp.Members {
			seen[m.ID]++
			total++
		}
	}

	assert.Equal(t, len(messages), total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "message %s appears once", id)
	}
}

func TestGroupOrderFollowsFirstOccurrence(t *testing.T) {
	g := NewGrouper()

	messages := []*mailbox.Message{
		msg("1", "zed@example.com", "Z topic"),
		msg("2", "amy@example.com", "A topic"),
		msg("3", "zed@example.com", "Another from zed"),
	}

	groups := g.Group(messages)
	require.Len(t, groups, 2)
	assert.Equal(t, "1", groups[0].Lead.ID)
	assert.Equal(t, "2", groups[1].Lead.ID)
}

func TestGroupEmptyBatch(t *testing.T) {
	g := NewGrouper()
	assert.Empty(t, g.Group(nil))
	assert.Empty(t, g.Group([]*mailbox.Message{}))
}

func TestCleanSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{name: "plain", subject: "Budget", want: "budget"},
		{name: "re prefix", subject: "Re: Budget", want: "budget"},
		{name: "fwd prefix", subject: "Fwd: Budget", want: "budget"},
		{name: "fw prefix", subject: "FW: Budget", want: "budget"},
		{name: "whitespace", subject: "  Re:   Budget  ", want: "budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanSubject(tt.subject))
		})
	}
}
