package summarize

import (
	"regexp"
	"strings"

	"inboxai/internal/mailbox"
)

var replyPrefix = regexp.MustCompile(`^(re:|fwd?:)\s*`)

// Grouper partitions a batch into topic buckets. Deterministic single-pass
// seed scan: quadratic, acceptable at the batch cap of 100.
type Grouper struct{}

func NewGrouper() *Grouper {
	return &Grouper{}
}

// Group buckets messages that share a sender address or a subject equal
// after stripping reply/forward prefixes. Every message lands in exactly
// one group; group order follows the first occurrence of each seed.
func (g *Grouper) Group(messages []*mailbox.Message) []*MessageGroup {
	groups := make([]*MessageGroup, 0, len(messages))
	used := make([]bool, len(messages))

	for i, seed := range messages {
		if used[i] {
			continue
		}
		used[i] = true

		group := &MessageGroup{
			Lead:    seed,
			Members: []*mailbox.Message{seed},
		}
		seedSubject := cleanSubject(seed.Subject)

		for j := i + 1; j < len(messages); j++ {
			if used[j] {
				continue
			}
			other := messages[j]
			if seed.SenderEmail == other.SenderEmail || seedSubject == cleanSubject(other.Subject) {
				group.Members = append(group.Members, other)
				used[j] = true
			}
		}

		groups = append(groups, group)
	}

	return groups
}

// cleanSubject strips one leading re:/fwd:/fw: prefix and trims, so replies
// and forwards bucket with their thread.
func cleanSubject(subject string) string {
	s := strings.ToLower(strings.TrimSpace(subject))
	s = replyPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
