package mailbox

import (
	"strconv"
	"strings"

	"inboxai/internal/constants"
)

// Criteria selects which slice of the mailbox a pipeline run covers.
type Criteria struct {
	Type  string
	Count int
}

// NewCriteria builds a Criteria with the count clamped into [1, 100].
func NewCriteria(criteriaType string, count int) Criteria {
	return Criteria{
		Type:  strings.TrimSpace(criteriaType),
		Count: ClampCount(count),
	}
}

// ClampCount bounds a requested message count: non-positive falls back to
// the default, anything above the cap is reduced to the cap.
func ClampCount(count int) int {
	if count <= 0 {
		return constants.DefaultMessageCount
	}
	if count > constants.MaxMessageCount {
		return constants.MaxMessageCount
	}
	return count
}

// ParseCount interprets a raw count value from a request. Unparseable input
// falls back to the default, then clamps.
func ParseCount(raw string) int {
	if raw == "" {
		return constants.DefaultMessageCount
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return constants.DefaultMessageCount
	}
	return ClampCount(n)
}

// Query maps the criteria to a mailbox search expression. Positional
// criteria (latest_n, oldest_n) use a broad query; recency windows restrict
// to the inbox.
func (c Criteria) Query() string {
	switch c.Type {
	case constants.CriteriaLast24Hours:
		return "in:inbox newer_than:1d"
	case constants.CriteriaLast7Days:
		return "in:inbox newer_than:7d"
	default:
		return ""
	}
}

// ListLimit is the maxResults passed to the listing call. oldest_n
// over-fetches so the client-side ascending sort has enough candidates.
func (c Criteria) ListLimit() int64 {
	if c.Type == constants.CriteriaOldestN {
		n := c.Count * 3
		if n > constants.MaxMessageCount {
			n = constants.MaxMessageCount
		}
		return int64(n)
	}
	return int64(c.Count)
}

// Ascending reports whether results should be ordered oldest first.
func (c Criteria) Ascending() bool {
	return c.Type == constants.CriteriaOldestN
}

// ValidType reports whether the criteria type is one this system knows.
// Unknown types still run with the broad query, matching the listing
// behavior for latest_n.
func (c Criteria) ValidType() bool {
	switch c.Type {
	case constants.CriteriaLast24Hours, constants.CriteriaLast7Days,
		constants.CriteriaLatestN, constants.CriteriaOldestN:
		return true
	}
	return false
}
