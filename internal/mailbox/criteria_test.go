package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inboxai/internal/constants"
)

func TestClampCount(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{name: "zero falls back to default", count: 0, want: 10},
		{name: "negative falls back to default", count: -5, want: 10},
		{name: "above cap is reduced", count: 150, want: 100},
		{name: "at cap stays", count: 100, want: 100},
		{name: "in range stays", count: 25, want: 25},
		{name: "minimum stays", count: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampCount(tt.count))
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "empty", raw: "", want: 10},
		{name: "unparseable", raw: "many", want: 10},
		{name: "numeric", raw: "42", want: 42},
		{name: "numeric with spaces", raw: " 7 ", want: 7},
		{name: "too large", raw: "500", want: 100},
		{name: "negative", raw: "-3", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCount(tt.raw))
		})
	}
}

func TestNewCriteria(t *testing.T) {
	c := NewCriteria("  last_7_days  ", 0)
	assert.Equal(t, constants.CriteriaLast7Days, c.Type)
	assert.Equal(t, 10, c.Count)
}

func TestCriteriaQuery(t *testing.T) {
	tests := []struct {
		name         string
		criteriaType string
		want         string
	}{
		{name: "last 24 hours", criteriaType: constants.CriteriaLast24Hours, want: "in:inbox newer_than:1d"},
		{name: "last 7 days", criteriaType: constants.CriteriaLast7Days, want: "in:inbox newer_than:7d"},
		{name: "latest n is broad", criteriaType: constants.CriteriaLatestN, want: ""},
		{name: "oldest n is broad", criteriaType: constants.CriteriaOldestN, want: ""},
		{name: "unknown is broad", criteriaType: "whenever", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCriteria(tt.criteriaType, 10)
			assert.Equal(t, tt.want, c.Query())
		})
	}
}

func TestCriteriaListLimit(t *testing.T) {
	tests := []struct {
		name         string
		criteriaType string
		count        int
		want         int64
	}{
		{name: "latest n uses count", criteriaType: constants.CriteriaLatestN, count: 10, want: 10},
		{name: "oldest n over-fetches", criteriaType: constants.CriteriaOldestN, count: 10, want: 30},
		{name: "oldest n over-fetch is capped", criteriaType: constants.CriteriaOldestN, count: 50, want: 100},
		{name: "recency window uses count", criteriaType: constants.CriteriaLast24Hours, count: 15, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCriteria(tt.criteriaType, tt.count)
			assert.Equal(t, tt.want, c.ListLimit())
		})
	}
}

func TestCriteriaAscending(t *testing.T) {
	assert.True(t, NewCriteria(constants.CriteriaOldestN, 10).Ascending())
	assert.False(t, NewCriteria(constants.CriteriaLatestN, 10).Ascending())
	assert.False(t, NewCriteria(constants.CriteriaLast24Hours, 10).Ascending())
}

func TestCriteriaValidType(t *testing.T) {
	for _, ct := range []string{
		constants.CriteriaLast24Hours,
		constants.CriteriaLast7Days,
		constants.CriteriaLatestN,
		constants.CriteriaOldestN,
	} {
		assert.True(t, NewCriteria(ct, 10).ValidType(), ct)
	}
	assert.False(t, NewCriteria("whenever", 10).ValidType())
	assert.False(t, NewCriteria("", 10).ValidType())
}
