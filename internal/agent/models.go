package agent

import (
	"fmt"
	"strings"
	"time"

	"inboxai/internal/constants"
	"inboxai/internal/mailbox"
)

// Kind is the closed set of agent variants. Only email_summarizer executes
// in this service; the other kinds are owned by external collaborators but
// remain valid registry entries.
type Kind string

const (
	KindEmailSummarizer Kind = constants.AgentKindEmailSummarizer
	KindHubSpotData     Kind = constants.AgentKindHubSpotData
	KindCustom          Kind = constants.AgentKindCustom
)

// ParseKind rejects anything outside the closed set.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindEmailSummarizer, KindHubSpotData, KindCustom:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown agent kind: %q", s)
}

type Agent struct {
	ID        string                 `json:"id" db:"id"`
	OrgID     string                 `json:"org_id" db:"org_id"`
	Name      string                 `json:"name" db:"name"`
	Kind      Kind                   `json:"kind" db:"kind"`
	Config    map[string]interface{} `json:"config" db:"config"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// RefreshToken returns the stored mailbox refresh credential, empty when
// the agent has none.
func (a *Agent) RefreshToken() string {
	if a.Config == nil {
		return ""
	}
	if v, ok := a.Config["gmail_refresh_token"].(string); ok {
		return v
	}
	if v, ok := a.Config["refresh_token"].(string); ok {
		return v
	}
	return ""
}

type CreateAgentRequest struct {
	OrgID  string                 `json:"org_id" binding:"required"`
	Name   string                 `json:"name" binding:"required"`
	Kind   string                 `json:"kind" binding:"required"`
	Config map[string]interface{} `json:"config"`
}

type UpdateAgentRequest struct {
	Name   *string                 `json:"name"`
	Kind   *string                 `json:"kind"`
	Config *map[string]interface{} `json:"config"`
}

// Count is a requested message count that tolerates string-typed JSON
// values. Anything unparseable falls back to the default count rather than
// failing the bind.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	*c = Count(mailbox.ParseCount(raw))
	return nil
}

type SummarizeRequest struct {
	CriteriaType string `json:"criteria_type" binding:"required"`
	Count        Count  `json:"count"`
}
