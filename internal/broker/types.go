package broker

import (
	"context"
	"time"
)

// DigestEvent is published after a scheduled digest run completes. Consumers
// (notification services, audit sinks) are external to this system.
type DigestEvent struct {
	ID           string    `json:"id"`
	AgentID      string    `json:"agent_id"`
	ScheduleID   string    `json:"schedule_id,omitempty"`
	CriteriaType string    `json:"criteria_type"`
	RecordCount  int       `json:"record_count"`
	FailedCount  int       `json:"failed_count"`
	CompletedAt  time.Time `json:"completed_at"`
}

type Producer interface {
	Publish(ctx context.Context, topic string, event DigestEvent) error
	Close() error
}
