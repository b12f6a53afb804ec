package schedule

import (
	"fmt"
	"time"
)

// Schedule triggers one digest run per day at ScheduleTime ("HH:MM", UTC).
type Schedule struct {
	ID             string     `json:"id" db:"id"`
	AgentID        string     `json:"agent_id" db:"agent_id"`
	ScheduleTime   string     `json:"schedule_time" db:"schedule_time"`
	CriteriaType   string     `json:"criteria_type" db:"criteria_type"`
	RecipientEmail string     `json:"recipient_email" db:"recipient_email"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty" db:"last_run_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// DueAt reports whether the schedule should run at now: within window of
// today's HH:MM, and either never run or last run at least minGap ago.
func (s *Schedule) DueAt(now time.Time, window, minGap time.Duration) bool {
	hour, minute, err := parseScheduleTime(s.ScheduleTime)
	if err != nil {
		return false
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	diff := now.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	if diff > window {
		return false
	}

	if s.LastRunAt != nil && now.Sub(*s.LastRunAt) < minGap {
		return false
	}
	return true
}

func parseScheduleTime(value string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid schedule time %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("schedule time %q out of range", value)
	}
	return hour, minute, nil
}

// ValidScheduleTime reports whether value parses as "HH:MM".
func ValidScheduleTime(value string) bool {
	_, _, err := parseScheduleTime(value)
	return err == nil
}

type CreateScheduleRequest struct {
	ScheduleTime   string `json:"schedule_time" binding:"required"`
	CriteriaType   string `json:"criteria_type" binding:"required"`
	RecipientEmail string `json:"recipient_email"`
	IsActive       *bool  `json:"is_active"`
}

type UpdateScheduleRequest struct {
	ScheduleTime   *string `json:"schedule_time"`
	CriteriaType   *string `json:"criteria_type"`
	RecipientEmail *string `json:"recipient_email"`
	IsActive       *bool   `json:"is_active"`
}
