package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	window := 5 * time.Minute
	minGap := 23 * time.Hour

	lastNight := now.Add(-24 * time.Hour)
	anHourAgo := now.Add(-time.Hour)

	tests := []struct {
		name         string
		scheduleTime string
		lastRunAt    *time.Time
		want         bool
	}{
		{name: "exact time, never ran", scheduleTime: "09:00", want: true},
		{name: "within window before", scheduleTime: "09:04", want: true},
		{name: "within window after", scheduleTime: "08:56", want: true},
		{name: "outside window", scheduleTime: "09:06", want: false},
		{name: "other time of day", scheduleTime: "15:30", want: false},
		{name: "ran yesterday", scheduleTime: "09:00", lastRunAt: &lastNight, want: true},
		{name: "ran an hour ago", scheduleTime: "09:00", lastRunAt: &anHourAgo, want: false},
		{name: "unparseable time", scheduleTime: "morning", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Schedule{ScheduleTime: tt.scheduleTime, LastRunAt: tt.lastRunAt}
			assert.Equal(t, tt.want, s.DueAt(now, window, minGap))
		})
	}
}

func TestValidScheduleTime(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "morning", value: "09:00", want: true},
		{name: "midnight", value: "00:00", want: true},
		{name: "last minute", value: "23:59", want: true},
		{name: "hour out of range", value: "24:00", want: false},
		{name: "minute out of range", value: "12:60", want: false},
		{name: "negative", value: "-1:30", want: false},
		{name: "words", value: "noon", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidScheduleTime(tt.value))
		})
	}
}
