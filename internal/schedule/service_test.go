package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxai/internal/agent"
	"inboxai/internal/constants"
	"inboxai/internal/logger"
	pkgerrors "inboxai/pkg/errors"
)

type recordingScheduleRepo struct {
	fakeScheduleRepo
	created *Schedule
	stored  map[string]*Schedule
}

func (r *recordingScheduleRepo) Create(ctx context.Context, s *Schedule) error {
	r.created = s
	return nil
}

func (r *recordingScheduleRepo) Get(ctx context.Context, id string) (*Schedule, error) {
	s, ok := r.stored[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound.WithDetail("schedule_id", id)
	}
	return s, nil
}

func newScheduleService(repo Repository, withAgent bool) Service {
	agents := &fakeAgentRepo{agents: map[string]*agent.Agent{}}
	if withAgent {
		agents.agents["a-1"] = &agent.Agent{ID: "a-1", Kind: agent.KindEmailSummarizer}
	}
	return NewService(repo, agents, logger.NopLogger())
}

func TestCreateSchedule(t *testing.T) {
	repo := &recordingScheduleRepo{}
	svc := newScheduleService(repo, true)

	sched, err := svc.CreateSchedule(context.Background(), "a-1", CreateScheduleRequest{
		ScheduleTime:   "08:30",
		CriteriaType:   constants.CriteriaLast24Hours,
		RecipientEmail: "team@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "a-1", sched.AgentID)
	assert.True(t, sched.IsActive, "active defaults to true")
	assert.Equal(t, sched, repo.created)
}

func TestCreateScheduleValidation(t *testing.T) {
	svc := newScheduleService(&recordingScheduleRepo{}, true)

	tests := []struct {
		name string
		req  CreateScheduleRequest
	}{
		{
			name: "bad time",
			req:  CreateScheduleRequest{ScheduleTime: "25:00", CriteriaType: constants.CriteriaLast24Hours},
		},
		{
			name: "bad criteria",
			req:  CreateScheduleRequest{ScheduleTime: "08:00", CriteriaType: "whenever"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSchedule(context.Background(), "a-1", tt.req)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestCreateScheduleUnknownAgent(t *testing.T) {
	svc := newScheduleService(&recordingScheduleRepo{}, false)

	_, err := svc.CreateSchedule(context.Background(), "ghost", CreateScheduleRequest{
		ScheduleTime: "08:00",
		CriteriaType: constants.CriteriaLast24Hours,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUpdateSchedulePartial(t *testing.T) {
	existing := &Schedule{
		ID:           "s-1",
		AgentID:      "a-1",
		ScheduleTime: "08:00",
		CriteriaType: constants.CriteriaLast24Hours,
		IsActive:     true,
	}
	repo := &recordingScheduleRepo{stored: map[string]*Schedule{"s-1": existing}}
	svc := newScheduleService(repo, true)

	inactive := false
	updated, err := svc.UpdateSchedule(context.Background(), "s-1", UpdateScheduleRequest{
		IsActive: &inactive,
	})
	require.NoError(t, err)

	assert.False(t, updated.IsActive)
	assert.Equal(t, "08:00", updated.ScheduleTime, "unspecified fields are untouched")
}

func TestUpdateScheduleRejectsBadTime(t *testing.T) {
	existing := &Schedule{ID: "s-1", ScheduleTime: "08:00", CriteriaType: constants.CriteriaLast24Hours}
	repo := &recordingScheduleRepo{stored: map[string]*Schedule{"s-1": existing}}
	svc := newScheduleService(repo, true)

	bad := "8pm"
	_, err := svc.UpdateSchedule(context.Background(), "s-1", UpdateScheduleRequest{
		ScheduleTime: &bad,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}
