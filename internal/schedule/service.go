package schedule

import (
	"context"

	"inboxai/internal/agent"
	"inboxai/internal/logger"
	"inboxai/internal/mailbox"
	"inboxai/pkg/errors"
)

type Service interface {
	CreateSchedule(ctx context.Context, agentID string, req CreateScheduleRequest) (*Schedule, error)
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	ListSchedules(ctx context.Context, agentID string) ([]Schedule, error)
	UpdateSchedule(ctx context.Context, id string, req UpdateScheduleRequest) (*Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo   Repository
	agents agent.Repository
	logger logger.Logger
}

func NewService(repo Repository, agents agent.Repository, log logger.Logger) Service {
	return &serviceImpl{
		repo:   repo,
		agents: agents,
		logger: log,
	}
}

func (s *serviceImpl) CreateSchedule(ctx context.Context, agentID string, req CreateScheduleRequest) (*Schedule, error) {
	if _, err := s.agents.Get(ctx, agentID); err != nil {
		return nil, err
	}

	if !ValidScheduleTime(req.ScheduleTime) {
		return nil, errors.ErrValidation.WithDetail("schedule_time", req.ScheduleTime)
	}
	if !(mailbox.Criteria{Type: req.CriteriaType}).ValidType() {
		return nil, errors.ErrValidation.WithDetail("criteria_type", req.CriteriaType)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	sched := &Schedule{
		AgentID:        agentID,
		ScheduleTime:   req.ScheduleTime,
		CriteriaType:   req.CriteriaType,
		RecipientEmail: req.RecipientEmail,
		IsActive:       active,
	}

	if err := s.repo.Create(ctx, sched); err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "Schedule created",
		"schedule_id", sched.ID,
		"agent_id", agentID,
		"schedule_time", sched.ScheduleTime,
	)
	return sched, nil
}

func (s *serviceImpl) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	return s.repo.Get(ctx, id)
}

func (s *serviceImpl) ListSchedules(ctx context.Context, agentID string) ([]Schedule, error) {
	if _, err := s.agents.Get(ctx, agentID); err != nil {
		return nil, err
	}
	return s.repo.ListByAgent(ctx, agentID)
}

func (s *serviceImpl) UpdateSchedule(ctx context.Context, id string, req UpdateScheduleRequest) (*Schedule, error) {
	sched, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ScheduleTime != nil {
		if !ValidScheduleTime(*req.ScheduleTime) {
			return nil, errors.ErrValidation.WithDetail("schedule_time", *req.ScheduleTime)
		}
		sched.ScheduleTime = *req.ScheduleTime
	}
	if req.CriteriaType != nil {
		if !(mailbox.Criteria{Type: *req.CriteriaType}).ValidType() {
			return nil, errors.ErrValidation.WithDetail("criteria_type", *req.CriteriaType)
		}
		sched.CriteriaType = *req.CriteriaType
	}
	if req.RecipientEmail != nil {
		sched.RecipientEmail = *req.RecipientEmail
	}
	if req.IsActive != nil {
		sched.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, sched); err != nil {
		return nil, err
	}

	return sched, nil
}

func (s *serviceImpl) DeleteSchedule(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
