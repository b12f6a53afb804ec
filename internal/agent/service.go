package agent

import (
	"context"

	"inboxai/internal/history"
	"inboxai/internal/logger"
	"inboxai/internal/mailbox"
	"inboxai/internal/summarize"
	"inboxai/pkg/errors"
	"inboxai/pkg/logging"
)

type Service interface {
	CreateAgent(ctx context.Context, req CreateAgentRequest) (*Agent, error)
	GetAgent(ctx context.Context, id string) (*Agent, error)
	ListAgents(ctx context.Context, orgID string) ([]Agent, error)
	UpdateAgent(ctx context.Context, id string, req UpdateAgentRequest) (*Agent, error)
	DeleteAgent(ctx context.Context, id string) error

	Summarize(ctx context.Context, agentID string, req SummarizeRequest) ([]summarize.SummaryRecord, error)
	History(ctx context.Context, agentID string, limit int) ([]history.Digest, error)
}

type serviceImpl struct {
	repo     Repository
	dispatch *Dispatch
	digests  history.Repository
	logger   logger.Logger
}

func NewService(repo Repository, dispatch *Dispatch, digests history.Repository, log logger.Logger) Service {
	return &serviceImpl{
		repo:     repo,
		dispatch: dispatch,
		digests:  digests,
		logger:   log,
	}
}

func (s *serviceImpl) CreateAgent(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	kind, err := ParseKind(req.Kind)
	if err != nil {
		return nil, errors.ErrValidation.WithCause(err).WithDetail("kind", req.Kind)
	}

	a := &Agent{
		OrgID:  req.OrgID,
		Name:   req.Name,
		Kind:   kind,
		Config: req.Config,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "Agent created",
		"agent_id", a.ID,
		"kind", string(a.Kind),
	)
	return a, nil
}

func (s *serviceImpl) GetAgent(ctx context.Context, id string) (*Agent, error) {
	return s.repo.Get(ctx, id)
}

func (s *serviceImpl) ListAgents(ctx context.Context, orgID string) ([]Agent, error) {
	return s.repo.List(ctx, orgID)
}

func (s *serviceImpl) UpdateAgent(ctx context.Context, id string, req UpdateAgentRequest) (*Agent, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Kind != nil {
		kind, err := ParseKind(*req.Kind)
		if err != nil {
			return nil, errors.ErrValidation.WithCause(err).WithDetail("kind", *req.Kind)
		}
		a.Kind = kind
	}
	if req.Config != nil {
		a.Config = *req.Config
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *serviceImpl) DeleteAgent(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfowCtx(ctx, "Agent deleted", "agent_id", id)
	return nil
}

// Summarize runs the agent's pipeline and persists the digest. The records
// are returned to the caller regardless of whether persistence succeeds;
// a history write failure is logged, not surfaced.
func (s *serviceImpl) Summarize(ctx context.Context, agentID string, req SummarizeRequest) ([]summarize.SummaryRecord, error) {
	a, err := s.repo.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	runner, err := s.dispatch.For(a.Kind)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithAgentID(ctx, a.ID)
	criteria := mailbox.NewCriteria(req.CriteriaType, int(req.Count))

	records, err := runner.Run(ctx, a, criteria)
	if err != nil {
		return nil, err
	}

	if s.digests != nil {
		digest := history.NewDigest(a.ID, "", criteria.Type, criteria.Count, records)
		if err := s.digests.Create(ctx, digest); err != nil {
			s.logger.ErrorwCtx(ctx, "Failed to persist digest",
				"error", err,
			)
		}
	}

	return records, nil
}

func (s *serviceImpl) History(ctx context.Context, agentID string, limit int) ([]history.Digest, error) {
	if s.digests == nil {
		return nil, errors.ErrServiceUnavailable.WithDetail("reason", "run history disabled")
	}
	if _, err := s.repo.Get(ctx, agentID); err != nil {
		return nil, err
	}
	return s.digests.Recent(ctx, agentID, limit)
}
