package schedule

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"inboxai/internal/agent"
	"inboxai/internal/broker"
	"inboxai/internal/config"
	"inboxai/internal/constants"
	"inboxai/internal/history"
	"inboxai/internal/logger"
	"inboxai/internal/mailbox"
	"inboxai/pkg/logging"
	"inboxai/pkg/metrics"
)

// maxConcurrentRuns bounds how many due schedules execute at once. Runs
// share no in-process state; the bound only protects the upstream APIs.
const maxConcurrentRuns = 4

// Scheduler sweeps agent_schedules on a fixed interval and executes every
// schedule that is due. One schedule failing never aborts the sweep.
type Scheduler struct {
	cfg       config.SchedulerConfig
	schedules Repository
	agents    agent.Repository
	dispatch  *agent.Dispatch
	digests   history.Repository
	producer  broker.Producer
	topic     string
	logger    logger.Logger
}

func NewScheduler(
	cfg config.SchedulerConfig,
	schedules Repository,
	agents agent.Repository,
	dispatch *agent.Dispatch,
	digests history.Repository,
	producer broker.Producer,
	topic string,
	log logger.Logger,
) *Scheduler {
	if topic == "" {
		topic = constants.DefaultDigestTopic
	}
	return &Scheduler{
		cfg:       cfg,
		schedules: schedules,
		agents:    agents,
		dispatch:  dispatch,
		digests:   digests,
		producer:  producer,
		topic:     topic,
		logger:    log,
	}
}

// Start blocks, sweeping once immediately and then on every tick, until ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = constants.SchedulerInterval
	}

	s.logger.Infow("Scheduler started", "interval", interval)

	s.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep finds due schedules and executes each one.
func (s *Scheduler) Sweep(ctx context.Context) {
	window := s.cfg.DueWindow
	if window <= 0 {
		window = constants.ScheduleDueWindow
	}
	minGap := s.cfg.MinRunGap
	if minGap <= 0 {
		minGap = constants.ScheduleMinRunGap
	}

	active, err := s.schedules.ListActive(ctx)
	if err != nil {
		s.logger.Errorw("Failed to list active schedules", "error", err)
		return
	}

	now := time.Now().UTC()
	var due []Schedule
	for _, sched := range active {
		if sched.DueAt(now, window, minGap) {
			due = append(due, sched)
		}
	}

	metrics.SchedulerDueGauge.Set(float64(len(due)))
	if len(due) == 0 {
		return
	}

	s.logger.Infow("Executing due schedules", "due", len(due), "active", len(active))

	g, runCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRuns)
	for _, sched := range due {
		sched := sched
		g.Go(func() error {
			// Failures are absorbed per schedule; the group never cancels.
			if err := s.execute(runCtx, &sched); err != nil {
				metrics.SchedulerRunsTotal.WithLabelValues("error").Inc()
				s.logger.Errorw("Schedule execution failed",
					"schedule_id", sched.ID,
					"agent_id", sched.AgentID,
					"error", err,
				)
			} else {
				metrics.SchedulerRunsTotal.WithLabelValues("success").Inc()
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) execute(ctx context.Context, sched *Schedule) error {
	ctx = logging.WithAgentID(ctx, sched.AgentID)

	a, err := s.agents.Get(ctx, sched.AgentID)
	if err != nil {
		return err
	}

	runner, err := s.dispatch.For(a.Kind)
	if err != nil {
		return err
	}

	batch := s.cfg.BatchCount
	if batch <= 0 {
		batch = constants.ScheduleBatchCount
	}
	criteria := mailbox.NewCriteria(sched.CriteriaType, batch)

	records, err := runner.Run(ctx, a, criteria)
	if err != nil {
		return err
	}

	digest := history.NewDigest(a.ID, sched.ID, criteria.Type, criteria.Count, records)
	if s.digests != nil {
		if err := s.digests.Create(ctx, digest); err != nil {
			s.logger.ErrorwCtx(ctx, "Failed to persist scheduled digest",
				"schedule_id", sched.ID,
				"error", err,
			)
		}
	}

	ranAt := time.Now().UTC()
	if err := s.schedules.MarkRun(ctx, sched.ID, ranAt); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to mark schedule run",
			"schedule_id", sched.ID,
			"error", err,
		)
	}

	if s.producer != nil {
		event := broker.DigestEvent{
			ID:           digest.ID,
			AgentID:      a.ID,
			ScheduleID:   sched.ID,
			CriteriaType: criteria.Type,
			RecordCount:  len(records),
			FailedCount:  digest.FailedCount,
			CompletedAt:  ranAt,
		}
		if err := s.producer.Publish(ctx, s.topic, event); err != nil {
			s.logger.ErrorwCtx(ctx, "Failed to publish digest event",
				"schedule_id", sched.ID,
				"error", err,
			)
		}
	}

	s.logger.InfowCtx(ctx, "Schedule executed",
		"schedule_id", sched.ID,
		"records", len(records),
	)
	return nil
}
