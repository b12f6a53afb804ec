package summarize

import (
	"context"
	"sort"
	"time"

	"inboxai/internal/constants"
	"inboxai/internal/logger"
	"inboxai/internal/mailbox"
	"inboxai/internal/token"
	"inboxai/pkg/metrics"
)

// Service drives one pipeline invocation end to end:
// AcquireToken -> List -> [Fetch -> Normalize]* -> Group -> [Summarize]* -> Assemble.
// Only auth and listing failures surface as errors; per-message and
// per-group failures degrade to skipped messages or failed-status records.
type Service struct {
	tokens     token.Provider
	source     mailbox.Source
	normalizer *mailbox.Normalizer
	grouper    *Grouper
	summarizer Summarizer
	logger     logger.Logger
}

func NewService(tokens token.Provider, source mailbox.Source, normalizer *mailbox.Normalizer, summarizer Summarizer, log logger.Logger) *Service {
	return &Service{
		tokens:     tokens,
		source:     source,
		normalizer: normalizer,
		grouper:    NewGrouper(),
		summarizer: summarizer,
		logger:     log,
	}
}

func (s *Service) Run(ctx context.Context, refreshToken string, criteria mailbox.Criteria) ([]SummaryRecord, error) {
	start := time.Now()

	records, err := s.run(ctx, refreshToken, criteria)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.PipelineRunsTotal.WithLabelValues("success").Inc()
	metrics.ObservePipelineDuration(time.Since(start), criteria.Type)
	return records, nil
}

func (s *Service) run(ctx context.Context, refreshToken string, criteria mailbox.Criteria) ([]SummaryRecord, error) {
	accessToken, err := s.tokens.AccessToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	ids, err := s.source.List(ctx, accessToken, criteria)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		s.logger.InfowCtx(ctx, "No messages matched criteria",
			"criteria", criteria.Type,
		)
		return []SummaryRecord{}, nil
	}

	messages := s.fetchAndNormalize(ctx, accessToken, ids)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Oldest-first for oldest_n, newest-first otherwise, then cut the
	// over-fetch down to the requested count before grouping.
	sort.SliceStable(messages, func(i, j int) bool {
		if criteria.Ascending() {
			return messages[i].Timestamp.Before(messages[j].Timestamp)
		}
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})
	if len(messages) > criteria.Count {
		messages = messages[:criteria.Count]
	}

	groups := s.grouper.Group(messages)

	records := make([]SummaryRecord, 0, len(groups))
	for _, group := range groups {
		// Cooperative cancellation between groups, never mid-call.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary, ok := s.summarizer.SummarizeGroup(ctx, group)
		status := constants.SummaryStatusSuccess
		if !ok {
			status = constants.SummaryStatusFailed
		}

		records = append(records, SummaryRecord{
			ID:         group.Lead.ID,
			Sender:     group.Lead.Sender,
			Subject:    group.Lead.Subject,
			Date:       group.Lead.Timestamp.Format(mailbox.DateLayout),
			Summary:    summary,
			EmailCount: group.Size(),
			Status:     status,
		})
	}

	s.logger.InfowCtx(ctx, "Pipeline run complete",
		"criteria", criteria.Type,
		"requested", criteria.Count,
		"fetched", len(messages),
		"groups", len(groups),
		"records", len(records),
	)
	return records, nil
}

func (s *Service) fetchAndNormalize(ctx context.Context, accessToken string, ids []string) []*mailbox.Message {
	messages := make([]*mailbox.Message, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			break
		}

		raw, err := s.source.Fetch(ctx, accessToken, id)
		if err != nil {
			metrics.MessagesSkippedTotal.WithLabelValues("fetch").Inc()
			s.logger.WarnwCtx(ctx, "Skipping message after failed fetch",
				"message_id", id,
				"error", err,
			)
			continue
		}

		msg, err := s.normalizer.Normalize(ctx, raw)
		if err != nil {
			metrics.MessagesSkippedTotal.WithLabelValues("normalize").Inc()
			s.logger.WarnwCtx(ctx, "Skipping malformed message",
				"message_id", id,
				"error", err,
			)
			continue
		}

		messages = append(messages, msg)
	}
	return messages
}
