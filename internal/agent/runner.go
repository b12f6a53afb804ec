package agent

import (
	"context"

	"inboxai/internal/mailbox"
	"inboxai/internal/summarize"
	"inboxai/pkg/errors"
)

// Runner executes one digest run for an agent. The kind-to-runner binding
// is resolved once at construction, not per request.
type Runner interface {
	Run(ctx context.Context, a *Agent, criteria mailbox.Criteria) ([]summarize.SummaryRecord, error)
}

type Dispatch struct {
	runners map[Kind]Runner
}

func NewDispatch(pipeline *summarize.Service) *Dispatch {
	return &Dispatch{
		runners: map[Kind]Runner{
			KindEmailSummarizer: &emailSummarizerRunner{pipeline: pipeline},
			KindHubSpotData:     unsupportedRunner{kind: KindHubSpotData},
			KindCustom:          unsupportedRunner{kind: KindCustom},
		},
	}
}

func (d *Dispatch) For(kind Kind) (Runner, error) {
	r, ok := d.runners[kind]
	if !ok {
		return nil, errors.ErrValidation.WithDetail("kind", string(kind))
	}
	return r, nil
}

type emailSummarizerRunner struct {
	pipeline *summarize.Service
}

func (r *emailSummarizerRunner) Run(ctx context.Context, a *Agent, criteria mailbox.Criteria) ([]summarize.SummaryRecord, error) {
	refreshToken := a.RefreshToken()
	if refreshToken == "" {
		return nil, errors.ErrAuth.WithDetail("reason", "agent has no mailbox credential")
	}
	return r.pipeline.Run(ctx, refreshToken, criteria)
}

// unsupportedRunner fills the registry slots for kinds executed by external
// collaborators.
type unsupportedRunner struct {
	kind Kind
}

func (r unsupportedRunner) Run(ctx context.Context, a *Agent, criteria mailbox.Criteria) ([]summarize.SummaryRecord, error) {
	return nil, errors.ErrNotSupported.WithDetail("kind", string(r.kind))
}
