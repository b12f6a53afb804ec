package mailbox

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"inboxai/internal/config"
	"inboxai/internal/logger"
	"inboxai/pkg/errors"
	"inboxai/pkg/metrics"
	"inboxai/pkg/retry"
)

const mailboxUser = "me"

// Source lists message candidates and fetches full messages. The access
// token is acquired by the caller; a Source never refreshes credentials.
type Source interface {
	List(ctx context.Context, accessToken string, criteria Criteria) ([]string, error)
	Fetch(ctx context.Context, accessToken, messageID string) (*gmailv1.Message, error)
}

type Client struct {
	cfg         config.GmailConfig
	listPolicy  retry.Policy
	fetchPolicy retry.Policy
	logger      logger.Logger
}

func NewClient(cfg config.GmailConfig, pipeline config.PipelineConfig, log logger.Logger) *Client {
	return &Client{
		cfg:         cfg,
		listPolicy:  policyOrDefault(pipeline.ListRetry, retry.ListPolicy()),
		fetchPolicy: policyOrDefault(pipeline.FetchRetry, retry.FetchPolicy()),
		logger:      log,
	}
}

func policyOrDefault(cfg config.RetryConfig, def retry.Policy) retry.Policy {
	p := def
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialInterval > 0 {
		p.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		p.MaxInterval = cfg.MaxInterval
	}
	if cfg.Multiplier > 0 {
		p.Multiplier = cfg.Multiplier
	}
	return p
}

func (c *Client) service(ctx context.Context, accessToken string) (*gmailv1.Service, error) {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
	}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}
	return gmailv1.NewService(ctx, opts...)
}

// List returns candidate message IDs for the criteria. Transient failures
// are retried under the list policy; exhaustion surfaces as a source error
// and fails the whole invocation.
func (c *Client) List(ctx context.Context, accessToken string, criteria Criteria) ([]string, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSource).AsFatal()
	}

	var ids []string
	listErr := retry.Do(ctx, c.listPolicy, func() error {
		call := svc.Users.Messages.List(mailboxUser).MaxResults(criteria.ListLimit())
		if q := criteria.Query(); q != "" {
			call = call.Q(q)
		}
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return err
		}
		ids = ids[:0]
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues("list").Inc()
		c.logger.WarnwCtx(ctx, "Mailbox list failed, retrying",
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
		)
	})

	if listErr != nil {
		return nil, errors.Wrap(listErr, errors.ErrSource).AsFatal()
	}

	c.logger.InfowCtx(ctx, "Mailbox listing complete",
		"criteria", criteria.Type,
		"requested", criteria.Count,
		"candidates", len(ids),
	)
	return ids, nil
}

// Fetch retrieves one full message. Exhausted retries return a source
// error; the caller decides whether to skip or abort.
func (c *Client) Fetch(ctx context.Context, accessToken, messageID string) (*gmailv1.Message, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSource)
	}

	var msg *gmailv1.Message
	fetchErr := retry.Do(ctx, c.fetchPolicy, func() error {
		m, err := svc.Users.Messages.Get(mailboxUser, messageID).Format("full").Context(ctx).Do()
		if err != nil {
			return err
		}
		msg = m
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues("fetch").Inc()
		c.logger.WarnwCtx(ctx, "Message fetch failed, retrying",
			"message_id", messageID,
			"attempt", attempt,
			"error", err,
		)
	})

	if fetchErr != nil {
		metrics.MessagesFetchedTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(fetchErr, errors.ErrSource).WithDetail("message_id", messageID)
	}

	metrics.MessagesFetchedTotal.WithLabelValues("success").Inc()
	return msg, nil
}
