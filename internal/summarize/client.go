package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sony/gobreaker"

	"inboxai/internal/config"
	"inboxai/internal/constants"
	"inboxai/internal/logger"
	"inboxai/internal/mailbox"
	"inboxai/pkg/circuitbreaker"
	"inboxai/pkg/metrics"
)

const (
	singleMaxTokens = 150
	groupMaxTokens  = 200

	singleSystemPrompt = "You are a helpful assistant that summarizes emails concisely and clearly."
	groupSystemPrompt  = "You are a helpful assistant that summarizes email threads concisely."
)

// Summarizer produces one natural-language summary per group. ok reports
// whether the completion service produced the text; ok=false means the
// deterministic fallback was used and the record should carry failed status.
type Summarizer interface {
	SummarizeGroup(ctx context.Context, group *MessageGroup) (summary string, ok bool)
}

type Client struct {
	api         openai.Client
	model       string
	temperature float64
	breaker     *circuitbreaker.Wrapper
	logger      logger.Logger
}

func NewClient(cfg config.OpenAIConfig, cb *circuitbreaker.Wrapper, log logger.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: temperature,
		breaker:     cb,
		logger:      log,
	}
}

// NewBreakerFromConfig builds the summarization circuit breaker, nil when
// disabled. An open breaker short-circuits every group straight to the
// fallback text.
func NewBreakerFromConfig(cfg config.CircuitBreakerConfig) *circuitbreaker.Wrapper {
	if !cfg.Enabled {
		return nil
	}

	cbConfig := circuitbreaker.DefaultConfig("summarization")
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 || cfg.MinRequests > 0 {
		minRequests := cfg.MinRequests
		if minRequests == 0 {
			minRequests = 3
		}
		failureRatio := cfg.FailureRatio
		if failureRatio == 0 {
			failureRatio = 0.5
		}
		cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && ratio >= failureRatio
		}
	}
	return circuitbreaker.NewWrapper(cbConfig)
}

// SummarizeGroup never returns an error: any failure (open breaker, quota,
// timeout, empty response) degrades to the fallback text.
func (c *Client) SummarizeGroup(ctx context.Context, group *MessageGroup) (string, bool) {
	start := time.Now()
	defer func() {
		metrics.ObserveSummarizeDuration(time.Since(start))
	}()

	var prompt, system string
	var maxTokens int64
	if group.Size() == 1 {
		system = singleSystemPrompt
		prompt = singlePrompt(group.Lead)
		maxTokens = singleMaxTokens
	} else {
		system = groupSystemPrompt
		prompt = groupPrompt(group)
		maxTokens = groupMaxTokens
	}

	text, err := c.complete(ctx, system, prompt, maxTokens)
	if err != nil {
		metrics.SummariesTotal.WithLabelValues("failed").Inc()
		c.logger.WarnwCtx(ctx, "Summarization failed, using fallback",
			"sender", group.Lead.Sender,
			"group_size", group.Size(),
			"error", err,
		)
		return Fallback(group), false
	}

	if group.Size() > 1 {
		text += fmt.Sprintf(" (Thread of %d emails)", group.Size())
	}

	metrics.SummariesTotal.WithLabelValues("success").Inc()
	return text, true
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	call := func() (interface{}, error) {
		completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				{
					OfSystem: &openai.ChatCompletionSystemMessageParam{
						Content: openai.ChatCompletionSystemMessageParamContentUnion{
							OfString: openai.String(system),
						},
					},
				},
				{
					OfUser: &openai.ChatCompletionUserMessageParam{
						Content: openai.ChatCompletionUserMessageParamContentUnion{
							OfString: openai.String(prompt),
						},
					},
				},
			},
			Model:       openai.ChatModel(c.model),
			MaxTokens:   openai.Int(maxTokens),
			Temperature: openai.Float(c.temperature),
		})
		if err != nil {
			return nil, err
		}
		if len(completion.Choices) == 0 {
			return nil, fmt.Errorf("empty completion response")
		}
		return strings.TrimSpace(completion.Choices[0].Message.Content), nil
	}

	var result interface{}
	var err error
	if c.breaker != nil {
		result, err = c.breaker.ExecuteWithContext(ctx, call)
	} else {
		result, err = call()
	}
	if err != nil {
		return "", err
	}

	text, _ := result.(string)
	if text == "" {
		return "", fmt.Errorf("empty summary text")
	}
	return text, nil
}

func singlePrompt(msg *mailbox.Message) string {
	var b strings.Builder
	b.WriteString("Please summarize this email in 1-3 concise sentences. Focus on the main purpose and any action items.\n\n")
	fmt.Fprintf(&b, "From: %s\nSubject: %s\n\nEmail content:\n%s\n\nSummary:", msg.Sender, msg.Subject, msg.Body)
	return b.String()
}

func groupPrompt(group *MessageGroup) string {
	parts := make([]string, 0, group.Size())
	for _, m := range group.Members {
		body := mailbox.Truncate(m.Body, constants.GroupBodyCharLimit)
		parts = append(parts, fmt.Sprintf("From: %s\nSubject: %s\nContent: %s", m.Sender, m.Subject, body))
	}

	var b strings.Builder
	b.WriteString("Please summarize this email thread in 2-4 sentences. Focus on the main topic and key developments.\n\n")
	b.WriteString("Email thread:\n")
	b.WriteString(strings.Join(parts, "\n\n---\n\n"))
	b.WriteString("\n\nSummary:")
	return b.String()
}

// Fallback builds the deterministic summary used whenever the completion
// service cannot. Never empty.
func Fallback(group *MessageGroup) string {
	return fmt.Sprintf("Email from %s about %s", group.Lead.Sender, group.Lead.Subject)
}
