package config

import (
	"fmt"
	"time"

	"inboxai/internal/constants"
)

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = 0.3
	}

	if cfg.Pipeline.DefaultCount == 0 {
		cfg.Pipeline.DefaultCount = constants.DefaultMessageCount
	}
	if cfg.Pipeline.MaxCount == 0 {
		cfg.Pipeline.MaxCount = constants.MaxMessageCount
	}
	if cfg.Pipeline.ListRetry.MaxAttempts == 0 {
		cfg.Pipeline.ListRetry = RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 2 * time.Second,
			MaxInterval:     30 * time.Second,
			Multiplier:      2.0,
		}
	}
	if cfg.Pipeline.FetchRetry.MaxAttempts == 0 {
		cfg.Pipeline.FetchRetry = RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 1 * time.Second,
			MaxInterval:     1 * time.Second,
			Multiplier:      1.0,
		}
	}

	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = constants.SchedulerInterval
	}
	if cfg.Scheduler.DueWindow == 0 {
		cfg.Scheduler.DueWindow = constants.ScheduleDueWindow
	}
	if cfg.Scheduler.MinRunGap == 0 {
		cfg.Scheduler.MinRunGap = constants.ScheduleMinRunGap
	}
	if cfg.Scheduler.BatchCount == 0 {
		cfg.Scheduler.BatchCount = constants.ScheduleBatchCount
	}

	if cfg.Broker.Kafka.DigestTopic == "" {
		cfg.Broker.Kafka.DigestTopic = constants.DefaultDigestTopic
	}
}

func Validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", cfg.Logging.Level)
	}

	if cfg.Pipeline.MaxCount > constants.MaxMessageCount {
		return fmt.Errorf("pipeline.max_count cannot exceed %d, got %d", constants.MaxMessageCount, cfg.Pipeline.MaxCount)
	}
	if cfg.Pipeline.DefaultCount < 1 || cfg.Pipeline.DefaultCount > cfg.Pipeline.MaxCount {
		return fmt.Errorf("pipeline.default_count must be within [1, %d], got %d", cfg.Pipeline.MaxCount, cfg.Pipeline.DefaultCount)
	}

	if cfg.Pipeline.ListRetry.MaxAttempts < 1 {
		return fmt.Errorf("pipeline.list_retry.max_attempts must be >= 1")
	}
	if cfg.Pipeline.FetchRetry.MaxAttempts < 1 {
		return fmt.Errorf("pipeline.fetch_retry.max_attempts must be >= 1")
	}

	if cfg.OpenAI.Temperature < 0 || cfg.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai.temperature must be within [0, 2], got %f", cfg.OpenAI.Temperature)
	}

	if cfg.Scheduler.Interval < time.Minute {
		return fmt.Errorf("scheduler.interval must be at least 1m, got %s", cfg.Scheduler.Interval)
	}
	if cfg.Scheduler.DueWindow <= 0 {
		return fmt.Errorf("scheduler.due_window must be positive, got %s", cfg.Scheduler.DueWindow)
	}

	switch cfg.Broker.Type {
	case "", "none", "kafka":
	default:
		return fmt.Errorf("broker.type must be \"none\" or \"kafka\", got %q", cfg.Broker.Type)
	}
	if cfg.Broker.Type == "kafka" && len(cfg.Broker.Kafka.Brokers) == 0 {
		return fmt.Errorf("broker.kafka.brokers is required when broker.type is kafka")
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive when rate limiting is enabled")
	}

	return nil
}
