package constants

import "time"

const (
	DefaultHTTPTimeout = 10 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixToken = "token:"
)

const (
	DefaultDigestTopic = "digest_events"
)

const (
	DefaultMongoDBName = "inboxai"
)

// Bounds on the number of messages a single pipeline invocation may process.
const (
	DefaultMessageCount = 10
	MaxMessageCount     = 100
)

// Body caps applied by the normalizer and by the group summarizer when it
// concatenates member bodies.
const (
	BodyCharLimit      = 2000
	GroupBodyCharLimit = 500
)

const (
	ScheduleBatchCount = 50
	SchedulerInterval  = 5 * time.Minute
	ScheduleDueWindow  = 5 * time.Minute
	ScheduleMinRunGap  = 23 * time.Hour
)

const (
	CriteriaLast24Hours = "last_24_hours"
	CriteriaLast7Days   = "last_7_days"
	CriteriaLatestN     = "latest_n"
	CriteriaOldestN     = "oldest_n"
)

const (
	AgentKindEmailSummarizer = "email_summarizer"
	AgentKindHubSpotData     = "hubspot_data"
	AgentKindCustom          = "custom"
)

const (
	SummaryStatusSuccess = "success"
	SummaryStatusFailed  = "failed"
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)
