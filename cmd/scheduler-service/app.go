package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq" // PostgreSQL driver

	"inboxai/internal/agent"
	"inboxai/internal/config"
	"inboxai/internal/constants"
	"inboxai/internal/history"
	"inboxai/internal/logger"
	"inboxai/internal/mailbox"
	"inboxai/internal/schedule"
	"inboxai/internal/summarize"
	"inboxai/internal/token"
	"inboxai/pkg/bootstrap"
	"inboxai/pkg/health"
	"inboxai/pkg/metrics"
	"inboxai/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	scheduler      *schedule.Scheduler
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("scheduler-service")
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initScheduler(); err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, "scheduler-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterPipelineMetrics()
	metrics.RegisterSchedulerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("postgres is required for the scheduler")
	}
	a.db = db

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "Redis connection failed, token caching disabled", "error", err)
	} else {
		a.redisClient = redisClient
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "MongoDB connection failed, run history disabled", "error", err)
	} else {
		a.mongoClient = mongoClient
	}

	return nil
}

func (a *App) initScheduler() error {
	tokens := token.NewOAuthProvider(a.Config.Gmail, a.redisClient, a.Logger)
	source := mailbox.NewClient(a.Config.Gmail, a.Config.Pipeline, a.Logger)
	normalizer := mailbox.NewNormalizer(a.Logger)
	breaker := summarize.NewBreakerFromConfig(a.Config.CircuitBreaker)
	summarizer := summarize.NewClient(a.Config.OpenAI, breaker, a.Logger)
	pipeline := summarize.NewService(tokens, source, normalizer, summarizer, a.Logger)

	dispatch := agent.NewDispatch(pipeline)
	agentRepo := agent.NewRepository(a.db)
	scheduleRepo := schedule.NewRepository(a.db)

	var digests history.Repository
	if a.mongoClient != nil {
		dbName := a.Config.Database.MongoDB.Database
		if dbName == "" {
			dbName = constants.DefaultMongoDBName
		}
		digests = history.NewRepository(a.mongoClient.Database(dbName))
	}

	a.scheduler = schedule.NewScheduler(
		a.Config.Scheduler,
		scheduleRepo,
		agentRepo,
		dispatch,
		digests,
		a.Producer,
		a.Config.Broker.Kafka.DigestTopic,
		a.Logger,
	)
	return nil
}

func (a *App) initHTTPServer() error {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := a.scheduler.Start(gCtx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if a.server != nil {
			return a.server.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) ShutdownApp(ctx context.Context) error {
	return a.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)...)
		return errs
	})
}
