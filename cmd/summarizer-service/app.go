package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

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
	"inboxai/pkg/middleware"
	"inboxai/pkg/ratelimit"
	"inboxai/pkg/tracing"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	tp, err := tracing.Init(a.config.Tracing, "summarizer-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "Redis connection failed, token caching disabled", "error", err)
	} else {
		a.redisClient = redisClient
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "MongoDB connection failed, run history disabled", "error", err)
	} else {
		a.mongoClient = mongoClient
	}

	return nil
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("summarizer-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.Config{
			RPS:             a.config.RateLimit.RPS,
			Burst:           a.config.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.Middleware(rateLimitConfig))
		a.logger.Infow("Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	pipeline := a.buildPipeline()
	dispatch := agent.NewDispatch(pipeline)

	agentRepo := agent.NewRepository(a.db)

	var digests history.Repository
	if a.mongoClient != nil {
		dbName := a.config.Database.MongoDB.Database
		if dbName == "" {
			dbName = constants.DefaultMongoDBName
		}
		digests = history.NewRepository(a.mongoClient.Database(dbName))
	}

	agentService := agent.NewService(agentRepo, dispatch, digests, a.logger)
	agentHandler := agent.NewHandler(agentService, a.logger)
	agentHandler.RegisterRoutes(router)

	scheduleRepo := schedule.NewRepository(a.db)
	scheduleService := schedule.NewService(scheduleRepo, agentRepo, a.logger)
	scheduleHandler := schedule.NewHandler(scheduleService, a.logger)
	scheduleHandler.RegisterRoutes(router)

	metrics.RegisterPipelineMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	if a.config.RateLimit.Enabled {
		metrics.RegisterRateLimitMetrics()
	}

	healthRegistry := health.NewCheckerRegistry()
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.router = router
	return nil
}

func (a *App) buildPipeline() *summarize.Service {
	tokens := token.NewOAuthProvider(a.config.Gmail, a.redisClient, a.logger)
	source := mailbox.NewClient(a.config.Gmail, a.config.Pipeline, a.logger)
	normalizer := mailbox.NewNormalizer(a.logger)

	breaker := summarize.NewBreakerFromConfig(a.config.CircuitBreaker)
	summarizer := summarize.NewClient(a.config.OpenAI, breaker, a.logger)
	return summarize.NewService(tokens, source, normalizer, summarizer, a.logger)
}

func (a *App) initServer() error {
	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Server.Port),
		Handler: a.router,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	dbErrs := a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)
	errs = append(errs, dbErrs...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
