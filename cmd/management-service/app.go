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

	"rng/internal/config"
	"rng/internal/constants"
	"rng/internal/entitytype"
	"rng/internal/eventtype"
	"rng/internal/logger"
	"rng/internal/management"
	"rng/internal/registration"
	"rng/pkg/bootstrap"
	"rng/pkg/circuitbreaker"
	"rng/pkg/health"
	"rng/pkg/metrics"
	"rng/pkg/middleware"
	"rng/pkg/migrations"
	"rng/pkg/ratelimit"
	"rng/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
	health         *health.CheckerRegistry
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceManagement)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		health:      health.NewCheckerRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceManagement)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterManagementMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	initCtx, cancel := context.WithTimeout(ctx, constants.InitTimeout)
	defer cancel()

	if err := a.initDatabases(initCtx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.InitProducer(); err != nil {
		a.Logger.WarnwCtx(ctx, "Failed to create config event producer, config events will be disabled", "error", err)
	}

	a.initRouter(ctx)
	a.initServer()
	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("database.postgres.host is required")
	}
	a.db = db
	a.health.Register(health.NewPostgreSQLChecker(db))

	if err := migrations.PostgresUp(db, a.Config.Database.Postgres.MigrationsPath); err != nil {
		return err
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "MongoDB connection failed, entity types are read-only", "error", err)
	} else if mongoClient != nil {
		if err := migrations.EnsureEntityTypeCollection(ctx, mongoClient.Database(a.Config.Database.MongoDB.Database)); err != nil {
			a.Logger.WarnwCtx(ctx, "Failed to ensure entity type indexes", "error", err)
		}
		a.mongoClient = mongoClient
		a.health.Register(health.NewMongoDBChecker(mongoClient))
	}

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "Redis connection failed, registration status API disabled", "error", err)
	} else if redisClient != nil {
		a.redisClient = redisClient
		a.health.Register(health.NewRedisChecker(redisClient))
	}

	return nil
}

func (a *App) initRouter(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceManagement))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ServiceNameMiddleware(constants.ServiceManagement))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(management.ChangedByMiddleware())

	if a.Config.Management.RateLimit.Enabled {
		rateLimitConfig := ratelimit.FromSettings(a.Config.Management.RateLimit)
		router.Use(ratelimit.RateLimitMiddleware(ctx, rateLimitConfig))
		a.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	configEvents := management.NewConfigEventProducer(a.Producer, a.Config.Broker.Kafka.ConfigUpdateTopic)
	auditor := management.NewAuditLogger(a.db)

	var entityRepo entitytype.Repository
	if a.mongoClient != nil {
		entityRepo = entitytype.NewMongoRepository(a.mongoClient.Database(a.Config.Database.MongoDB.Database), constants.ServiceManagement)
	}
	registry := entitytype.NewRegistry(a.Config.Routing.EntityTypes, entityRepo)

	eventTypeRepo := eventtype.NewPostgresRepository(a.db, constants.ServiceManagement)

	entityTypeService := entitytype.NewService(registry, entityRepo,
		entitytype.WithConfigEvents(configEvents),
		entitytype.WithAuditor(auditor),
		entitytype.WithEventTypeReferences(eventTypeRepo),
	)
	entitytype.NewHandler(entityTypeService, a.Logger).RegisterRoutes(router)

	eventTypeService := eventtype.NewService(eventTypeRepo,
		eventtype.WithConfigEvents(configEvents),
		eventtype.WithAuditor(auditor),
		eventtype.WithEntityTypes(registry),
	)
	eventtype.NewHandler(eventTypeService, a.Logger).RegisterRoutes(router)

	if a.redisClient != nil {
		var store registration.Store = registration.NewRedisStore(a.redisClient, a.Config.Database.Redis.KeyPrefix, constants.ServiceManagement)
		if a.Config.CircuitBreaker.Enabled {
			store = registration.NewBreakerStore(store, circuitbreaker.FromSettings("registration_status", a.Config.CircuitBreaker))
		}
		registrationService := registration.NewService(store,
			registration.WithConfigEvents(configEvents),
			registration.WithAuditor(auditor),
		)
		registration.NewHandler(registrationService, a.Logger).RegisterRoutes(router)
	}

	management.NewAuditHandler(auditor, a.Logger).RegisterRoutes(router)

	router.GET("/health", a.health.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.Logger.InfowCtx(ctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.InfowCtx(ctx, "Shutting down server")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)...)
		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
