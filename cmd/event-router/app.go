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
	"golang.org/x/sync/errgroup"

	"rng/internal/access"
	"rng/internal/config"
	"rng/internal/config_handler"
	"rng/internal/constants"
	"rng/internal/dispatch"
	"rng/internal/entitytype"
	"rng/internal/eventtype"
	"rng/internal/logger"
	"rng/internal/registration"
	"rng/internal/routing"
	"rng/pkg/bootstrap"
	"rng/pkg/circuitbreaker"
	"rng/pkg/health"
	"rng/pkg/logging"
	"rng/pkg/metrics"
	"rng/pkg/middleware"
	"rng/pkg/models"
	"rng/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	tracerProvider *tracing.TracerProvider

	health    *health.CheckerRegistry
	table     *dispatch.Table
	rebuilder *dispatch.Rebuilder
	server    *http.Server

	// registrations is set when status lives in process memory, where only
	// this router can write it.
	registrations *registration.Service
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceEventRouter)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		health:      health.NewCheckerRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceEventRouter)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterRouterMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	initCtx, cancel := context.WithTimeout(ctx, constants.InitTimeout)
	defer cancel()

	if err := a.initDatabases(initCtx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initRouting(); err != nil {
		return fmt.Errorf("failed to initialize routing: %w", err)
	}

	if err := a.InitConsumer(constants.ServiceEventRouter); err != nil {
		a.Logger.WarnwCtx(ctx, "Failed to create config event consumer, event-driven rebuild disabled", "error", err)
	}

	a.initHTTPServer()
	return nil
}

// initDatabases connects the optional stores. Postgres holds event type
// configs, MongoDB entity type definitions and Redis registration status.
func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db
	if db != nil {
		a.health.Register(health.NewPostgreSQLChecker(db))
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "MongoDB connection failed, using static entity types only", "error", err)
	} else if mongoClient != nil {
		a.mongoClient = mongoClient
		a.health.Register(health.NewMongoDBChecker(mongoClient))
	}

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "Redis connection failed, registration status kept in memory", "error", err)
	} else if redisClient != nil {
		a.redisClient = redisClient
		a.health.Register(health.NewRedisChecker(redisClient))
	}

	return nil
}

func (a *App) initRouting() error {
	var source eventtype.Source
	if a.db != nil {
		source = eventtype.NewPostgresRepository(a.db, constants.ServiceEventRouter)
	} else {
		a.Logger.Info("PostgreSQL not configured, serving static event types")
		source = eventtype.NewStaticSource(a.Config.Routing.EventTypes)
	}

	var entityRepo entitytype.Repository
	if a.mongoClient != nil {
		entityRepo = entitytype.NewMongoRepository(a.mongoClient.Database(a.Config.Database.MongoDB.Database), constants.ServiceEventRouter)
	}
	registry := entitytype.NewRegistry(a.Config.Routing.EntityTypes, entityRepo)

	var store registration.Store
	if a.redisClient != nil {
		store = registration.NewRedisStore(a.redisClient, a.Config.Database.Redis.KeyPrefix, constants.ServiceEventRouter)
		if a.Config.CircuitBreaker.Enabled {
			store = registration.NewBreakerStore(store, circuitbreaker.FromSettings("registration_status", a.Config.CircuitBreaker))
		}
	} else {
		a.Logger.Info("Redis not configured, serving the registration status API from the router")
		store = registration.NewMemoryStore()
		a.registrations = registration.NewService(store)
	}

	policy, err := access.NewRoutePolicy(a.Config.Access, store, a.Logger)
	if err != nil {
		return err
	}

	a.table = dispatch.NewTable()
	a.health.Register(a.table.HealthChecker())

	builder := dispatch.NewBuilder(dispatch.NewHandlerRegistry(), policy, a.Logger)
	a.rebuilder = dispatch.NewRebuilder(
		source,
		registry,
		routing.NewDeriver(a.Config.Routing.Namespace),
		builder,
		a.table,
		a.Config.Routing.Reload,
		a.Logger,
	)
	return nil
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceEventRouter))
	}
	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ServiceNameMiddleware(constants.ServiceEventRouter))
	router.Use(middleware.LoggerMiddleware(a.Logger))

	router.GET("/health", a.health.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	dispatch.NewHandler(a.table, a.rebuilder, a.Logger).RegisterRoutes(router)
	if a.registrations != nil {
		registration.NewHandler(a.registrations, a.Logger).RegisterRoutes(router)
	}

	// Derived event routes live in the current generation's engine.
	router.NoRoute(gin.WrapH(a.table))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.rebuilder.StartReloader(gCtx)
	})

	if a.Consumer != nil {
		configEventHandler := config_handler.NewHandlerWithReloader(models.ServiceTypeRouting, a.rebuilder, a.Logger)
		topic := a.Config.Broker.Kafka.ConfigUpdateTopic

		g.Go(func() error {
			configCtx := logging.WithServiceName(gCtx, constants.ServiceEventRouter)
			a.Logger.InfowCtx(configCtx, "Starting config update event consumer", "topic", topic)
			return a.Consumer.Consume(gCtx, topic, configEventHandler.HandleConfigUpdateEvent)
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, constants.ServiceEventRouter)
	a.Logger.InfowCtx(shutdownCtx, "Shutting down event router")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			serverCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(serverCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
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
