package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RouteRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_rebuilds_total",
			Help: "Total number of route table rebuild cycles (count)",
		},
		[]string{"trigger", "status"},
	)

	RouteRebuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "route_rebuild_duration_ms",
			Help:    "Duration of route table rebuild cycles in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	ActiveRoutes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_routes",
			Help: "Number of derived routes in the published route table (count)",
		},
	)

	ActiveEventTypes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_event_types",
			Help: "Number of event types with derived routes (count)",
		},
	)

	SkippedEventTypes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skipped_event_types",
			Help: "Number of enabled event types without a canonical link template (count)",
		},
	)

	RouteTableGeneration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "route_table_generation",
			Help: "Version of the published route table (version)",
		},
	)

	DispatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_requests_total",
			Help: "Total number of requests dispatched to derived routes (count)",
		},
		[]string{"binding", "status"},
	)

	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_ms",
			Help:    "Duration of dispatched requests in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"binding"},
	)

	AccessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Total number of access check decisions (count)",
		},
		[]string{"flag", "result"},
	)

	RegistrationStatusLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_status_lookups_total",
			Help: "Total number of registration status lookups (count)",
		},
		[]string{"result"},
	)

	ConfigEventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_events_published_total",
			Help: "Total number of config update events published (count)",
		},
		[]string{"event_type", "status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"service", "database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"service", "database", "operation"},
	)
)

var (
	brokerOnce         sync.Once
	circuitBreakerOnce sync.Once
	databaseOnce       sync.Once
)

func RegisterRouterMetrics() {
	prometheus.MustRegister(RouteRebuildsTotal)
	prometheus.MustRegister(RouteRebuildDuration)
	prometheus.MustRegister(ActiveRoutes)
	prometheus.MustRegister(ActiveEventTypes)
	prometheus.MustRegister(SkippedEventTypes)
	prometheus.MustRegister(RouteTableGeneration)
	prometheus.MustRegister(DispatchRequestsTotal)
	prometheus.MustRegister(DispatchDuration)
	prometheus.MustRegister(AccessDecisionsTotal)
	prometheus.MustRegister(RegistrationStatusLookupsTotal)
	registerDatabaseMetricsOnce()
}

func RegisterManagementMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(ConfigEventsPublishedTotal)
	registerDatabaseMetricsOnce()
}

func RegisterBrokerMetrics() {
	brokerOnce.Do(func() {
		prometheus.MustRegister(RetryAttemptsTotal)
		prometheus.MustRegister(DLQMessagesTotal)
		prometheus.MustRegister(KafkaMessagesReadTotal)
		prometheus.MustRegister(KafkaMessagesWrittenTotal)
		prometheus.MustRegister(KafkaWriteDuration)
	})
}

func RegisterCircuitBreakerMetrics() {
	circuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func registerDatabaseMetricsOnce() {
	databaseOnce.Do(func() {
		prometheus.MustRegister(DatabaseQueriesTotal)
		prometheus.MustRegister(DatabaseQueryDuration)
	})
}

func ObserveRebuild(trigger, status string, duration time.Duration) {
	RouteRebuildsTotal.WithLabelValues(trigger, status).Inc()
	RouteRebuildDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

// SetRouteTable records the shape of a newly published route table.
func SetRouteTable(version uint64, routes, eventTypes, skipped int) {
	RouteTableGeneration.Set(float64(version))
	ActiveRoutes.Set(float64(routes))
	ActiveEventTypes.Set(float64(eventTypes))
	SkippedEventTypes.Set(float64(skipped))
}

func ObserveDispatch(binding, status string, duration time.Duration) {
	DispatchRequestsTotal.WithLabelValues(binding, status).Inc()
	DispatchDuration.WithLabelValues(binding).Observe(float64(duration.Milliseconds()))
}

func IncAccessDecision(flag, result string) {
	AccessDecisionsTotal.WithLabelValues(flag, result).Inc()
}

func IncRegistrationStatusLookup(result string) {
	RegistrationStatusLookupsTotal.WithLabelValues(result).Inc()
}

func IncConfigEventPublished(eventType, status string) {
	ConfigEventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

func IncDatabaseQuery(service, database, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(service, database, operation, status).Inc()
}

func ObserveDatabaseQueryDuration(service, database, operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(service, database, operation).Observe(float64(duration.Milliseconds()))
}

// ObserveQuery records one database operation outcome and its latency.
func ObserveQuery(service, database, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	IncDatabaseQuery(service, database, operation, status)
	ObserveDatabaseQueryDuration(service, database, operation, time.Since(start))
}
