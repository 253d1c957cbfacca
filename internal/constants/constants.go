package constants

import "time"

const (
	ServiceEventRouter = "event-router"
	ServiceManagement  = "management-service"
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultMongoDBName      = "rng"
	EntityTypesCollection   = "entity_types"
	EventTypeConfigsTable   = "event_type_configs"
	DefaultRedisKeyPrefix   = "rng"
	DefaultRouteNamespace   = "rng"
	DefaultPermissionHeader = "X-RNG-Permissions"
)

// DefaultRegistrationsAllowedExpression opens registration while the event is
// open, inside its window, and below capacity. Zero bounds mean unbounded.
const DefaultRegistrationsAllowedExpression = `status == "open" && (opens_at == 0 || now >= opens_at) && (closes_at == 0 || now < closes_at) && (capacity == 0 || registered < capacity)`

const (
	PermissionAdministerRNG = "administer rng"
)

const (
	ShutdownTimeout    = 5 * time.Second
	InitTimeout        = 30 * time.Second
	HealthCheckTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)
