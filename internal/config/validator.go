package config

import (
	"fmt"
	"regexp"
	"strings"
)

var entityTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errs []error

	validators := []func() error{
		func() error { return validateServer(cfg.Server) },
		func() error { return validateLogging(cfg.Logging) },
		func() error { return validateBroker(cfg.Broker) },
		func() error { return validateDatabase(cfg.Database) },
		func() error { return validateRouting(cfg.Routing) },
		func() error { return validateAccess(cfg.Access) },
		func() error { return validateCircuitBreaker(cfg.CircuitBreaker) },
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

func validatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", port),
		}
	}
	return nil
}

func validateServer(cfg ServerConfig) error {
	if err := validatePort("server.port", cfg.Port); err != nil {
		return err
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateLogging(cfg LoggingConfig) error {
	if cfg.Format != "" && cfg.Format != "json" && cfg.Format != "console" {
		return &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown log format: %s (supported: json, console)", cfg.Format),
		}
	}
	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case "":
		return nil
	case "kafka":
		return validateKafka(cfg.Kafka)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.GroupID == "" {
		return &ValidationError{
			Field:   "broker.kafka.group_id",
			Message: "Kafka consumer group ID is required",
		}
	}

	if cfg.ConfigUpdateTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.config_update_topic",
			Message: "config update topic is required",
		}
	}

	return validateRetry("broker.kafka.retry", cfg.Retry)
}

func validateRetry(prefix string, cfg RetryConfig) error {
	if cfg.MaxAttempts < 0 {
		return &ValidationError{
			Field:   prefix + ".max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.InitialInterval < 0 || cfg.MaxInterval < 0 {
		return &ValidationError{
			Field:   prefix,
			Message: "intervals must be non-negative",
		}
	}

	if cfg.MaxInterval > 0 && cfg.InitialInterval > 0 && cfg.MaxInterval < cfg.InitialInterval {
		return &ValidationError{
			Field:   prefix + ".max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Multiplier <= 0 {
		return &ValidationError{
			Field:   prefix + ".multiplier",
			Message: "multiplier must be positive",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host != "" || cfg.Postgres.Port > 0 {
		if err := validatePostgres(cfg.Postgres); err != nil {
			return err
		}
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if cfg.Redis.Host == "" {
			return &ValidationError{
				Field:   "database.redis.host",
				Message: "Redis host is required",
			}
		}
		if err := validatePort("database.redis.port", cfg.Redis.Port); err != nil {
			return err
		}
	}

	if cfg.MongoDB.URI != "" {
		if !strings.HasPrefix(cfg.MongoDB.URI, "mongodb://") && !strings.HasPrefix(cfg.MongoDB.URI, "mongodb+srv://") {
			return &ValidationError{
				Field:   "database.mongodb.uri",
				Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
			}
		}
		if cfg.MongoDB.Database == "" {
			return &ValidationError{
				Field:   "database.mongodb.database",
				Message: "MongoDB database name is required",
			}
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if err := validatePort("database.postgres.port", cfg.Port); err != nil {
		return err
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRouting(cfg RoutingConfig) error {
	if cfg.Namespace == "" || strings.ContainsAny(cfg.Namespace, " /{}") {
		return &ValidationError{
			Field:   "routing.namespace",
			Message: fmt.Sprintf("namespace must be non-empty and contain no spaces, slashes or braces, got %q", cfg.Namespace),
		}
	}

	if cfg.Reload.IntervalSeconds < 0 {
		return &ValidationError{
			Field:   "routing.reload.interval_seconds",
			Message: "reload interval must be non-negative",
		}
	}

	if cfg.Reload.JitterMaxMilliseconds < 0 {
		return &ValidationError{
			Field:   "routing.reload.jitter_max_milliseconds",
			Message: "jitter must be non-negative",
		}
	}

	if err := validateRetry("routing.reload.retry", cfg.Reload.Retry); err != nil {
		return err
	}

	seen := make(map[string]bool, len(cfg.EntityTypes))
	for i, et := range cfg.EntityTypes {
		field := fmt.Sprintf("routing.entity_types[%d]", i)
		if !entityTypePattern.MatchString(et.ID) {
			return &ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("invalid entity type id %q", et.ID),
			}
		}
		if seen[et.ID] {
			return &ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate entity type id %q", et.ID),
			}
		}
		seen[et.ID] = true
		for name, template := range et.LinkTemplates {
			if !strings.HasPrefix(template, "/") {
				return &ValidationError{
					Field:   fmt.Sprintf("%s.link_templates.%s", field, name),
					Message: "link template must start with /",
				}
			}
		}
	}

	seeded := make(map[string]bool, len(cfg.EventTypes))
	for i, et := range cfg.EventTypes {
		field := fmt.Sprintf("routing.event_types[%d].entity_type", i)
		if !entityTypePattern.MatchString(et.EntityType) {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid entity type %q", et.EntityType),
			}
		}
		if seeded[et.EntityType] {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate event type %q", et.EntityType),
			}
		}
		seeded[et.EntityType] = true
	}

	return nil
}

func validateAccess(cfg AccessConfig) error {
	if cfg.PermissionHeader == "" {
		return &ValidationError{
			Field:   "access.permission_header",
			Message: "permission header is required",
		}
	}
	if strings.TrimSpace(cfg.RegistrationsAllowedExpression) == "" {
		return &ValidationError{
			Field:   "access.registrations_allowed_expression",
			Message: "registrations allowed expression is required",
		}
	}
	return nil
}

func validateCircuitBreaker(cfg CircuitBreakerConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		return &ValidationError{
			Field:   "circuit_breaker.failure_ratio",
			Message: "failure ratio must be in (0, 1]",
		}
	}
	if cfg.TimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "circuit_breaker.timeout_seconds",
			Message: "timeout must be positive",
		}
	}
	return nil
}

// IsValidEntityType reports whether name is usable as an entity type id.
func IsValidEntityType(name string) bool {
	return entityTypePattern.MatchString(name)
}
