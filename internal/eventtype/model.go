package eventtype

import (
	"time"

	"rng/internal/routing"
)

// Config designates an entity type as an event type.
type Config struct {
	ID                string    `json:"id" db:"id"`
	EntityType        string    `json:"entity_type" db:"entity_type"`
	Label             string    `json:"label" db:"label"`
	Enabled           bool      `json:"enabled" db:"enabled"`
	RegistrationTypes []string  `json:"registration_types" db:"registration_types"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

func (c Config) Routing() routing.EventTypeConfig {
	return routing.EventTypeConfig{EntityType: c.EntityType}
}

type CreateRequest struct {
	EntityType        string   `json:"entity_type" binding:"required"`
	Label             string   `json:"label"`
	Enabled           *bool    `json:"enabled"`
	RegistrationTypes []string `json:"registration_types"`
}

type UpdateRequest struct {
	Label             *string  `json:"label"`
	Enabled           *bool    `json:"enabled"`
	RegistrationTypes []string `json:"registration_types"`
}

// RoutingConfigs converts configs into deriver input.
func RoutingConfigs(configs []Config) []routing.EventTypeConfig {
	out := make([]routing.EventTypeConfig, len(configs))
	for i, c := range configs {
		out[i] = c.Routing()
	}
	return out
}

func copyConfig(c *Config) *Config {
	out := *c
	if c.RegistrationTypes != nil {
		out.RegistrationTypes = append([]string(nil), c.RegistrationTypes...)
	}
	return &out
}
