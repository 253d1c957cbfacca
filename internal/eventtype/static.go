package eventtype

import (
	"context"
	"sort"

	"rng/internal/config"
)

// StaticSource serves event type configs declared under routing.event_types.
type StaticSource struct {
	configs []Config
}

func NewStaticSource(seeds []config.EventTypeSeedConfig) *StaticSource {
	configs := make([]Config, 0, len(seeds))
	for _, seed := range seeds {
		registrationTypes := append([]string{}, seed.RegistrationTypes...)
		configs = append(configs, Config{
			ID:                "static:" + seed.EntityType,
			EntityType:        seed.EntityType,
			Label:             seed.Label,
			Enabled:           true,
			RegistrationTypes: registrationTypes,
		})
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].EntityType < configs[j].EntityType })
	return &StaticSource{configs: configs}
}

func (s *StaticSource) ListEnabled(ctx context.Context) ([]Config, error) {
	out := make([]Config, len(s.configs))
	for i := range s.configs {
		out[i] = *copyConfig(&s.configs[i])
	}
	return out, nil
}
