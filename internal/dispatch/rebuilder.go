package dispatch

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rng/internal/config"
	"rng/internal/constants"
	"rng/internal/entitytype"
	"rng/internal/eventtype"
	"rng/internal/logger"
	"rng/internal/routing"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/metrics"
	"rng/pkg/retry"
	"rng/pkg/tracing"
)

// Rebuild triggers.
const (
	TriggerStartup     = "startup"
	TriggerInterval    = "interval"
	TriggerConfigEvent = "config_event"
	TriggerAPI         = "api"
)

// EntityTypes provides point-in-time entity type definitions.
type EntityTypes interface {
	Snapshot(ctx context.Context) (*entitytype.Snapshot, error)
}

// Rebuilder runs rebuild cycles: load configs, resolve entity types, derive
// routes, build an engine and publish it. Cycles never overlap.
type Rebuilder struct {
	source      eventtype.Source
	entityTypes EntityTypes
	deriver     *routing.Deriver
	builder     *Builder
	table       *Table
	reload      config.ReloadConfig
	policy      retry.Policy
	logger      logger.Logger

	mu sync.Mutex
}

func NewRebuilder(
	source eventtype.Source,
	entityTypes EntityTypes,
	deriver *routing.Deriver,
	builder *Builder,
	table *Table,
	reload config.ReloadConfig,
	log logger.Logger,
) *Rebuilder {
	policy := retry.DefaultPolicy().Merge(retry.Policy{
		MaxAttempts:     reload.Retry.MaxAttempts,
		InitialInterval: reload.Retry.InitialInterval,
		MaxInterval:     reload.Retry.MaxInterval,
		Multiplier:      reload.Retry.Multiplier,
	})

	return &Rebuilder{
		source:      source,
		entityTypes: entityTypes,
		deriver:     deriver,
		builder:     builder,
		table:       table,
		reload:      reload,
		policy:      policy,
		logger:      log,
	}
}

type loadedState struct {
	configs  []eventtype.Config
	snapshot *entitytype.Snapshot
}

// Rebuild runs one cycle. On failure the published generation is unchanged.
func (r *Rebuilder) Rebuild(ctx context.Context, trigger string) (*Generation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := tracing.StartRebuildSpan(ctx, trigger)
	defer span.End()
	start := time.Now()

	generation, err := r.rebuild(ctx, trigger)
	if err != nil {
		metrics.ObserveRebuild(trigger, "error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.ErrorwCtx(ctx, "Route rebuild failed", "trigger", trigger, "error", err)
		return nil, err
	}

	r.table.Publish(generation)
	metrics.ObserveRebuild(trigger, "success", time.Since(start))
	metrics.SetRouteTable(generation.Version, generation.Collection.Len(), len(generation.EventTypes), len(generation.Skipped))
	span.SetAttributes(
		attribute.Int64("rng.routes", int64(generation.Collection.Len())),
		attribute.Int64("rng.generation", int64(generation.Version)),
	)

	r.logger.InfowCtx(ctx, "Route table rebuilt",
		"trigger", trigger,
		"version", generation.Version,
		"routes", generation.Collection.Len(),
		"event_types", len(generation.EventTypes),
		"skipped", generation.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return generation, nil
}

func (r *Rebuilder) rebuild(ctx context.Context, trigger string) (*Generation, error) {
	state, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	collection := routing.NewRouteCollection()
	if err := r.deriver.AlterRoutes(collection, eventtype.RoutingConfigs(state.configs), state.snapshot); err != nil {
		return nil, err
	}

	eventTypes := make(map[string]eventtype.Config, len(state.configs))
	skipped := make([]string, 0)
	for _, cfg := range state.configs {
		eventTypes[cfg.EntityType] = cfg
		if def, err := state.snapshot.Resolve(cfg.EntityType); err == nil && def.LinkTemplate(routing.CanonicalTemplate) == "" {
			skipped = append(skipped, cfg.EntityType)
		}
	}

	handler, err := r.builder.Build(collection, eventTypes)
	if err != nil {
		return nil, err
	}

	return &Generation{
		BuiltAt:    time.Now().UTC(),
		Trigger:    trigger,
		Collection: collection,
		EventTypes: eventTypes,
		Skipped:    skipped,
		handler:    handler,
	}, nil
}

// load reads configs and definitions, retrying transient failures.
func (r *Rebuilder) load(ctx context.Context) (*loadedState, error) {
	var state loadedState
	err := retry.RetryWithCallback(ctx, r.policy, func() error {
		configs, err := r.source.ListEnabled(ctx)
		if err != nil {
			return err
		}
		snapshot, err := r.entityTypes.Snapshot(ctx)
		if err != nil {
			return err
		}
		state = loadedState{configs: configs, snapshot: snapshot}
		return nil
	}, func(attempt int, err error, next time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(constants.ServiceEventRouter, "route_rebuild").Inc()
		r.logger.WarnwCtx(ctx, "Retrying route config load",
			"attempt", attempt,
			"error", err,
			"next_retry_ms", next.Milliseconds(),
		)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable)
	}
	return &state, nil
}

// ReloadRules rebuilds after a config update event.
func (r *Rebuilder) ReloadRules(ctx context.Context) error {
	if err := r.applyJitter(ctx); err != nil {
		return err
	}
	_, err := r.Rebuild(ctx, TriggerConfigEvent)
	return err
}

func (r *Rebuilder) applyJitter(ctx context.Context) error {
	if r.reload.JitterMaxMilliseconds <= 0 {
		return nil
	}

	jitter := time.Duration(rand.Intn(r.reload.JitterMaxMilliseconds)) * time.Millisecond
	r.logger.DebugwCtx(ctx, "Rebuild scheduled with jitter",
		"jitter_ms", jitter.Milliseconds(),
	)

	select {
	case <-time.After(jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartReloader builds the first generation, then rebuilds every
// reload.interval_seconds until ctx is done. A zero interval disables the
// periodic rebuild.
func (r *Rebuilder) StartReloader(ctx context.Context) error {
	if _, err := r.Rebuild(ctx, TriggerStartup); err != nil {
		r.logger.ErrorwCtx(ctx, "Initial route build failed", "error", err)
	}

	if r.reload.IntervalSeconds <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(time.Duration(r.reload.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.applyJitter(ctx); err != nil {
				return err
			}
			_, _ = r.Rebuild(ctx, TriggerInterval)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
