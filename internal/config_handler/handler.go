package config_handler

import (
	"context"

	"rng/internal/logger"
	"rng/pkg/models"
)

type ConfigReloader interface {
	ReloadRules(ctx context.Context) error
}

// Handler reacts to config update events by rebuilding the route table.
type Handler struct {
	expectedServiceType string
	reloader            ConfigReloader
	logger              logger.Logger
}

func NewHandler(expectedServiceType string, log logger.Logger) *Handler {
	return &Handler{
		expectedServiceType: expectedServiceType,
		logger:              log,
	}
}

func NewHandlerWithReloader(expectedServiceType string, reloader ConfigReloader, log logger.Logger) *Handler {
	return NewHandler(expectedServiceType, log).WithReloader(reloader)
}

func (h *Handler) WithReloader(reloader ConfigReloader) *Handler {
	h.reloader = reloader
	return h
}

func (h *Handler) HandleConfigUpdateEvent(ctx context.Context, envelope models.MessageEnvelope) error {
	event, err := models.DecodeConfigEvent(envelope)
	if err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to decode config event", "error", err, "id", envelope.ID)
		return err
	}

	if event.EventType == "" || event.ServiceType == "" {
		h.logger.WarnwCtx(ctx, "Config event missing routing keys", "id", envelope.ID)
		return nil
	}

	if event.ServiceType != h.expectedServiceType {
		return nil
	}

	if err := models.ValidateConfigUpdateEvent(event); err != nil {
		h.logger.WarnwCtx(ctx, "Ignoring invalid config event", "error", err, "id", envelope.ID)
		return nil
	}

	h.logger.InfowCtx(ctx, "Received config update event",
		"event_type", event.EventType,
		"action", event.Action,
		"subject", event.Subject,
	)

	if !event.RequiresRebuild() || h.reloader == nil {
		return nil
	}

	if err := h.reloader.ReloadRules(ctx); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to rebuild routes after config update", "error", err)
		return err
	}
	h.logger.InfowCtx(ctx, "Routes rebuilt after config update", "action", event.Action)

	return nil
}
