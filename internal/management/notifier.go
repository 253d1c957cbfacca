package management

import (
	"context"
	"time"

	"rng/internal/broker"
	"rng/internal/constants"
	"rng/pkg/logging"
	"rng/pkg/metrics"
	"rng/pkg/models"
)

// ConfigEventProducer publishes routing config changes for the event router.
// A nil producer or empty topic turns every publish into a no-op.
type ConfigEventProducer struct {
	producer broker.Producer
	topic    string
}

func NewConfigEventProducer(producer broker.Producer, topic string) *ConfigEventProducer {
	return &ConfigEventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *ConfigEventProducer) PublishEventTypeEvent(ctx context.Context, action, entityType string) error {
	return p.publish(ctx, models.EventTypeEventTypeConfigUpdated, action, entityType, nil)
}

func (p *ConfigEventProducer) PublishEntityTypeEvent(ctx context.Context, action, entityType string) error {
	return p.publish(ctx, models.EventTypeEntityTypeUpdated, action, entityType, nil)
}

func (p *ConfigEventProducer) PublishRegistrationStatusEvent(ctx context.Context, action, eventType, eventID string) error {
	return p.publish(ctx, models.EventTypeRegistrationStatusUpdated, action, eventType, map[string]interface{}{
		"event_id": eventID,
	})
}

func (p *ConfigEventProducer) publish(ctx context.Context, eventType, action, subject string, metadata map[string]interface{}) error {
	if p == nil || p.producer == nil || p.topic == "" {
		return nil
	}

	event := models.ConfigUpdateEvent{
		EventType:   eventType,
		ServiceType: models.ServiceTypeRouting,
		Subject:     subject,
		Action:      action,
		Timestamp:   time.Now(),
		ChangedBy:   ChangedBy(ctx),
		Metadata:    metadata,
	}

	builder, err := models.NewMessageEnvelopeBuilder().
		WithSource(constants.ServiceManagement).
		WithTraceID(logging.GetTraceID(ctx)).
		WithConfigEvent(event)
	if err != nil {
		metrics.IncConfigEventPublished(eventType, "error")
		return err
	}

	if err := p.producer.Publish(ctx, p.topic, *builder.Build()); err != nil {
		metrics.IncConfigEventPublished(eventType, "error")
		return err
	}

	metrics.IncConfigEventPublished(eventType, "success")
	return nil
}
