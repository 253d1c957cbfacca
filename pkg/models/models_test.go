package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderWithConfigEvent(t *testing.T) {
	event := ConfigUpdateEvent{
		EventType:   EventTypeEntityTypeUpdated,
		ServiceType: ServiceTypeRouting,
		Subject:     "conference",
		Action:      ActionUpdate,
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	builder, err := NewMessageEnvelopeBuilder().WithSource("management-service").WithConfigEvent(event)
	require.NoError(t, err)
	msg := builder.Build()

	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Equal(t, EventTypeEntityTypeUpdated, msg.Metadata.EventType)
	assert.Equal(t, ServiceTypeRouting, msg.Metadata.ServiceType)
	assert.Equal(t, "conference", msg.Payload["subject"])
	require.NoError(t, ValidateMessageEnvelope(msg))

	decoded, err := DecodeConfigEvent(*msg)
	require.NoError(t, err)
	assert.Equal(t, event.Subject, decoded.Subject)
	assert.True(t, decoded.Timestamp.Equal(event.Timestamp))
	assert.True(t, decoded.RequiresRebuild())
}

func TestDecodeConfigEventFallsBackToMetadata(t *testing.T) {
	msg := MessageEnvelope{
		Payload:  map[string]interface{}{"action": ActionReload},
		Metadata: Metadata{EventType: EventTypeEventTypeConfigUpdated, ServiceType: ServiceTypeRouting},
	}

	event, err := DecodeConfigEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, EventTypeEventTypeConfigUpdated, event.EventType)
	assert.Equal(t, ServiceTypeRouting, event.ServiceType)
	assert.NoError(t, ValidateConfigUpdateEvent(event))
}

func TestRequiresRebuild(t *testing.T) {
	assert.True(t, ConfigUpdateEvent{EventType: EventTypeEventTypeConfigUpdated}.RequiresRebuild())
	assert.True(t, ConfigUpdateEvent{EventType: EventTypeEntityTypeUpdated}.RequiresRebuild())
	assert.False(t, ConfigUpdateEvent{EventType: EventTypeRegistrationStatusUpdated}.RequiresRebuild())
}

func TestValidateConfigUpdateEvent(t *testing.T) {
	valid := ConfigUpdateEvent{EventType: EventTypeEntityTypeUpdated, ServiceType: ServiceTypeRouting, Action: ActionDelete}
	assert.NoError(t, ValidateConfigUpdateEvent(valid))

	badType := valid
	badType.EventType = "page_updated"
	assert.ErrorContains(t, ValidateConfigUpdateEvent(badType), "event_type")

	badService := valid
	badService.ServiceType = "notifications"
	assert.ErrorContains(t, ValidateConfigUpdateEvent(badService), "service_type")

	badAction := valid
	badAction.Action = "explode"
	assert.ErrorContains(t, ValidateConfigUpdateEvent(badAction), "action")
}

func TestValidateMessageEnvelope(t *testing.T) {
	assert.Error(t, ValidateMessageEnvelope(nil))
	assert.ErrorContains(t, ValidateMessageEnvelope(&MessageEnvelope{}), "id")

	var md Metadata
	md.SetAttribute("dlq_reason", "boom")
	assert.Equal(t, "boom", md.Attributes["dlq_reason"])
}
