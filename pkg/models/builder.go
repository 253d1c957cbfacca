package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MessageEnvelopeBuilder struct {
	envelope *MessageEnvelope
}

func NewMessageEnvelopeBuilder() *MessageEnvelopeBuilder {
	return &MessageEnvelopeBuilder{
		envelope: &MessageEnvelope{
			Payload:  make(map[string]interface{}),
			Metadata: Metadata{},
		},
	}
}

func (b *MessageEnvelopeBuilder) WithID(id string) *MessageEnvelopeBuilder {
	b.envelope.ID = id
	return b
}

func (b *MessageEnvelopeBuilder) WithSource(source string) *MessageEnvelopeBuilder {
	b.envelope.Source = source
	return b
}

func (b *MessageEnvelopeBuilder) WithTimestamp(timestamp time.Time) *MessageEnvelopeBuilder {
	b.envelope.Timestamp = timestamp
	return b
}

func (b *MessageEnvelopeBuilder) WithPayload(payload map[string]interface{}) *MessageEnvelopeBuilder {
	b.envelope.Payload = payload
	return b
}

func (b *MessageEnvelopeBuilder) WithTraceID(traceID string) *MessageEnvelopeBuilder {
	b.envelope.Metadata.TraceID = traceID
	return b
}

// WithConfigEvent sets the payload to event and mirrors its routing keys into
// the metadata so consumers can filter without decoding the payload.
func (b *MessageEnvelopeBuilder) WithConfigEvent(event ConfigUpdateEvent) (*MessageEnvelopeBuilder, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return b, fmt.Errorf("failed to marshal config event: %w", err)
	}
	payload := make(map[string]interface{})
	if err := json.Unmarshal(raw, &payload); err != nil {
		return b, fmt.Errorf("failed to unmarshal config event: %w", err)
	}
	b.envelope.Payload = payload
	b.envelope.Metadata.EventType = event.EventType
	b.envelope.Metadata.ServiceType = event.ServiceType
	return b, nil
}

func (b *MessageEnvelopeBuilder) Build() *MessageEnvelope {
	if b.envelope.ID == "" {
		b.envelope.ID = uuid.New().String()
	}
	if b.envelope.Timestamp.IsZero() {
		b.envelope.Timestamp = time.Now()
	}
	return b.envelope
}

// DecodeConfigEvent reads the ConfigUpdateEvent carried in msg's payload.
func DecodeConfigEvent(msg MessageEnvelope) (ConfigUpdateEvent, error) {
	var event ConfigUpdateEvent
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return event, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal config event: %w", err)
	}
	if event.EventType == "" {
		event.EventType = msg.Metadata.EventType
	}
	if event.ServiceType == "" {
		event.ServiceType = msg.Metadata.ServiceType
	}
	return event, nil
}
