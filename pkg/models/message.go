package models

import "time"

type MessageEnvelope struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  Metadata               `json:"metadata"`
}

type Metadata struct {
	TraceID     string `json:"trace_id,omitempty"`
	EventType   string `json:"event_type,omitempty"`
	ServiceType string `json:"service_type,omitempty"`
	// Attributes carries delivery annotations such as dead-letter reasons.
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

func (m *Metadata) SetAttribute(key string, value interface{}) {
	if m.Attributes == nil {
		m.Attributes = make(map[string]interface{})
	}
	m.Attributes[key] = value
}
