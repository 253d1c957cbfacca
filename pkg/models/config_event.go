package models

import "time"

// ConfigUpdateEvent announces a change to routing configuration. Subject is the
// entity type name the change applies to.
type ConfigUpdateEvent struct {
	EventType   string                 `json:"event_type"`
	ServiceType string                 `json:"service_type"`
	Subject     string                 `json:"subject,omitempty"`
	Action      string                 `json:"action"`
	Timestamp   time.Time              `json:"timestamp"`
	ChangedBy   string                 `json:"changed_by,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventTypeEventTypeConfigUpdated    = "event_type_config_updated"
	EventTypeEntityTypeUpdated         = "entity_type_updated"
	EventTypeRegistrationStatusUpdated = "registration_status_updated"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionToggle = "toggle"
	ActionReload = "reload"
)

const ServiceTypeRouting = "routing"

// RequiresRebuild reports whether the event changes the derived route table.
// Registration status changes are read live and need no rebuild.
func (e ConfigUpdateEvent) RequiresRebuild() bool {
	switch e.EventType {
	case EventTypeEventTypeConfigUpdated, EventTypeEntityTypeUpdated:
		return true
	default:
		return false
	}
}
