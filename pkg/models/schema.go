package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateMessageEnvelope(msg *MessageEnvelope) error {
	if msg == nil {
		return &ValidationError{
			Field:   "envelope",
			Message: "message envelope cannot be nil",
		}
	}

	if msg.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "message ID is required",
		}
	}

	if msg.Source == "" {
		return &ValidationError{
			Field:   "source",
			Message: "message source is required",
		}
	}

	if msg.Timestamp.IsZero() {
		return &ValidationError{
			Field:   "timestamp",
			Message: "message timestamp is required",
		}
	}

	if msg.Payload == nil {
		return &ValidationError{
			Field:   "payload",
			Message: "message payload cannot be nil",
		}
	}

	return nil
}

func ValidateConfigUpdateEvent(event ConfigUpdateEvent) error {
	switch event.EventType {
	case EventTypeEventTypeConfigUpdated, EventTypeEntityTypeUpdated, EventTypeRegistrationStatusUpdated:
	default:
		return &ValidationError{
			Field:   "event_type",
			Message: fmt.Sprintf("unknown event type %q", event.EventType),
		}
	}

	if event.ServiceType != ServiceTypeRouting {
		return &ValidationError{
			Field:   "service_type",
			Message: fmt.Sprintf("unexpected service type %q", event.ServiceType),
		}
	}

	switch event.Action {
	case ActionCreate, ActionUpdate, ActionDelete, ActionToggle, ActionReload:
	default:
		return &ValidationError{
			Field:   "action",
			Message: fmt.Sprintf("unknown action %q", event.Action),
		}
	}

	return nil
}
