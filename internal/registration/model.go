package registration

import (
	"time"

	"rng/pkg/cel"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// EventStatus is the registration window of one event instance. Timestamps
// are unix seconds and zero means unbounded.
type EventStatus struct {
	EventType         string    `json:"event_type"`
	EventID           string    `json:"event_id"`
	Status            string    `json:"status"`
	OpensAt           int64     `json:"opens_at"`
	ClosesAt          int64     `json:"closes_at"`
	Capacity          int64     `json:"capacity"`
	Registered        int64     `json:"registered"`
	RegistrationTypes []string  `json:"registration_types"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Vars exposes the status to registration expressions.
func (s *EventStatus) Vars(now time.Time) cel.Vars {
	return cel.Vars{
		Status:            s.Status,
		OpensAt:           s.OpensAt,
		ClosesAt:          s.ClosesAt,
		Capacity:          s.Capacity,
		Registered:        s.Registered,
		Now:               now.Unix(),
		EventType:         s.EventType,
		RegistrationTypes: s.RegistrationTypes,
	}
}

type PutRequest struct {
	Status            string   `json:"status" binding:"required"`
	OpensAt           int64    `json:"opens_at"`
	ClosesAt          int64    `json:"closes_at"`
	Capacity          int64    `json:"capacity"`
	Registered        int64    `json:"registered"`
	RegistrationTypes []string `json:"registration_types"`
}
