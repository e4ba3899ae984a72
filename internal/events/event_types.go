package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated    EventType = "user_created"
	EventUserUpdated    EventType = "user_updated"
	EventUserDeleted    EventType = "user_deleted"
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketClosed   EventType = "ticket_closed"
	EventTicketDeleted  EventType = "ticket_deleted"
)

// AllEventTypes lists every event a service may emit.
var AllEventTypes = []EventType{
	EventUserCreated,
	EventUserUpdated,
	EventUserDeleted,
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketAssigned,
	EventTicketClosed,
	EventTicketDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, entityID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserPayload accompanies user events.
type UserPayload struct {
	Email string      `json:"email,omitempty"`
	Role  domain.Role `json:"role,omitempty"`
}

// TicketStatusPayload accompanies ticket lifecycle events.
type TicketStatusPayload struct {
	RaisedBy   int64               `json:"raised_by,omitempty"`
	AssignedTo *int64              `json:"assigned_to,omitempty"`
	OldStatus  domain.TicketStatus `json:"old_status,omitempty"`
	NewStatus  domain.TicketStatus `json:"new_status,omitempty"`
}
