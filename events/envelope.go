// Package events publishes chat lifecycle events to a topic exchange.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types, also used as routing keys.
const (
	TypeSessionStarted  = "chat.session.started.v1"
	TypeSessionAssigned = "chat.session.assigned.v1"
	TypeSessionClosed   = "chat.session.closed.v1"
	TypeShiftChanged    = "chat.shift.changed.v1"
)

// Producer names this service in event metadata.
const Producer = "chat-router"

// Meta identifies an event and where it came from.
type Meta struct {
	// Session or request correlation ID
	CorrelationID *string `json:"correlation_id,omitempty"`
	// Unique event ID
	ID string `json:"id"`
	// Emitting service
	Producer *string `json:"producer,omitempty"`
	// Timestamp when the event was emitted
	Time time.Time `json:"time"`
	// Event name and version, e.g. chat.session.started.v1
	Type string `json:"type"`
}

// Envelope is the message body published for every event.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// NewEnvelope stamps data with a fresh event id. An empty correlationID is
// left unset.
func NewEnvelope(eventType, correlationID string, at time.Time, data any) Envelope {
	producer := Producer
	meta := Meta{
		ID:       uuid.NewString(),
		Producer: &producer,
		Time:     at,
		Type:     eventType,
	}
	if correlationID != "" {
		meta.CorrelationID = &correlationID
	}
	return Envelope{Meta: meta, Data: data}
}

// SessionStarted is emitted when a chat is admitted to a lane.
type SessionStarted struct {
	SessionID string `json:"session_id"`
	Customer  string `json:"customer"`
	Lane      string `json:"lane"`
	State     string `json:"state"`
}

// SessionAssigned is emitted when an agent takes a chat.
type SessionAssigned struct {
	SessionID string `json:"session_id"`
	AgentID   string `json:"agent_id"`
	Lane      string `json:"lane"`
}

// Close reasons.
const (
	ReasonEnded   = "ended"
	ReasonExpired = "expired"
)

// SessionClosed is emitted when a chat leaves its lane.
type SessionClosed struct {
	SessionID string `json:"session_id"`
	Lane      string `json:"lane"`
	Reason    string `json:"reason"`
	AgentID   string `json:"agent_id,omitempty"`
}

// ShiftChanged is emitted when a new team takes over the primary lane.
type ShiftChanged struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Team     string `json:"team"`
	Capacity int    `json:"capacity"`
}
