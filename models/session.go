package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionState tracks where a chat session lives inside its lane.
type SessionState int

const (
	// Waiting sessions sit in the FIFO until a slot frees.
	Waiting SessionState = iota
	// Live sessions count against team capacity and may hold an agent.
	Live
	// Tombstoned sessions were ended while waiting and are dropped by the
	// next promotion or reap pass.
	Tombstoned
	// Closed sessions have left their queue.
	Closed
)

func (s SessionState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Live:
		return "live"
	case Tombstoned:
		return "tombstoned"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// MarshalText renders the state by name in JSON output.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ChatSession is a single customer conversation.
type ChatSession struct {
	ID            string       `json:"session_id"`
	Customer      string       `json:"customer"`
	Conversation  []string     `json:"conversation"`
	ExpiresAt     time.Time    `json:"expires_at"`
	Retry         int          `json:"retry"`
	AssignedAgent string       `json:"assigned_agent,omitempty"`
	State         SessionState `json:"state"`
	CreatedAt     time.Time    `json:"created_at"`
	// Seq is the admission order within the process.
	Seq uint64 `json:"-"`
}

// NewChatSession creates a session greeting the customer by name.
func NewChatSession(customer string, now time.Time, seq uint64) *ChatSession {
	return &ChatSession{
		ID:           uuid.NewString(),
		Customer:     customer,
		Conversation: []string{fmt.Sprintf("System: Hi %s! Welcome to our chat support.", customer)},
		CreatedAt:    now,
		Seq:          seq,
	}
}

// AddMessage appends to the conversation log.
func (s *ChatSession) AddMessage(msg string) {
	s.Conversation = append(s.Conversation, msg)
}

// IsExpired reports whether now is at or past the expiry time.
func (s *ChatSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Clone returns a deep copy safe to hand out of the owning lane.
func (s *ChatSession) Clone() *ChatSession {
	c := *s
	c.Conversation = append([]string(nil), s.Conversation...)
	return &c
}
