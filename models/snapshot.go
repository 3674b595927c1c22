package models

import "time"

// Snapshot is a read-only view of the router for monitoring.
type Snapshot struct {
	TakenAt         time.Time      `json:"taken_at"`
	Team            string         `json:"team"`
	Shift           string         `json:"shift"`
	NextShiftChange time.Time      `json:"next_shift_change"`
	Lanes           []LaneSnapshot `json:"lanes"`
}

// LaneSnapshot describes one queue/roster pair.
type LaneSnapshot struct {
	Name          string        `json:"name"`
	Active        bool          `json:"active"`
	TeamCapacity  int           `json:"team_capacity"`
	QueueCapacity int           `json:"queue_capacity"`
	Live          int           `json:"live"`
	Waiting       int           `json:"waiting"`
	Sessions      []SessionView `json:"sessions,omitempty"`
	Agents        []AgentView   `json:"agents,omitempty"`
}

// SessionView is the monitoring projection of a chat session.
type SessionView struct {
	ID            string    `json:"session_id"`
	Customer      string    `json:"customer"`
	State         string    `json:"state"`
	AssignedAgent string    `json:"assigned_agent,omitempty"`
	Retry         int       `json:"retry"`
	ExpiresAt     time.Time `json:"expires_at,omitzero"`
}

// AgentView is the monitoring projection of an agent.
type AgentView struct {
	ID         string `json:"id"`
	Nickname   string `json:"nickname"`
	Seniority  string `json:"seniority"`
	Capacity   int    `json:"capacity"`
	Load       int    `json:"load"`
	Assignable bool   `json:"assignable"`
}
