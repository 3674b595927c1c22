package models

import (
	"fmt"
	"strings"
)

// Seniority is the tier of a support agent. Lower tiers win assignment ties.
type Seniority int

const (
	Junior Seniority = iota + 1
	MidLevel
	Senior
	TeamLead
)

// seniorityCapacity is the number of concurrent chats each tier can hold.
var seniorityCapacity = map[Seniority]int{
	Junior:   4,
	MidLevel: 8,
	Senior:   6,
	TeamLead: 5,
}

var seniorityNames = map[Seniority]string{
	Junior:   "Junior",
	MidLevel: "MidLevel",
	Senior:   "Senior",
	TeamLead: "TeamLead",
}

func (s Seniority) String() string {
	if name, ok := seniorityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Seniority(%d)", int(s))
}

// Capacity returns the concurrent chat limit for the tier. Unknown tiers get
// the junior limit.
func (s Seniority) Capacity() int {
	if c, ok := seniorityCapacity[s]; ok {
		return c
	}
	return seniorityCapacity[Junior]
}

// ParseSeniority resolves a tier name case-insensitively. "Mid" and "Lead"
// are accepted as short forms.
func ParseSeniority(name string) (Seniority, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "junior":
		return Junior, true
	case "midlevel", "mid-level", "mid":
		return MidLevel, true
	case "senior":
		return Senior, true
	case "teamlead", "team-lead", "lead":
		return TeamLead, true
	}
	return 0, false
}

// Shift identifies a wall-clock window that owns the primary roster.
// Overflow is the always-on secondary team and is never the current shift.
type Shift int

const (
	Day Shift = iota
	Evening
	Night
	Overflow
)

var shiftNames = map[Shift]string{
	Day:      "Day",
	Evening:  "Evening",
	Night:    "Night",
	Overflow: "Overflow",
}

func (s Shift) String() string {
	if name, ok := shiftNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shift(%d)", int(s))
}

// ParseShift resolves a shift name case-insensitively. "Custom" is accepted
// for the overflow team.
func ParseShift(name string) (Shift, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "day":
		return Day, true
	case "evening":
		return Evening, true
	case "night":
		return Night, true
	case "overflow", "custom":
		return Overflow, true
	}
	return 0, false
}

// Agent is a support representative. The identity fields are fixed once the
// agent is installed into a roster; Sessions and Assignable change as work is
// assigned and the agent is drained.
type Agent struct {
	ID         string
	Nickname   string
	Seniority  Seniority
	Assignable bool
	// Sessions holds the ids of the chats this agent currently owns.
	Sessions map[string]struct{}
}

// NewAgent returns an assignable agent with no sessions. An empty nickname
// defaults to the id.
func NewAgent(id, nickname string, seniority Seniority) Agent {
	if nickname == "" {
		nickname = id
	}
	return Agent{
		ID:         id,
		Nickname:   nickname,
		Seniority:  seniority,
		Assignable: true,
		Sessions:   make(map[string]struct{}),
	}
}

// Capacity is derived from seniority.
func (a *Agent) Capacity() int { return a.Seniority.Capacity() }

// Load is the number of sessions owned by the agent.
func (a *Agent) Load() int { return len(a.Sessions) }

// WithinCapacity reports whether the agent can take one more chat.
func (a *Agent) WithinCapacity() bool { return a.Load() < a.Capacity() }

// Team is a roster snapshot for one shift. Agents are value specs; a roster
// installs fresh copies so the snapshot itself is never mutated.
type Team struct {
	Name   string
	Shift  Shift
	Agents []Agent
}

// Capacity sums the capacity of every agent in the team.
func (t Team) Capacity() int {
	total := 0
	for i := range t.Agents {
		total += t.Agents[i].Capacity()
	}
	return total
}
