// Package roster keeps the agents of one routing lane and decides which
// agent takes each chat.
//
// A Roster is not safe for concurrent use; the router holds the lane lock
// around every call. Sessions are handed to the roster by their queue on
// assignment and handed back on unassignment: the roster only ever writes
// a session's AssignedAgent and appends the agent's greeting.
package roster

import (
	"fmt"
	"sort"

	"chat-router/models"
)

// Assignment records one session placed with an agent.
type Assignment struct {
	SessionID string
	AgentID   string
}

// Roster holds the agents of the active shift plus any agents from earlier
// shifts that still own chats.
type Roster struct {
	agents []*models.Agent
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{}
}

// AddAgents installs fresh records for the given agent specs. An agent whose
// id is still present (for example draining from the previous rotation of the
// same team) is made assignable again instead of being duplicated.
func (r *Roster) AddAgents(agents []models.Agent) {
	for _, spec := range agents {
		if existing := r.find(spec.ID); existing != nil {
			existing.Assignable = true
			continue
		}
		a := models.NewAgent(spec.ID, spec.Nickname, spec.Seniority)
		r.agents = append(r.agents, &a)
	}
}

// Assign places one session with the next available agent. It reports false
// when nobody can take it.
func (r *Roster) Assign(s *models.ChatSession) bool {
	return len(r.AssignMany([]*models.ChatSession{s})) == 1
}

// AssignMany assigns sessions in order and stops at the first session no
// agent can take. The rest of the batch is left for a later pass.
func (r *Roster) AssignMany(sessions []*models.ChatSession) []Assignment {
	var done []Assignment
	for _, s := range sessions {
		agent := r.NextAvailable()
		if agent == nil {
			return done
		}

		s.AssignedAgent = agent.ID
		s.AddMessage(fmt.Sprintf("Hi! This is %s, ready to support you today!", agent.Nickname))
		agent.Sessions[s.ID] = struct{}{}
		done = append(done, Assignment{SessionID: s.ID, AgentID: agent.ID})
	}
	return done
}

// Unassign releases a session from its agent. Sessions without an agent, or
// whose agent has already left the roster, are ignored.
func (r *Roster) Unassign(s *models.ChatSession) bool {
	return r.UnassignMany([]*models.ChatSession{s}) == 1
}

// UnassignMany releases each session from its agent and returns how many
// agents were found.
func (r *Roster) UnassignMany(sessions []*models.ChatSession) int {
	released := 0
	for _, s := range sessions {
		if s.AssignedAgent == "" {
			continue
		}
		agent := r.find(s.AssignedAgent)
		s.AssignedAgent = ""
		if agent == nil {
			continue
		}
		delete(agent.Sessions, s.ID)
		released++
	}
	return released
}

// NextAvailable returns the assignable agent with spare capacity and the
// lowest load. Ties go to the least senior agent, then to roster order.
func (r *Roster) NextAvailable() *models.Agent {
	var candidates []*models.Agent
	for _, a := range r.agents {
		if a.Assignable && a.WithinCapacity() {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Load() != candidates[j].Load() {
			return candidates[i].Load() < candidates[j].Load()
		}
		return candidates[i].Seniority < candidates[j].Seniority
	})
	return candidates[0]
}

// Capacity sums the capacity of the assignable agents.
func (r *Roster) Capacity() int {
	total := 0
	for _, a := range r.agents {
		if a.Assignable {
			total += a.Capacity()
		}
	}
	return total
}

// SetUnassignable takes every current agent out of rotation. They keep their
// chats until those end.
func (r *Roster) SetUnassignable() {
	for _, a := range r.agents {
		a.Assignable = false
	}
}

// RemoveDrained drops unassignable agents that no longer own chats and
// returns their ids.
func (r *Roster) RemoveDrained() []string {
	var removed []string
	kept := r.agents[:0]
	for _, a := range r.agents {
		if !a.Assignable && a.Load() == 0 {
			removed = append(removed, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	clear(r.agents[len(kept):])
	r.agents = kept
	return removed
}

// Agents returns copies of the agents in roster order.
func (r *Roster) Agents() []models.Agent {
	out := make([]models.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		c := *a
		c.Sessions = make(map[string]struct{}, len(a.Sessions))
		for id := range a.Sessions {
			c.Sessions[id] = struct{}{}
		}
		out = append(out, c)
	}
	return out
}

// Len returns the number of agents, draining ones included.
func (r *Roster) Len() int { return len(r.agents) }

func (r *Roster) find(id string) *models.Agent {
	for _, a := range r.agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}
