// Package queue holds the live and waiting chat sessions of one routing lane
// and enforces its admission thresholds.
//
// A Queue is not safe for concurrent use. The router serializes access per
// lane, together with the lane's roster.
package queue

import (
	"sort"
	"time"

	"chat-router/models"
)

const (
	welcomeMessage = "Welcome, what can we do for you today?"
	waitMessage    = "Please wait as soon as our available agent will contact you."
)

// Settings controls session lifetime.
type Settings struct {
	// MaxRetry is the liveness count at which a live session is dropped.
	MaxRetry int
	// ExpiryHorizon is how long a live session stays valid after admission,
	// promotion or its latest customer message.
	ExpiryHorizon time.Duration
}

// Queue owns the sessions of one lane: live sessions keyed by id and
// waiting sessions in strict arrival order.
type Queue struct {
	settings     Settings
	live         map[string]*models.ChatSession
	waiting      []*models.ChatSession
	teamCapacity int
	waitCeiling  int
	seq          uint64
}

// New returns an empty queue with zero capacity.
func New(settings Settings) *Queue {
	return &Queue{
		settings: settings,
		live:     make(map[string]*models.ChatSession),
	}
}

// SetCapacity sets the team capacity and derives the waiting ceiling as
// floor(capacity * 1.5).
func (q *Queue) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	q.teamCapacity = n
	q.waitCeiling = n * 3 / 2
}

// TeamCapacity is the maximum number of live sessions.
func (q *Queue) TeamCapacity() int { return q.teamCapacity }

// WaitCeiling is the maximum number of live plus waiting sessions.
func (q *Queue) WaitCeiling() int { return q.waitCeiling }

// LiveCount returns the number of live sessions.
func (q *Queue) LiveCount() int { return len(q.live) }

// WaitingCount returns the number of waiting sessions, tombstones included.
func (q *Queue) WaitingCount() int { return len(q.waiting) }

// Admit creates a session for customer. It goes live while the lane has
// spare capacity, waits while under the ceiling, and is refused (nil)
// otherwise.
func (q *Queue) Admit(customer string, now time.Time) *models.ChatSession {
	if len(q.live) < q.teamCapacity {
		s := q.newSession(customer, now)
		q.goLive(s, now)
		return s
	}

	if len(q.live)+len(q.waiting) < q.waitCeiling {
		s := q.newSession(customer, now)
		s.State = models.Waiting
		s.AddMessage(waitMessage)
		q.waiting = append(q.waiting, s)
		return s
	}

	return nil
}

// PostMessage appends a customer message to a live session and refreshes its
// lifetime. Waiting and unknown sessions are left untouched and nil is
// returned.
func (q *Queue) PostMessage(id, text string, now time.Time) *models.ChatSession {
	s, ok := q.live[id]
	if !ok {
		return nil
	}
	s.AddMessage("You: " + text)
	s.ExpiresAt = now.Add(q.settings.ExpiryHorizon)
	s.Retry = 0
	return s
}

// End closes a session. A live session is removed at once. A waiting session
// is tombstoned with its retry count forced to the maximum; it keeps its
// place in the waiting count until the next promotion or reap pass drops it.
// Ending a tombstone again returns nil.
func (q *Queue) End(id string) *models.ChatSession {
	if s, ok := q.live[id]; ok {
		delete(q.live, id)
		s.State = models.Closed
		return s
	}

	for _, s := range q.waiting {
		if s.ID == id && s.State == models.Waiting {
			s.State = models.Tombstoned
			s.Retry = q.settings.MaxRetry
			return s
		}
	}

	return nil
}

// CheckLiveness bumps the retry count of every live session that has not yet
// passed its expiry time, and returns how many were bumped.
func (q *Queue) CheckLiveness(now time.Time) int {
	bumped := 0
	for _, s := range q.live {
		if !now.After(s.ExpiresAt) {
			s.Retry++
			bumped++
		}
	}
	return bumped
}

// ReapExpired removes and returns the live sessions that are past expiry or
// have used up their retries, oldest first. Tombstoned waiting sessions are
// discarded as well.
func (q *Queue) ReapExpired(now time.Time) []*models.ChatSession {
	var reaped []*models.ChatSession
	for id, s := range q.live {
		if s.IsExpired(now) || s.Retry >= q.settings.MaxRetry {
			delete(q.live, id)
			s.State = models.Closed
			reaped = append(reaped, s)
		}
	}
	sortBySeq(reaped)

	kept := q.waiting[:0]
	for _, s := range q.waiting {
		if s.State == models.Tombstoned {
			s.State = models.Closed
			continue
		}
		kept = append(kept, s)
	}
	clear(q.waiting[len(kept):])
	q.waiting = kept

	return reaped
}

// PromoteWaiting moves waiting sessions into the free live slots in arrival
// order and returns them. Tombstones met on the way are dropped without
// using a slot. The caller assigns agents to the returned sessions.
func (q *Queue) PromoteWaiting(now time.Time) []*models.ChatSession {
	free := q.teamCapacity - len(q.live)
	if free <= 0 || len(q.waiting) == 0 {
		return nil
	}

	var promoted []*models.ChatSession
	for len(q.waiting) > 0 && len(promoted) < free {
		s := q.waiting[0]
		q.waiting[0] = nil
		q.waiting = q.waiting[1:]

		if s.State == models.Tombstoned {
			s.State = models.Closed
			continue
		}
		q.goLive(s, now)
		promoted = append(promoted, s)
	}
	return promoted
}

// IsSaturated reports whether the lane has reached its waiting ceiling.
func (q *Queue) IsSaturated() bool {
	return len(q.live)+len(q.waiting) >= q.waitCeiling
}

// Unassigned returns the live sessions without an agent, oldest first.
func (q *Queue) Unassigned() []*models.ChatSession {
	var out []*models.ChatSession
	for _, s := range q.live {
		if s.AssignedAgent == "" {
			out = append(out, s)
		}
	}
	sortBySeq(out)
	return out
}

// Get finds a live or waiting session by id.
func (q *Queue) Get(id string) (*models.ChatSession, bool) {
	if s, ok := q.live[id]; ok {
		return s, true
	}
	for _, s := range q.waiting {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Live returns the live sessions, oldest first.
func (q *Queue) Live() []*models.ChatSession {
	out := make([]*models.ChatSession, 0, len(q.live))
	for _, s := range q.live {
		out = append(out, s)
	}
	sortBySeq(out)
	return out
}

// Waiting returns the waiting sessions in queue order.
func (q *Queue) Waiting() []*models.ChatSession {
	return append([]*models.ChatSession(nil), q.waiting...)
}

func (q *Queue) newSession(customer string, now time.Time) *models.ChatSession {
	q.seq++
	return models.NewChatSession(customer, now, q.seq)
}

func (q *Queue) goLive(s *models.ChatSession, now time.Time) {
	s.State = models.Live
	s.ExpiresAt = now.Add(q.settings.ExpiryHorizon)
	s.AddMessage(welcomeMessage)
	q.live[s.ID] = s
}

func sortBySeq(sessions []*models.ChatSession) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Seq < sessions[j].Seq
	})
}
