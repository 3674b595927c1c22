// Package router routes support chats between the primary lane, staffed by
// the current shift's team, and the overflow lane, which only takes new work
// during the Day shift once the primary lane is full.
//
// Lock order is state then lane: the router's state lock guards the current
// team and the maintenance timestamps, and each lane has its own lock held
// across every compound queue and roster operation. Events are published only
// after all locks are released.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-router/errors"
	"chat-router/events"
	"chat-router/metrics"
	"chat-router/models"
	"chat-router/queue"
	"chat-router/roster"
	"chat-router/scheduler"
)

// Lane names, used in metrics, events and diagnostics.
const (
	LanePrimary  = "primary"
	LaneOverflow = "overflow"
)

// Settings mirrors the tunables of the support desk.
type Settings struct {
	MaxRetry             int
	ExpiryHorizon        time.Duration
	CheckLiveInterval    time.Duration
	CheckExpiredInterval time.Duration
	AutoAssign           bool
	CheckChangeInterval  time.Duration
	// DefaultShift names the shift whose team starts on the primary lane.
	// Anything other than Day, Evening or Night falls back to Day.
	DefaultShift string
	// Location is the zone shift windows are evaluated in. Nil means local time.
	Location *time.Location
}

// Config wires a Router. Directory is required; the rest have defaults.
type Config struct {
	Settings  Settings
	Directory *scheduler.Directory
	Logger    *slog.Logger
	Publisher events.Publisher
	// Now is the clock used for expiry, gating and shift evaluation.
	Now func() time.Time
}

type lane struct {
	name   string
	mu     sync.Mutex
	queue  *queue.Queue
	roster *roster.Roster
}

// observe publishes lane gauges. The lane lock must be held.
func (l *lane) observe() {
	metrics.ObserveLane(l.name, l.queue.LiveCount(), l.queue.WaitingCount(), l.queue.TeamCapacity(), l.roster.Len())
}

// Router is the routing orchestrator. All methods are safe for concurrent use.
type Router struct {
	settings Settings
	dir      *scheduler.Directory
	log      *slog.Logger
	pub      events.Publisher
	now      func() time.Time

	primary  *lane
	overflow *lane

	mu              sync.RWMutex
	team            models.Team
	lastLiveness    time.Time
	lastExpiry      time.Time
	lastShiftChange time.Time
}

// New builds a router with the default shift's team on the primary lane and
// the overflow team on the overflow lane.
func New(cfg Config) (*Router, error) {
	if cfg.Directory == nil {
		return nil, fmt.Errorf("router: team directory is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NewFallback(cfg.Logger)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	shift, ok := scheduler.DefaultShift(cfg.Settings.DefaultShift)
	if !ok && cfg.Settings.DefaultShift != "" {
		cfg.Logger.Warn("unknown default shift, starting with Day",
			slog.String("default_shift", cfg.Settings.DefaultShift))
	}

	qs := queue.Settings{MaxRetry: cfg.Settings.MaxRetry, ExpiryHorizon: cfg.Settings.ExpiryHorizon}
	r := &Router{
		settings: cfg.Settings,
		dir:      cfg.Directory,
		log:      cfg.Logger,
		pub:      cfg.Publisher,
		now:      cfg.Now,
		primary:  &lane{name: LanePrimary, queue: queue.New(qs), roster: roster.New()},
		overflow: &lane{name: LaneOverflow, queue: queue.New(qs), roster: roster.New()},
	}

	now := r.now()
	r.lastLiveness, r.lastExpiry, r.lastShiftChange = now, now, now

	metrics.ResetLaneGauges()
	r.team = r.dir.Team(shift)
	r.staff(r.primary, r.team)
	r.staff(r.overflow, r.dir.Team(models.Overflow))

	r.log.Info("router ready",
		slog.String("team", r.team.Name),
		slog.String("shift", r.team.Shift.String()),
		slog.Int("capacity", r.primary.queue.TeamCapacity()),
		slog.Int("overflow_capacity", r.overflow.queue.TeamCapacity()),
	)
	return r, nil
}

// staff installs a team on a lane and resizes its queue to the roster.
func (r *Router) staff(l *lane, team models.Team) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roster.AddAgents(team.Agents)
	l.queue.SetCapacity(l.roster.Capacity())
	l.observe()
}

// CurrentShift returns the shift staffing the primary lane.
func (r *Router) CurrentShift() models.Shift {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.team.Shift
}

// StartSession admits a chat for customer and returns its session id. A chat
// that goes live is offered to an agent straight away; a waiting one is not.
// When the primary lane refuses and is saturated during the Day shift, the
// overflow lane is tried. ErrChatRefused is returned when no lane takes it.
func (r *Router) StartSession(ctx context.Context, customer string) (string, error) {
	if customer == "" {
		return "", errors.ErrEmptyCustomer
	}

	id, pending := r.route(customer)
	r.publish(ctx, pending)
	if id == "" {
		metrics.SessionsRefusedTotal.Inc()
		r.log.Debug("chat refused", slog.String("customer", customer))
		return "", errors.ErrChatRefused
	}
	return id, nil
}

func (r *Router) route(customer string) (string, []events.Envelope) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, pending := r.admit(r.primary, customer)
	if id == "" && r.team.Shift == models.Day && r.primarySaturated() {
		id, pending = r.admit(r.overflow, customer)
	}
	return id, pending
}

func (r *Router) primarySaturated() bool {
	r.primary.mu.Lock()
	defer r.primary.mu.Unlock()
	return r.primary.queue.IsSaturated()
}

// admit runs one lane's admission and returns the new session id, or "" when
// the lane refused, along with the events to publish.
func (r *Router) admit(l *lane, customer string) (string, []events.Envelope) {
	now := r.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.queue.Admit(customer, now)
	if s == nil {
		return "", nil
	}

	pending := []events.Envelope{events.NewEnvelope(events.TypeSessionStarted, s.ID, now, events.SessionStarted{
		SessionID: s.ID,
		Customer:  s.Customer,
		Lane:      l.name,
		State:     s.State.String(),
	})}
	metrics.SessionsStartedTotal.WithLabelValues(l.name, s.State.String()).Inc()

	if s.State == models.Live && !s.ExpiresAt.Before(now) {
		pending = append(pending, r.assigned(l, l.roster.AssignMany([]*models.ChatSession{s}), now)...)
	}
	l.observe()
	return s.ID, pending
}

// EndSession closes a chat and frees its agent. The overflow lane is only
// consulted during the Day shift.
func (r *Router) EndSession(ctx context.Context, id string) bool {
	ended, pending := r.endAny(id)
	r.publish(ctx, pending)
	return ended
}

func (r *Router) endAny(id string) (bool, []events.Envelope) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ended, pending := r.end(r.primary, id); ended {
		return true, pending
	}
	if r.team.Shift == models.Day {
		return r.end(r.overflow, id)
	}
	return false, nil
}

func (r *Router) end(l *lane, id string) (bool, []events.Envelope) {
	now := r.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.queue.End(id)
	if s == nil {
		return false, nil
	}
	agent := s.AssignedAgent
	l.roster.Unassign(s)
	l.observe()
	metrics.SessionsClosedTotal.WithLabelValues(l.name, events.ReasonEnded).Inc()

	return true, []events.Envelope{events.NewEnvelope(events.TypeSessionClosed, s.ID, now, events.SessionClosed{
		SessionID: s.ID,
		Lane:      l.name,
		Reason:    events.ReasonEnded,
		AgentID:   agent,
	})}
}

// SendMessage appends a customer message to a live chat in either lane and
// returns a copy of the session. Waiting and unknown chats yield
// ErrSessionNotFound.
func (r *Router) SendMessage(_ context.Context, id, text string) (*models.ChatSession, error) {
	for _, l := range []*lane{r.primary, r.overflow} {
		if s := r.post(l, id, text); s != nil {
			return s, nil
		}
	}
	return nil, errors.ErrSessionNotFound
}

func (r *Router) post(l *lane, id, text string) *models.ChatSession {
	now := r.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.queue.PostMessage(id, text, now)
	if s == nil {
		return nil
	}
	return s.Clone()
}

// Snapshot returns a read-only view of both lanes. It has no side effects.
func (r *Router) Snapshot() models.Snapshot {
	now := r.now()
	next, _ := scheduler.NextChange(now, r.settings.Location)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return models.Snapshot{
		TakenAt:         now,
		Team:            r.team.Name,
		Shift:           r.team.Shift.String(),
		NextShiftChange: next,
		Lanes: []models.LaneSnapshot{
			snapshotLane(r.primary, true),
			snapshotLane(r.overflow, r.team.Shift == models.Day),
		},
	}
}

func snapshotLane(l *lane, active bool) models.LaneSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	ls := models.LaneSnapshot{
		Name:          l.name,
		Active:        active,
		TeamCapacity:  l.queue.TeamCapacity(),
		QueueCapacity: l.queue.WaitCeiling(),
		Live:          l.queue.LiveCount(),
		Waiting:       l.queue.WaitingCount(),
	}
	for _, s := range append(l.queue.Live(), l.queue.Waiting()...) {
		v := models.SessionView{
			ID:            s.ID,
			Customer:      s.Customer,
			State:         s.State.String(),
			AssignedAgent: s.AssignedAgent,
			Retry:         s.Retry,
		}
		if s.State == models.Live {
			v.ExpiresAt = s.ExpiresAt
		}
		ls.Sessions = append(ls.Sessions, v)
	}
	for _, a := range l.roster.Agents() {
		ls.Agents = append(ls.Agents, models.AgentView{
			ID:         a.ID,
			Nickname:   a.Nickname,
			Seniority:  a.Seniority.String(),
			Capacity:   a.Capacity(),
			Load:       a.Load(),
			Assignable: a.Assignable,
		})
	}
	return ls
}

// assigned turns roster assignments into events and counts them.
func (r *Router) assigned(l *lane, done []roster.Assignment, now time.Time) []events.Envelope {
	if len(done) == 0 {
		return nil
	}
	metrics.AssignmentsTotal.WithLabelValues(l.name).Add(float64(len(done)))

	out := make([]events.Envelope, 0, len(done))
	for _, a := range done {
		out = append(out, events.NewEnvelope(events.TypeSessionAssigned, a.SessionID, now, events.SessionAssigned{
			SessionID: a.SessionID,
			AgentID:   a.AgentID,
			Lane:      l.name,
		}))
	}
	return out
}

func (r *Router) publish(ctx context.Context, pending []events.Envelope) {
	for _, env := range pending {
		if err := r.pub.Publish(ctx, env.Meta.Type, env); err != nil {
			r.log.Warn("event publish failed",
				slog.String("type", env.Meta.Type),
				slog.String("id", env.Meta.ID),
				slog.Any("error", err),
			)
		}
	}
}
