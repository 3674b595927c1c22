package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-router/events"
	"chat-router/metrics"
	"chat-router/models"
	"chat-router/scheduler"
)

// Maintenance task names, used as metric labels.
const (
	TaskLiveness    = "liveness"
	TaskExpire      = "expire"
	TaskPromote     = "promote"
	TaskShiftChange = "shift_change"
)

// RunMaintenance runs one round of every maintenance task in order. A task
// that panics is logged and counted; the remaining tasks still run.
func (r *Router) RunMaintenance(ctx context.Context) {
	r.runTask(TaskLiveness, func() { r.TickLiveness() })
	r.runTask(TaskExpire, func() { r.TickExpireAndReassign(ctx) })
	r.runTask(TaskPromote, func() { r.TickPromoteWaiting(ctx) })
	r.runTask(TaskShiftChange, func() { r.TickShiftChange(ctx) })
}

func (r *Router) runTask(name string, fn func()) {
	start := time.Now()
	defer func() {
		metrics.TickDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if p := recover(); p != nil {
			metrics.TickFailuresTotal.WithLabelValues(name).Inc()
			r.log.Error("maintenance task failed",
				slog.String("task", name),
				slog.Any("error", fmt.Errorf("panic: %v", p)),
			)
		}
	}()
	fn()
}

// due reports whether a gated task should run now and, if so, records the
// run. The state lock must be held for writing.
func (r *Router) due(last *time.Time, interval time.Duration, now time.Time) bool {
	if now.Before(last.Add(interval)) {
		return false
	}
	*last = now
	return true
}

// TickLiveness bumps the retry count of live chats in both lanes, at most
// once per liveness interval.
func (r *Router) TickLiveness() {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.due(&r.lastLiveness, r.settings.CheckLiveInterval, now) {
		return
	}

	for _, l := range []*lane{r.primary, r.overflow} {
		if bumped := checkLiveness(l, now); bumped > 0 {
			r.log.Debug("liveness checked", slog.String("lane", l.name), slog.Int("bumped", bumped))
		}
	}
}

func checkLiveness(l *lane, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.CheckLiveness(now)
}

// TickExpireAndReassign drops expired and retry-exhausted chats from both
// lanes and frees their agents, at most once per expiry interval.
func (r *Router) TickExpireAndReassign(ctx context.Context) {
	r.publish(ctx, r.expire())
}

func (r *Router) expire() []events.Envelope {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.due(&r.lastExpiry, r.settings.CheckExpiredInterval, now) {
		return nil
	}

	var pending []events.Envelope
	for _, l := range []*lane{r.primary, r.overflow} {
		pending = append(pending, r.reap(l, now)...)
	}
	return pending
}

func (r *Router) reap(l *lane, now time.Time) []events.Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()

	expired := l.queue.ReapExpired(now)
	if len(expired) == 0 {
		l.observe()
		return nil
	}

	out := make([]events.Envelope, 0, len(expired))
	for _, s := range expired {
		out = append(out, events.NewEnvelope(events.TypeSessionClosed, s.ID, now, events.SessionClosed{
			SessionID: s.ID,
			Lane:      l.name,
			Reason:    events.ReasonExpired,
			AgentID:   s.AssignedAgent,
		}))
	}
	l.roster.UnassignMany(expired)
	l.observe()

	metrics.SessionsClosedTotal.WithLabelValues(l.name, events.ReasonExpired).Add(float64(len(expired)))
	r.log.Info("expired chats removed", slog.String("lane", l.name), slog.Int("count", len(expired)))
	return out
}

// TickPromoteWaiting fills free slots in both lanes. Live chats still without
// an agent are offered first, then waiting chats are promoted in arrival
// order and offered in turn. It is not gated.
func (r *Router) TickPromoteWaiting(ctx context.Context) {
	r.publish(ctx, r.promoteAll())
}

func (r *Router) promoteAll() []events.Envelope {
	now := r.now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []events.Envelope
	for _, l := range []*lane{r.primary, r.overflow} {
		pending = append(pending, r.promote(l, now)...)
	}
	return pending
}

func (r *Router) promote(l *lane, now time.Time) []events.Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := r.assigned(l, l.roster.AssignMany(l.queue.Unassigned()), now)

	promoted := l.queue.PromoteWaiting(now)
	if len(promoted) > 0 {
		r.log.Debug("waiting chats promoted", slog.String("lane", l.name), slog.Int("count", len(promoted)))
		out = append(out, r.assigned(l, l.roster.AssignMany(promoted), now)...)
	}
	l.observe()
	return out
}

// TickShiftChange rotates the primary team when the wall clock has entered a
// new shift and auto-assignment is on, at most once per change interval.
// Outgoing agents keep their chats but take no new ones; agents that have
// drained are removed on every run.
func (r *Router) TickShiftChange(ctx context.Context) {
	r.publish(ctx, r.changeShift())
}

func (r *Router) changeShift() []events.Envelope {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.due(&r.lastShiftChange, r.settings.CheckChangeInterval, now) {
		return nil
	}

	var pending []events.Envelope
	if shift := scheduler.ShiftOf(now, r.settings.Location); r.settings.AutoAssign && shift != r.team.Shift {
		pending = append(pending, r.rotate(shift, now))
	}

	if removed := drain(r.primary); len(removed) > 0 {
		metrics.AgentsDrainedTotal.Add(float64(len(removed)))
		r.log.Info("drained agents removed", slog.Any("agents", removed))
	}
	return pending
}

// rotate installs the team for shift on the primary lane. The state lock
// must be held for writing.
func (r *Router) rotate(shift models.Shift, now time.Time) events.Envelope {
	from := r.team
	r.team = r.dir.Team(shift)
	capacity := restaff(r.primary, r.team)

	metrics.ShiftChangesTotal.Inc()
	r.log.Info("shift changed",
		slog.String("from", from.Shift.String()),
		slog.String("to", shift.String()),
		slog.String("team", r.team.Name),
		slog.Int("capacity", capacity),
	)

	return events.NewEnvelope(events.TypeShiftChanged, "", now, events.ShiftChanged{
		From:     from.Shift.String(),
		To:       shift.String(),
		Team:     r.team.Name,
		Capacity: capacity,
	})
}

// restaff takes the lane's agents out of rotation, installs team and resizes
// the queue. It returns the new team capacity.
func restaff(l *lane, team models.Team) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roster.SetUnassignable()
	l.roster.AddAgents(team.Agents)
	l.queue.SetCapacity(l.roster.Capacity())
	l.observe()
	return l.queue.TeamCapacity()
}

func drain(l *lane) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := l.roster.RemoveDrained()
	l.observe()
	return removed
}
