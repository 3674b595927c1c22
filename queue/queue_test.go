package queue_test

import (
	"chat-router/models"
	"chat-router/queue"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newQueue(capacity int) *queue.Queue {
	q := queue.New(queue.Settings{MaxRetry: 3, ExpiryHorizon: time.Minute})
	q.SetCapacity(capacity)
	return q
}

func TestSetCapacity(t *testing.T) {
	tests := map[string]struct {
		capacity    int
		wantCeiling int
	}{
		"Zero":       {capacity: 0, wantCeiling: 0},
		"Even":       {capacity: 4, wantCeiling: 6},
		"OddFloors":  {capacity: 5, wantCeiling: 7},
		"TeamA":      {capacity: 25, wantCeiling: 37},
		"NegativeIs": {capacity: -3, wantCeiling: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			q := newQueue(tt.capacity)
			assert.Equal(t, tt.wantCeiling, q.WaitCeiling())
		})
	}
}

func TestAdmit_CeilingNeverExceeded(t *testing.T) {
	q := newQueue(4)

	var live, waiting, refused int
	for i := range 10 {
		s := q.Admit(fmt.Sprintf("cust-%d", i), t0)
		switch {
		case s == nil:
			refused++
		case s.State == models.Live:
			live++
		case s.State == models.Waiting:
			waiting++
		}
		assert.LessOrEqual(t, q.LiveCount(), q.TeamCapacity())
		assert.LessOrEqual(t, q.LiveCount()+q.WaitingCount(), q.WaitCeiling())
	}

	assert.Equal(t, 4, live)
	assert.Equal(t, 2, waiting)
	assert.Equal(t, 4, refused)
	assert.True(t, q.IsSaturated())
}

func TestAdmit_Messages(t *testing.T) {
	q := newQueue(2)

	live := q.Admit("Ana", t0)
	require.NotNil(t, live)
	q.Admit("Al", t0)
	assert.Equal(t, []string{
		"System: Hi Ana! Welcome to our chat support.",
		"Welcome, what can we do for you today?",
	}, live.Conversation)
	assert.Equal(t, t0.Add(time.Minute), live.ExpiresAt)

	waiting := q.Admit("Ben", t0)
	require.NotNil(t, waiting)
	assert.Equal(t, models.Waiting, waiting.State)
	assert.Equal(t, "Please wait as soon as our available agent will contact you.", waiting.Conversation[1])
	assert.True(t, waiting.ExpiresAt.IsZero())
	assert.NotEqual(t, live.ID, waiting.ID)
}

func TestPostMessage(t *testing.T) {
	q := newQueue(2)
	live := q.Admit("Ana", t0)
	q.Admit("Al", t0)
	waiting := q.Admit("Ben", t0)
	require.Equal(t, models.Waiting, waiting.State)
	live.Retry = 2

	later := t0.Add(30 * time.Second)
	got := q.PostMessage(live.ID, "my order is late", later)
	require.NotNil(t, got)
	assert.Len(t, got.Conversation, 3)
	assert.Equal(t, "You: my order is late", got.Conversation[2])
	assert.Equal(t, later.Add(time.Minute), got.ExpiresAt)
	assert.True(t, got.ExpiresAt.After(later))
	assert.Zero(t, got.Retry)

	before := len(waiting.Conversation)
	assert.Nil(t, q.PostMessage(waiting.ID, "hello?", later))
	assert.Len(t, waiting.Conversation, before)
	assert.Nil(t, q.PostMessage("unknown", "hello?", later))
}

func TestEnd_Live(t *testing.T) {
	q := newQueue(2)
	s := q.Admit("Ana", t0)

	got := q.End(s.ID)
	require.NotNil(t, got)
	assert.Equal(t, models.Closed, got.State)
	assert.Zero(t, q.LiveCount())
	assert.Nil(t, q.End(s.ID))
	assert.Nil(t, q.End("unknown"))
}

func TestEnd_WaitingIsDroppedOnNextPass(t *testing.T) {
	q := newQueue(2)
	live := q.Admit("Ana", t0)
	q.Admit("Al", t0)
	first := q.Admit("Ben", t0)
	require.Equal(t, models.Waiting, first.State)

	got := q.End(first.ID)
	require.NotNil(t, got)
	assert.Equal(t, models.Tombstoned, got.State)
	assert.Equal(t, 3, got.Retry)
	assert.Equal(t, 1, q.WaitingCount(), "waiting count shrinks only on the next pass")
	assert.Nil(t, q.End(first.ID), "a tombstone is ended once")

	q.End(live.ID)
	promoted := q.PromoteWaiting(t0)
	assert.Empty(t, promoted)
	assert.Zero(t, q.WaitingCount())
	assert.Equal(t, 1, q.LiveCount())
}

func TestEnd_WaitingReapedByExpiryPass(t *testing.T) {
	q := newQueue(2)
	q.Admit("Ana", t0)
	q.Admit("Ben", t0)
	w := q.Admit("Cid", t0)
	require.Equal(t, models.Waiting, w.State)

	q.End(w.ID)
	reaped := q.ReapExpired(t0)
	assert.Empty(t, reaped, "tombstones are discarded, not returned")
	assert.Zero(t, q.WaitingCount())
	assert.Equal(t, 2, q.LiveCount())
}

// CheckLiveness counts sessions that have not expired yet. This mirrors the
// production behaviour, which reads as inverted relative to a near-expiry
// warning; the test pins it so a change is deliberate.
func TestCheckLiveness_BumpsOnlyUnexpired(t *testing.T) {
	q := newQueue(2)
	fresh := q.Admit("Ana", t0)
	stale := q.Admit("Ben", t0.Add(-2*time.Minute))

	bumped := q.CheckLiveness(t0)
	assert.Equal(t, 1, bumped)
	assert.Equal(t, 1, fresh.Retry)
	assert.Zero(t, stale.Retry)
}

func TestReapExpired(t *testing.T) {
	q := newQueue(3)
	expired := q.Admit("Ana", t0.Add(-2*time.Minute))
	exhausted := q.Admit("Ben", t0)
	healthy := q.Admit("Cid", t0)
	exhausted.Retry = 3

	reaped := q.ReapExpired(t0)
	require.Len(t, reaped, 2)
	assert.Equal(t, expired.ID, reaped[0].ID)
	assert.Equal(t, exhausted.ID, reaped[1].ID)
	assert.Equal(t, 1, q.LiveCount())

	_, ok := q.Get(healthy.ID)
	assert.True(t, ok)

	assert.Empty(t, q.ReapExpired(t0), "an expired session is returned exactly once")
	_, ok = q.Get(expired.ID)
	assert.False(t, ok)
}

func TestReapExpired_RetryExhaustionAfterLivenessChecks(t *testing.T) {
	q := newQueue(1)
	s := q.Admit("Ana", t0)

	for i := range 3 {
		q.CheckLiveness(t0.Add(time.Duration(i) * time.Second))
	}
	reaped := q.ReapExpired(t0.Add(5 * time.Second))
	require.Len(t, reaped, 1)
	assert.Equal(t, s.ID, reaped[0].ID)
}

func TestPromoteWaiting(t *testing.T) {
	tests := map[string]struct {
		capacity     int
		admit        int
		end          int
		wantPromoted int
		wantWaiting  int
	}{
		"NoWaiting":         {capacity: 4, admit: 3, end: 0, wantPromoted: 0, wantWaiting: 0},
		"NoFreeSlots":       {capacity: 2, admit: 3, end: 0, wantPromoted: 0, wantWaiting: 1},
		"OneSlot":           {capacity: 2, admit: 3, end: 1, wantPromoted: 1, wantWaiting: 0},
		"MoreSlotsThanWait": {capacity: 4, admit: 6, end: 3, wantPromoted: 2, wantWaiting: 0},
		"FewerSlotsInOrder": {capacity: 4, admit: 6, end: 1, wantPromoted: 1, wantWaiting: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			q := newQueue(tt.capacity)
			var admitted []*models.ChatSession
			for i := range tt.admit {
				admitted = append(admitted, q.Admit(fmt.Sprintf("c%d", i), t0))
			}
			for i := range tt.end {
				q.End(admitted[i].ID)
			}

			later := t0.Add(10 * time.Second)
			promoted := q.PromoteWaiting(later)
			assert.Len(t, promoted, tt.wantPromoted)
			assert.Equal(t, tt.wantWaiting, q.WaitingCount())
			assert.LessOrEqual(t, q.LiveCount(), q.TeamCapacity())

			for i, s := range promoted {
				assert.Equal(t, admitted[tt.capacity+i].ID, s.ID, "promotion is FIFO")
				assert.Equal(t, models.Live, s.State)
				assert.Equal(t, later.Add(time.Minute), s.ExpiresAt)
				assert.Equal(t, "Welcome, what can we do for you today?", s.Conversation[len(s.Conversation)-1])
			}
		})
	}
}

func TestUnassigned(t *testing.T) {
	q := newQueue(3)
	a := q.Admit("Ana", t0)
	b := q.Admit("Ben", t0)
	c := q.Admit("Cid", t0)
	b.AssignedAgent = "JuniorA"

	got := q.Unassigned()
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, c.ID, got[1].ID)
}

func TestLiveAndWaitingNeverOverlap(t *testing.T) {
	q := newQueue(2)
	for i := range 3 {
		q.Admit(fmt.Sprintf("c%d", i), t0)
	}
	q.End(q.Live()[0].ID)
	q.PromoteWaiting(t0)

	seen := make(map[string]bool)
	for _, s := range q.Live() {
		seen[s.ID] = true
	}
	for _, s := range q.Waiting() {
		assert.False(t, seen[s.ID], "session %s is both live and waiting", s.ID)
	}
}

func TestGet(t *testing.T) {
	q := newQueue(2)
	live := q.Admit("Ana", t0)
	q.Admit("Bob", t0)
	waiting := q.Admit("Ben", t0)
	require.NotNil(t, waiting)

	got, ok := q.Get(live.ID)
	require.True(t, ok)
	assert.Equal(t, models.Live, got.State)

	got, ok = q.Get(waiting.ID)
	require.True(t, ok)
	assert.Equal(t, models.Waiting, got.State)

	_, ok = q.Get("missing")
	assert.False(t, ok)

	q.End(live.ID)
	_, ok = q.Get(live.ID)
	assert.False(t, ok)
}
