// Package scheduler maps wall-clock time onto support shifts and hands out
// the team that staffs each one.
package scheduler

import (
	"fmt"
	"strings"
	"time"

	"chat-router/models"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// shiftStarts holds the local start of each rotating shift.
var shiftStarts = []struct {
	shift    models.Shift
	schedule cron.Schedule
}{
	{models.Day, mustSchedule("0 8 * * *")},
	{models.Evening, mustSchedule("0 16 * * *")},
	{models.Night, mustSchedule("0 0 * * *")},
}

func mustSchedule(spec string) cron.Schedule {
	sched, err := cronParser.Parse(spec)
	if err != nil {
		panic(fmt.Sprintf("scheduler: bad shift spec %q: %v", spec, err))
	}
	return sched
}

// ShiftOf returns the shift owning t in loc: Day from 08:00 to 16:00,
// Evening until midnight, Night otherwise. A nil loc means t's own zone.
func ShiftOf(t time.Time, loc *time.Location) models.Shift {
	if loc != nil {
		t = t.In(loc)
	}
	switch h := t.Hour(); {
	case h >= 8 && h < 16:
		return models.Day
	case h >= 16:
		return models.Evening
	default:
		return models.Night
	}
}

// DefaultShift resolves a configured starting shift. Only the rotating
// shifts are valid; the overflow team is never current.
func DefaultShift(name string) (models.Shift, bool) {
	s, ok := models.ParseShift(name)
	if !ok || s == models.Overflow {
		return models.Day, false
	}
	return s, true
}

// NextChange returns the next shift boundary strictly after now, evaluated in
// loc, and the shift that starts there.
func NextChange(now time.Time, loc *time.Location) (time.Time, models.Shift) {
	if loc != nil {
		now = now.In(loc)
	}

	var (
		next  time.Time
		shift models.Shift
	)
	for _, start := range shiftStarts {
		at := start.schedule.Next(now)
		if next.IsZero() || at.Before(next) {
			next, shift = at, start.shift
		}
	}
	return next, shift
}

// LoadLocation resolves a time zone code. The US codes PT, ET, CT and MT are
// accepted alongside UTC, "Local" and any IANA name such as Europe/London.
// An empty code means the process's local zone.
func LoadLocation(code string) (*time.Location, error) {
	code = strings.TrimSpace(code)

	switch code {
	case "", "Local":
		return time.Local, nil
	case "PT":
		return time.LoadLocation("America/Los_Angeles")
	case "ET":
		return time.LoadLocation("America/New_York")
	case "CT":
		return time.LoadLocation("America/Chicago")
	case "MT":
		return time.LoadLocation("America/Denver")
	case "UTC":
		return time.UTC, nil
	default:
		loc, err := time.LoadLocation(code)
		if err != nil {
			return nil, fmt.Errorf("unknown time zone %q: %w", code, err)
		}
		return loc, nil
	}
}

// Directory is the fixed set of teams, one per shift, built once at startup.
type Directory struct {
	teams map[models.Shift]models.Team
}

// NewDirectory indexes teams by shift. Every rotating shift and the overflow
// team must be staffed exactly once.
func NewDirectory(teams []models.Team) (*Directory, error) {
	d := &Directory{teams: make(map[models.Shift]models.Team, len(teams))}
	for _, t := range teams {
		if _, dup := d.teams[t.Shift]; dup {
			return nil, fmt.Errorf("shift %s is staffed by more than one team", t.Shift)
		}
		if len(t.Agents) == 0 {
			return nil, fmt.Errorf("team %q has no agents", t.Name)
		}
		d.teams[t.Shift] = t
	}

	for _, s := range []models.Shift{models.Day, models.Evening, models.Night, models.Overflow} {
		if _, ok := d.teams[s]; !ok {
			return nil, fmt.Errorf("no team for shift %s", s)
		}
	}
	return d, nil
}

// Team returns the team for shift with fresh agent records, so installing it
// into a roster never aliases an earlier rotation.
func (d *Directory) Team(shift models.Shift) models.Team {
	t := d.teams[shift]
	agents := make([]models.Agent, len(t.Agents))
	for i, a := range t.Agents {
		agents[i] = models.NewAgent(a.ID, a.Nickname, a.Seniority)
	}
	t.Agents = agents
	return t
}

// Teams returns every team ordered Day, Evening, Night, Overflow.
func (d *Directory) Teams() []models.Team {
	out := make([]models.Team, 0, len(d.teams))
	for _, s := range []models.Shift{models.Day, models.Evening, models.Night, models.Overflow} {
		out = append(out, d.Team(s))
	}
	return out
}
