package scheduler_test

import (
	"chat-router/models"
	"chat-router/scheduler"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestShiftOf(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
	}

	tests := map[string]struct {
		input    time.Time
		expected models.Shift
	}{
		"Midnight":         {input: at(0, 0), expected: models.Night},
		"BeforeDay":        {input: at(7, 59), expected: models.Night},
		"DayStart":         {input: at(8, 0), expected: models.Day},
		"Midday":           {input: at(12, 30), expected: models.Day},
		"DayEnd":           {input: at(15, 59), expected: models.Day},
		"EveningStart":     {input: at(16, 0), expected: models.Evening},
		"LateEvening":      {input: at(23, 59), expected: models.Evening},
		"EarlyMorningHour": {input: at(3, 0), expected: models.Night},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scheduler.ShiftOf(tt.input, time.UTC))
		})
	}
}

func TestShiftOf_EvaluatesInZone(t *testing.T) {
	// 14:00 UTC is 06:00 PST (Night) and 09:00 EST (Day).
	instant := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, models.Day, scheduler.ShiftOf(instant, time.UTC))
	assert.Equal(t, models.Night, scheduler.ShiftOf(instant, mustLoadLocation(t, "America/Los_Angeles")))
	assert.Equal(t, models.Day, scheduler.ShiftOf(instant, mustLoadLocation(t, "America/New_York")))
	assert.Equal(t, models.Day, scheduler.ShiftOf(instant, nil), "nil keeps the instant's zone")
}

func TestDefaultShift(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected models.Shift
		ok       bool
	}{
		"Day":          {input: "Day", expected: models.Day, ok: true},
		"LowerEvening": {input: "evening", expected: models.Evening, ok: true},
		"Night":        {input: " Night ", expected: models.Night, ok: true},
		"OverflowIsNo": {input: "Overflow", expected: models.Day, ok: false},
		"Unknown":      {input: "Brunch", expected: models.Day, ok: false},
		"Empty":        {input: "", expected: models.Day, ok: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := scheduler.DefaultShift(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNextChange(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
	}

	tests := map[string]struct {
		now       time.Time
		wantAt    time.Time
		wantShift models.Shift
	}{
		"NightToDay":         {now: at(3, 0), wantAt: at(8, 0), wantShift: models.Day},
		"DayToEvening":       {now: at(9, 15), wantAt: at(16, 0), wantShift: models.Evening},
		"EveningToNight":     {now: at(20, 0), wantAt: at(24, 0), wantShift: models.Night},
		"OnBoundaryIsStrict": {now: at(8, 0), wantAt: at(16, 0), wantShift: models.Evening},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			gotAt, gotShift := scheduler.NextChange(tt.now, time.UTC)
			assert.True(t, tt.wantAt.Equal(gotAt), "got %v, want %v", gotAt, tt.wantAt)
			assert.Equal(t, tt.wantShift, gotShift)
		})
	}
}

func TestNextChange_DSTSpringForward(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")
	// March 8, 2026: clocks jump from 2:00 to 3:00 AM.
	now := time.Date(2026, 3, 8, 0, 30, 0, 0, ny)

	gotAt, gotShift := scheduler.NextChange(now, ny)
	assert.Equal(t, models.Day, gotShift)
	assert.Equal(t, 8, gotAt.In(ny).Hour())
	assert.Equal(t, 6*time.Hour+30*time.Minute, gotAt.Sub(now), "one wall-clock hour is skipped")
}

func TestLoadLocation(t *testing.T) {
	tests := map[string]struct {
		code     string
		expected string
		wantErr  bool
	}{
		"Pacific":  {code: "PT", expected: "America/Los_Angeles"},
		"Eastern":  {code: "ET", expected: "America/New_York"},
		"Central":  {code: "CT", expected: "America/Chicago"},
		"Mountain": {code: "MT", expected: "America/Denver"},
		"UTC":      {code: "UTC", expected: "UTC"},
		"IANA":     {code: "Asia/Tokyo", expected: "Asia/Tokyo"},
		"Empty":    {code: "", expected: "Local"},
		"Local":    {code: "Local", expected: "Local"},
		"Unknown":  {code: "Mars/Olympus", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			loc, err := scheduler.LoadLocation(tt.code)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, loc.String())
		})
	}
}

func TestNewDirectory(t *testing.T) {
	teams := models.DefaultTeams()

	tests := map[string]struct {
		teams   []models.Team
		wantErr string
	}{
		"DefaultTeams": {teams: teams},
		"MissingNight": {
			teams:   []models.Team{teams[0], teams[1], teams[3]},
			wantErr: "no team for shift Night",
		},
		"DuplicateShift": {
			teams:   append([]models.Team{teams[0]}, teams...),
			wantErr: "shift Day is staffed by more than one team",
		},
		"EmptyTeam": {
			teams:   []models.Team{{Name: "Ghosts", Shift: models.Day}, teams[1], teams[2], teams[3]},
			wantErr: `team "Ghosts" has no agents`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := scheduler.NewDirectory(tt.teams)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, d.Teams(), 4)
		})
	}
}

func TestDirectory_TeamReturnsFreshAgents(t *testing.T) {
	d, err := scheduler.NewDirectory(models.DefaultTeams())
	require.NoError(t, err)

	first := d.Team(models.Day)
	require.Len(t, first.Agents, 4)
	first.Agents[0].Sessions["s1"] = struct{}{}
	first.Agents[0].Assignable = false

	second := d.Team(models.Day)
	assert.Zero(t, second.Agents[0].Load())
	assert.True(t, second.Agents[0].Assignable)
	assert.Equal(t, "TeamLeadA", second.Agents[0].ID)
	assert.Equal(t, 5+8+8+4, second.Capacity())
}

func TestDirectory_DefaultCapacities(t *testing.T) {
	d, err := scheduler.NewDirectory(models.DefaultTeams())
	require.NoError(t, err)

	tests := map[models.Shift]int{
		models.Day:      25,
		models.Evening:  6 + 8 + 4 + 4,
		models.Night:    16,
		models.Overflow: 24,
	}
	for shift, want := range tests {
		t.Run(shift.String(), func(t *testing.T) {
			assert.Equal(t, want, d.Team(shift).Capacity())
		})
	}
}
