package plan

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func iptr(i int) *int { return &i }

func testGoal(weeksOut int, today time.Time) Goal {
	return Goal{
		Name:           "Spring Marathon",
		RaceDate:       today.AddDate(0, 0, weeksOut*7),
		RaceDistanceKm: 42.2,
		AvailableDays:  []int{1, 3, 5, 7},
		LongRunDay:     7,
	}
}

var testToday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

// TestPlanInsufficientLeadTime verifies that fewer than 4 weeks out is
// the single rejected case.
func TestPlanInsufficientLeadTime(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	for _, weeks := range []int{0, 1, 3} {
		_, err := p.Plan(testGoal(weeks, testToday), VolumeProfile{}, nil, testToday)
		if !errors.Is(err, ErrInsufficientLeadTime) {
			t.Errorf("weeks=%d: err = %v, want ErrInsufficientLeadTime", weeks, err)
		}
	}

	if _, err := p.Plan(testGoal(4, testToday), VolumeProfile{}, nil, testToday); err != nil {
		t.Errorf("weeks=4: unexpected error %v", err)
	}
}

// TestPhasePartition verifies the build/peak/taper split.
func TestPhasePartition(t *testing.T) {
	tests := []struct {
		weeks, build, peak, taper int
	}{
		{4, 3, 1, 0},
		{6, 4, 1, 1},
		{8, 6, 1, 1},
		{12, 8, 2, 2},
		{16, 12, 2, 2},
		{20, 16, 2, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d weeks", tt.weeks), func(t *testing.T) {
			build, peak, taper := phasePartition(tt.weeks)
			if build != tt.build || peak != tt.peak || taper != tt.taper {
				t.Errorf("phasePartition(%d) = (%d,%d,%d), want (%d,%d,%d)",
					tt.weeks, build, peak, taper, tt.build, tt.peak, tt.taper)
			}
			if build+peak+taper != tt.weeks {
				t.Errorf("partition does not cover all %d weeks", tt.weeks)
			}
		})
	}
}

// TestPlanOneSessionPerAvailableDay verifies each week has exactly one
// session per available day and the long-run slot is always a long run.
func TestPlanOneSessionPerAvailableDay(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	goal := testGoal(12, testToday)

	weeks, err := p.Plan(goal, VolumeProfile{}, nil, testToday)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 12 {
		t.Fatalf("got %d weeks, want 12", len(weeks))
	}

	for _, week := range weeks {
		if len(week.Sessions) != len(goal.AvailableDays) {
			t.Fatalf("week %d: %d sessions, want %d", week.WeekNumber, len(week.Sessions), len(goal.AvailableDays))
		}
		seen := map[int]bool{}
		for _, s := range week.Sessions {
			if seen[s.Day] {
				t.Errorf("week %d: day %d assigned twice", week.WeekNumber, s.Day)
			}
			seen[s.Day] = true
			if s.Day == goal.LongRunDay && s.SessionType != SessionLong {
				t.Errorf("week %d day %d: type %q, want long", week.WeekNumber, s.Day, s.SessionType)
			}
		}
	}
}

// TestPlanDayAssignmentRules walks the priority rules for a week-1 build
// week with days {1,3,5,7} and a Sunday long run: day 6 is unavailable,
// so no recovery slot appears; days 3 fall to quality, 1 and 5 to easy.
func TestPlanDayAssignmentRules(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	goal := testGoal(12, testToday)

	weeks, err := p.Plan(goal, VolumeProfile{}, nil, testToday)
	if err != nil {
		t.Fatal(err)
	}

	week1 := weeks[0]
	byDay := map[int]Session{}
	for _, s := range week1.Sessions {
		byDay[s.Day] = s
	}

	if got := byDay[7].SessionType; got != SessionLong {
		t.Errorf("day 7 = %q, want long", got)
	}
	// Week 1 is odd → the quality day is intervals.
	if got := byDay[3].SessionType; got != SessionInterval {
		t.Errorf("day 3 = %q, want interval", got)
	}
	if got := byDay[1].SessionType; got != SessionEasy {
		t.Errorf("day 1 = %q, want easy", got)
	}
	if got := byDay[5].SessionType; got != SessionEasy {
		t.Errorf("day 5 = %q, want easy", got)
	}
	for _, s := range week1.Sessions {
		if s.SessionType == SessionRecovery {
			t.Errorf("day %d: recovery assigned although day 6 is unavailable", s.Day)
		}
	}

	// Week 2 is even → day 3 alternates to tempo.
	for _, s := range weeks[1].Sessions {
		if s.Day == 3 && s.SessionType != SessionTempo {
			t.Errorf("week 2 day 3 = %q, want tempo", s.SessionType)
		}
	}
}

// TestPlanRecoveryBeforeLongRun verifies the day-before rule, including
// the Sunday wrap for a Monday long run.
func TestPlanRecoveryBeforeLongRun(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	goal := testGoal(8, testToday)
	goal.AvailableDays = []int{5, 6, 7}
	goal.LongRunDay = 7

	weeks, err := p.Plan(goal, VolumeProfile{}, nil, testToday)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range weeks[0].Sessions {
		if s.Day == 6 && s.SessionType != SessionRecovery {
			t.Errorf("day 6 = %q, want recovery before Sunday long run", s.SessionType)
		}
	}

	// Monday long run: Sunday wraps to recovery.
	goal.AvailableDays = []int{1, 4, 7}
	goal.LongRunDay = 1
	weeks, err = p.Plan(goal, VolumeProfile{}, nil, testToday)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range weeks[0].Sessions {
		if s.Day == 7 && s.SessionType != SessionRecovery {
			t.Errorf("day 7 = %q, want recovery (wrap before Monday long run)", s.SessionType)
		}
	}
}

// TestPlanVolumeMultipliers verifies the weekly volume shape: recovery
// every 4th build week, full peak volume, stepped taper.
func TestPlanVolumeMultipliers(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	goal := testGoal(12, testToday)
	goal.AvailableDays = []int{1} // easy run only, duration = 45 * mult

	weeks, err := p.Plan(goal, VolumeProfile{}, nil, testToday)
	if err != nil {
		t.Fatal(err)
	}

	// 12 weeks → build 1-8, peak 9-10, taper 11-12.
	wantMult := map[int]float64{
		1:  0.7 + 0.3*1.0/8,
		4:  0.7, // recovery week
		8:  0.7, // w%4==0 again
		7:  0.7 + 0.3*7.0/8,
		9:  1.0,
		10: 1.0,
		11: 0.5 + 0.2*1, // weeks-11
		12: 0.5,
	}
	for weekNum, mult := range wantMult {
		got := weeks[weekNum-1].Sessions[0].DurationMinutes
		want := int(45 * mult)
		if got != want {
			t.Errorf("week %d duration = %d, want %d (mult %.3f)", weekNum, got, want, mult)
		}
	}

	for _, tt := range []struct {
		week  int
		phase string
	}{{1, PhaseBuild}, {8, PhaseBuild}, {9, PhasePeak}, {10, PhasePeak}, {11, PhaseTaper}, {12, PhaseTaper}} {
		if got := weeks[tt.week-1].Phase; got != tt.phase {
			t.Errorf("week %d phase = %q, want %q", tt.week, got, tt.phase)
		}
	}
}

// TestTargetPaces verifies pace derivation from a target time and the
// default base pace fallback.
func TestTargetPaces(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	goal := Goal{RaceDistanceKm: 10, TargetTimeSeconds: iptr(3000)} // 5:00/km
	paces := p.TargetPaces(goal)
	want := map[string]int{
		SessionEasy:     375, // 300 * 1.25
		SessionLong:     360,
		SessionTempo:    324,
		SessionInterval: 285,
		SessionRecovery: 405,
	}
	for sessionType, w := range want {
		if paces[sessionType] != w {
			t.Errorf("pace[%s] = %d, want %d", sessionType, paces[sessionType], w)
		}
	}

	// No target time → 330 s/km base.
	paces = p.TargetPaces(Goal{RaceDistanceKm: 10})
	if got := paces[SessionTempo]; got != 356 {
		t.Errorf("default tempo pace = %d, want 356", got)
	}
}

// TestPlanIdempotent verifies identical inputs produce identical
// (week, day, type) assignments.
func TestPlanIdempotent(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	goal := testGoal(10, testToday)
	profile := VolumeProfile{HasHistory: true, WeeklyVolumeKm: 35, LongestRunKm: 18, AvgPacePerKm: 345}

	first, err := p.Plan(goal, profile, nil, testToday)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Plan(goal, profile, nil, testToday)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("week counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if len(first[i].Sessions) != len(second[i].Sessions) {
			t.Fatalf("week %d session counts differ", i+1)
		}
		for j := range first[i].Sessions {
			a, b := first[i].Sessions[j], second[i].Sessions[j]
			if a.Day != b.Day || a.SessionType != b.SessionType || a.DurationMinutes != b.DurationMinutes {
				t.Errorf("week %d session %d differs: %+v vs %+v", i+1, j, a, b)
			}
		}
	}
}

// TestVolumeScale verifies history-based duration biasing and its clamps.
func TestVolumeScale(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	tests := []struct {
		name    string
		profile VolumeProfile
		want    float64
	}{
		{"no history", VolumeProfile{}, 1.0},
		{"at reference", VolumeProfile{HasHistory: true, WeeklyVolumeKm: 20}, 1.0},
		{"above reference", VolumeProfile{HasHistory: true, WeeklyVolumeKm: 24}, 1.2},
		{"clamped high", VolumeProfile{HasHistory: true, WeeklyVolumeKm: 100}, 1.25},
		{"clamped low", VolumeProfile{HasHistory: true, WeeklyVolumeKm: 5}, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.volumeScale(tt.profile); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("volumeScale = %.3f, want %.3f", got, tt.want)
			}
		})
	}
}

// TestFormatPace verifies pace rendering.
func TestFormatPace(t *testing.T) {
	tests := []struct {
		pace int
		want string
	}{
		{330, "5:30/km"},
		{255, "4:15/km"},
		{600, "10:00/km"},
		{0, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatPace(tt.pace); got != tt.want {
			t.Errorf("FormatPace(%d) = %q, want %q", tt.pace, got, tt.want)
		}
	}
}
