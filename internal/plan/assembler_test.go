package plan

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestAssembler() *Assembler {
	return NewAssembler(NewPlanner(DefaultConfig()))
}

// TestMostRecentMonday verifies anchor computation for every weekday.
func TestMostRecentMonday(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		if got := MostRecentMonday(d); !got.Equal(monday) {
			t.Errorf("MostRecentMonday(%s) = %s, want %s",
				d.Format("2006-01-02"), got.Format("2006-01-02"), monday.Format("2006-01-02"))
		}
	}
}

// TestAssembleDating verifies scheduled dates follow the Monday anchor
// and week/day offsets.
func TestAssembleDating(t *testing.T) {
	a := newTestAssembler()
	today := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC) // Wednesday
	goal := testGoal(8, today)

	res, err := a.Assemble(goal, VolumeProfile{}, nil, nil, "", today)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sessions) == 0 {
		t.Fatal("no sessions assembled")
	}

	anchor := MostRecentMonday(today) // 2026-03-02
	for _, s := range res.Sessions {
		// Reconstruct the expected date from week/day and compare.
		if s.ScheduledDate.Weekday() == time.Monday && s.WeekNumber == 1 {
			t.Errorf("week 1 Monday (%s) precedes today and must be dropped", s.ScheduledDate)
		}
		wantFirst := anchor
		if s.ScheduledDate.Before(wantFirst) {
			t.Errorf("session %s scheduled before anchor %s", s.ScheduledDate, wantFirst)
		}
		if s.ScheduledDate.Before(today) {
			t.Errorf("session on %s precedes today %s", s.ScheduledDate.Format("2006-01-02"), today.Format("2006-01-02"))
		}
		if s.ScheduledDate.After(goal.RaceDate) {
			t.Errorf("session on %s is after race date %s", s.ScheduledDate.Format("2006-01-02"), goal.RaceDate.Format("2006-01-02"))
		}
	}
}

// TestAssembleClipsElapsedSlots verifies week-1 slots earlier in the
// current week are silently dropped, not errors.
func TestAssembleClipsElapsedSlots(t *testing.T) {
	a := newTestAssembler()
	today := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC) // Friday
	goal := testGoal(6, today)
	goal.AvailableDays = []int{1, 3, 5, 7} // Mon and Wed of week 1 already elapsed

	res, err := a.Assemble(goal, VolumeProfile{}, nil, nil, "", today)
	if err != nil {
		t.Fatal(err)
	}

	var week1Days []int
	for _, s := range res.Sessions {
		if s.WeekNumber == 1 {
			week1Days = append(week1Days, int(s.ScheduledDate.Weekday()))
		}
	}
	// Only Friday (5) and Sunday (0) remain from week 1.
	if len(week1Days) != 2 {
		t.Errorf("week 1 kept %d sessions (%v), want 2", len(week1Days), week1Days)
	}
}

// TestAssembleEmptyPlanFallsBack verifies an empty external plan triggers
// the deterministic planner instead of failing.
func TestAssembleEmptyPlanFallsBack(t *testing.T) {
	a := newTestAssembler()
	goal := testGoal(8, testToday)

	res, err := a.Assemble(goal, VolumeProfile{}, nil, []Week{}, "", testToday)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sessions) == 0 {
		t.Error("fallback produced no sessions")
	}
	if res.Narrative == "" {
		t.Error("fallback produced no narrative")
	}
}

// TestAssembleInsufficientLeadTime verifies the planner error propagates
// through the fallback path.
func TestAssembleInsufficientLeadTime(t *testing.T) {
	a := newTestAssembler()
	goal := testGoal(2, testToday)

	_, err := a.Assemble(goal, VolumeProfile{}, nil, nil, "", testToday)
	if !errors.Is(err, ErrInsufficientLeadTime) {
		t.Errorf("err = %v, want ErrInsufficientLeadTime", err)
	}
}

// TestAssembleExternalPlan verifies an externally supplied plan of the
// same shape is dated as-is and its narrative used verbatim.
func TestAssembleExternalPlan(t *testing.T) {
	a := newTestAssembler()
	goal := testGoal(6, testToday)

	pace := 300
	external := []Week{
		{
			WeekNumber: 2,
			Phase:      PhaseBuild,
			Sessions: []Session{
				{Day: 3, SessionType: SessionTempo, DurationMinutes: 40, Intensity: "hard", PacePerKm: &pace, TerrainType: "road"},
			},
		},
	}

	res, err := a.Assemble(goal, VolumeProfile{}, nil, external, "coach says: trust the plan", testToday)
	if err != nil {
		t.Fatal(err)
	}
	if res.Narrative != "coach says: trust the plan" {
		t.Errorf("narrative = %q, want external text verbatim", res.Narrative)
	}
	if len(res.Sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(res.Sessions))
	}
	s := res.Sessions[0]
	want := MostRecentMonday(testToday).AddDate(0, 0, 7+2) // week 2, day 3
	if !s.ScheduledDate.Equal(want) {
		t.Errorf("scheduled = %s, want %s", s.ScheduledDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
	if s.Status != "planned" {
		t.Errorf("status = %q, want planned", s.Status)
	}
}

// TestNarrativeStructure verifies the templated explanation cites the
// phase structure and target paces.
func TestNarrativeStructure(t *testing.T) {
	a := newTestAssembler()
	goal := testGoal(12, testToday)
	goal.TargetTimeSeconds = iptr(3 * 3600) // 3h marathon

	weeks, err := a.planner.Plan(goal, VolumeProfile{HasHistory: true, WeeklyVolumeKm: 40, LongestRunKm: 20}, nil, testToday)
	if err != nil {
		t.Fatal(err)
	}
	n := a.Narrative(goal, VolumeProfile{HasHistory: true, WeeklyVolumeKm: 40, LongestRunKm: 20}, nil, weeks)

	for _, want := range []string{"12-week plan", "Build", "Taper", "Target paces", "40.0 km/week"} {
		if !strings.Contains(n, want) {
			t.Errorf("narrative missing %q", want)
		}
	}
}
