package plan

import (
	"fmt"
	"time"

	"github.com/claude/stride/internal/load"
	"github.com/claude/stride/internal/metrics"
	"github.com/claude/stride/internal/models"
)

// Assembler turns abstract plan weeks into concrete dated session records.
// Persistence of the result (and the archive-then-insert replacement of
// any previous plan) belongs to the storage layer.
type Assembler struct {
	planner *Planner
}

// NewAssembler creates an Assembler backed by the given planner for the
// empty-plan fallback path.
func NewAssembler(planner *Planner) *Assembler {
	return &Assembler{planner: planner}
}

// Result is the assembled plan: dated sessions plus the narrative the
// coach surface shows alongside them.
type Result struct {
	Sessions  []models.PlannedSessionRow
	Narrative string
}

// Assemble dates the given abstract weeks against the current week's
// Monday, dropping slots that fall before today or after the race.
//
// An empty weeks slice is a signal, not an error: the deterministic
// planner fallback runs before assembly. An externally supplied narrative
// is used verbatim when non-empty; otherwise a templated explanation is
// generated from the computed structure.
func (a *Assembler) Assemble(goal Goal, profile VolumeProfile, snapshot *metrics.Snapshot, weeks []Week, narrative string, today time.Time) (Result, error) {
	today = load.Day(today)

	if len(weeks) == 0 {
		fallback, err := a.planner.Plan(goal, profile, snapshot, today)
		if err != nil {
			return Result{}, err
		}
		weeks = fallback
	}

	if narrative == "" {
		narrative = a.Narrative(goal, profile, snapshot, weeks)
	}

	anchor := MostRecentMonday(today)
	raceDay := load.Day(goal.RaceDate)

	var sessions []models.PlannedSessionRow
	for _, week := range weeks {
		for _, s := range week.Sessions {
			scheduled := anchor.AddDate(0, 0, 7*(week.WeekNumber-1)+(s.Day-1))
			// Already-elapsed or post-race slots are dropped silently.
			if scheduled.Before(today) || scheduled.After(raceDay) {
				continue
			}

			pace := s.PacePerKm
			sessions = append(sessions, models.PlannedSessionRow{
				ScheduledDate:     scheduled,
				WeekNumber:        week.WeekNumber,
				SessionType:       s.SessionType,
				Title:             sessionTitle(s.SessionType, week.WeekNumber),
				Description:       sessionDescription(s.SessionType, s.DurationMinutes, pace),
				TargetDurationMin: s.DurationMinutes,
				TargetIntensity:   s.Intensity,
				TargetPacePerKm:   pace,
				TerrainType:       s.TerrainType,
				ElevationGainM:    s.ElevationGainM,
				Intervals:         s.Intervals,
				WorkoutDetails:    s.WorkoutDetails,
				Status:            models.SessionPlanned,
			})
		}
	}

	return Result{Sessions: sessions, Narrative: narrative}, nil
}

// MostRecentMonday returns the Monday of t's week (t itself on Mondays).
func MostRecentMonday(t time.Time) time.Time {
	t = load.Day(t)
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return t.AddDate(0, 0, -offset)
}

func sessionTitle(sessionType string, weekNum int) string {
	titles := map[string]string{
		SessionEasy:     "Easy run",
		SessionLong:     "Long run",
		SessionTempo:    "Tempo / threshold",
		SessionInterval: "Intervals",
		SessionRecovery: "Active recovery",
	}
	title, ok := titles[sessionType]
	if !ok {
		title = sessionType
	}
	return fmt.Sprintf("%s - W%d", title, weekNum)
}

func sessionDescription(sessionType string, duration int, pace *int) string {
	paceStr := "comfortable pace"
	if pace != nil {
		paceStr = FormatPace(*pace)
	}
	switch sessionType {
	case SessionEasy:
		return fmt.Sprintf("Easy %d min run at %s. Relaxed breathing.", duration, paceStr)
	case SessionLong:
		return fmt.Sprintf("Long run of %d min at %s. Stay hydrated.", duration, paceStr)
	case SessionTempo:
		return fmt.Sprintf("10 min warm-up, %d min at %s, 10 min cool-down.", duration-20, paceStr)
	case SessionInterval:
		return "15 min warm-up + interval sets + 10 min cool-down."
	case SessionRecovery:
		return fmt.Sprintf("Very light %d min jog for recovery.", duration)
	default:
		return fmt.Sprintf("%d minute workout.", duration)
	}
}
