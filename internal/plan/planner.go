// Package plan generates multi-week periodized training plans from a race
// goal and turns them into dated session records.
package plan

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/claude/stride/internal/metrics"
	"github.com/claude/stride/internal/models"
)

// ErrInsufficientLeadTime is returned when fewer than MinLeadWeeks remain
// before the race. It is the only domain error the planner surfaces;
// everything else degrades by substitution.
var ErrInsufficientLeadTime = errors.New("minimum 4 weeks needed to generate a training plan")

// Training phases.
const (
	PhaseBuild = "build"
	PhasePeak  = "peak"
	PhaseTaper = "taper"
)

// Session types.
const (
	SessionEasy     = "easy"
	SessionLong     = "long"
	SessionTempo    = "tempo"
	SessionInterval = "interval"
	SessionRecovery = "recovery"
)

// Goal is the planner's read-only view of a race goal.
type Goal struct {
	Name              string
	RaceDate          time.Time
	RaceDistanceKm    float64
	TargetTimeSeconds *int
	AvailableDays     []int // 1=Monday .. 7=Sunday
	LongRunDay        int
}

// VolumeProfile summarizes recent training history. The zero value is
// valid and falls back to conservative defaults.
type VolumeProfile struct {
	HasHistory     bool
	WeeklyVolumeKm float64
	LongestRunKm   float64
	AvgPacePerKm   int // seconds per km, 0 when unknown
}

// Session is one abstract (not yet dated) training session.
type Session struct {
	Day             int               `json:"day"`
	SessionType     string            `json:"session_type"`
	DurationMinutes int               `json:"duration_minutes"`
	Intensity       string            `json:"intensity"`
	PacePerKm       *int              `json:"pace_per_km,omitempty"`
	TerrainType     string            `json:"terrain_type"`
	ElevationGainM  int               `json:"elevation_gain_m"`
	Intervals       []models.Interval `json:"intervals,omitempty"`
	WorkoutDetails  string            `json:"workout_details"`
}

// Week is one abstract plan week.
type Week struct {
	WeekNumber int       `json:"week_number"`
	Phase      string    `json:"phase"`
	Focus      string    `json:"focus"`
	Sessions   []Session `json:"sessions"`
}

// Config holds the planner's tunable constants. Passed explicitly so plans
// are reproducible without process-wide state.
type Config struct {
	MinLeadWeeks int

	// Pace multipliers relative to race pace (>1 slower, <1 faster).
	PaceMultipliers map[string]float64
	DefaultBasePace int // seconds per km when no target time is set

	// Duration baselines in minutes, scaled by the weekly volume multiplier.
	LongRunMinutes   int
	RecoveryMinutes  int
	QualityMinutes   int
	EasyRunMinutes   int

	// Volume-profile biasing of the duration baselines.
	ReferenceWeeklyKm float64
	MinVolumeScale    float64
	MaxVolumeScale    float64
}

// DefaultConfig returns the standard planner configuration.
func DefaultConfig() Config {
	return Config{
		MinLeadWeeks: 4,
		PaceMultipliers: map[string]float64{
			SessionEasy:     1.25,
			SessionLong:     1.20,
			SessionTempo:    1.08,
			SessionInterval: 0.95,
			SessionRecovery: 1.35,
		},
		DefaultBasePace:   330,
		LongRunMinutes:    90,
		RecoveryMinutes:   35,
		QualityMinutes:    50,
		EasyRunMinutes:    45,
		ReferenceWeeklyKm: 20,
		MinVolumeScale:    0.8,
		MaxVolumeScale:    1.25,
	}
}

// Planner deterministically produces abstract training plans.
type Planner struct {
	cfg Config
}

// NewPlanner creates a Planner with the given configuration.
func NewPlanner(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// WeeksUntilRace computes whole weeks between today and the race date,
// never negative.
func WeeksUntilRace(raceDate, today time.Time) int {
	days := int(raceDate.Sub(today).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 7
}

// phasePartition splits the lead-in into build, peak, and taper weeks.
func phasePartition(weeks int) (build, peak, taper int) {
	taper = min(2, weeks/6)
	peak = min(2, (weeks-taper)/4)
	build = weeks - taper - peak
	return build, peak, taper
}

// Plan produces one abstract week per remaining week before the race.
// profile may be zero-valued and snapshot may be nil; both only bias the
// result, they are never required. today determines the lead time.
func (p *Planner) Plan(goal Goal, profile VolumeProfile, snapshot *metrics.Snapshot, today time.Time) ([]Week, error) {
	weeks := WeeksUntilRace(goal.RaceDate, today)
	if weeks < p.cfg.MinLeadWeeks {
		return nil, ErrInsufficientLeadTime
	}

	paces := p.TargetPaces(goal)
	volumeScale := p.volumeScale(profile)
	build, peak, _ := phasePartition(weeks)

	plan := make([]Week, 0, weeks)
	for weekNum := 1; weekNum <= weeks; weekNum++ {
		phase, mult := weekShape(weekNum, weeks, build, peak)
		mult *= volumeScale

		week := Week{
			WeekNumber: weekNum,
			Phase:      phase,
			Focus:      phaseFocus(phase),
		}
		for _, day := range goal.AvailableDays {
			week.Sessions = append(week.Sessions,
				p.sessionForDay(day, goal.LongRunDay, weekNum, phase, mult, paces))
		}
		plan = append(plan, week)
	}
	return plan, nil
}

// weekShape returns the phase and base volume multiplier for a week.
func weekShape(weekNum, totalWeeks, buildWeeks, peakWeeks int) (string, float64) {
	switch {
	case weekNum > buildWeeks+peakWeeks:
		// Taper: step volume down toward race day.
		return PhaseTaper, 0.5 + 0.2*float64(totalWeeks-weekNum)
	case weekNum > buildWeeks:
		return PhasePeak, 1.0
	case weekNum%4 == 0:
		// Recovery week inside the build.
		return PhaseBuild, 0.7
	default:
		return PhaseBuild, 0.7 + 0.3*float64(weekNum)/float64(buildWeeks)
	}
}

// TargetPaces derives per-session-type paces from the goal time, or from
// the default base pace when no target is set.
func (p *Planner) TargetPaces(goal Goal) map[string]int {
	basePace := p.cfg.DefaultBasePace
	if goal.TargetTimeSeconds != nil && goal.RaceDistanceKm > 0 {
		basePace = int(float64(*goal.TargetTimeSeconds) / goal.RaceDistanceKm)
	}

	paces := make(map[string]int, len(p.cfg.PaceMultipliers))
	for sessionType, mult := range p.cfg.PaceMultipliers {
		paces[sessionType] = int(float64(basePace) * mult)
	}
	return paces
}

// volumeScale biases duration baselines toward the athlete's recent
// weekly mileage, clamped so a plan never doubles or halves outright.
func (p *Planner) volumeScale(profile VolumeProfile) float64 {
	if !profile.HasHistory || profile.WeeklyVolumeKm <= 0 {
		return 1.0
	}
	scale := profile.WeeklyVolumeKm / p.cfg.ReferenceWeeklyKm
	return math.Max(p.cfg.MinVolumeScale, math.Min(scale, p.cfg.MaxVolumeScale))
}

// sessionForDay assigns exactly one session type to an available day.
// Rules fire in strict priority order: long run day, the day before it
// (with the Sunday→Monday wrap), quality days in build/peak, then easy.
func (p *Planner) sessionForDay(day, longRunDay, weekNum int, phase string, mult float64, paces map[string]int) Session {
	if day == longRunDay {
		duration := int(float64(p.cfg.LongRunMinutes) * mult)
		pace := paces[SessionLong]
		return Session{
			Day:             day,
			SessionType:     SessionLong,
			DurationMinutes: duration,
			Intensity:       "moderate",
			PacePerKm:       &pace,
			TerrainType:     "road",
			WorkoutDetails: fmt.Sprintf("Long run of %d minutes at a comfortable %s. Bring water and a gel if over 75 minutes.",
				duration, FormatPace(pace)),
		}
	}

	// The wrap only covers a Monday long run; other unavailable
	// preceding days get no substituted recovery slot.
	if day == longRunDay-1 || (day == 7 && longRunDay == 1) {
		duration := int(float64(p.cfg.RecoveryMinutes) * mult)
		pace := paces[SessionRecovery]
		return Session{
			Day:             day,
			SessionType:     SessionRecovery,
			DurationMinutes: duration,
			Intensity:       "easy",
			PacePerKm:       &pace,
			TerrainType:     "road",
			WorkoutDetails: fmt.Sprintf("Active recovery, %d minutes very easy at %s. Keeps the legs fresh for the long run.",
				duration, FormatPace(pace)),
		}
	}

	if (phase == PhaseBuild || phase == PhasePeak) && day >= 2 && day <= 4 {
		duration := int(float64(p.cfg.QualityMinutes) * mult)
		if weekNum%2 == 0 {
			pace := paces[SessionTempo]
			return Session{
				Day:             day,
				SessionType:     SessionTempo,
				DurationMinutes: duration,
				Intensity:       "hard",
				PacePerKm:       &pace,
				TerrainType:     "road",
				WorkoutDetails: fmt.Sprintf("10 min warm-up, %d min at threshold pace (%s), 10 min cool-down. Sustained but controlled.",
					duration-20, FormatPace(pace)),
			}
		}
		intervalPace := paces[SessionInterval]
		return Session{
			Day:             day,
			SessionType:     SessionInterval,
			DurationMinutes: duration,
			Intensity:       "hard",
			TerrainType:     "track",
			Intervals: []models.Interval{
				{Reps: 6, DistanceM: 1000, PacePerKm: intervalPace, RecoverySeconds: 90},
			},
			WorkoutDetails: fmt.Sprintf("15 min warm-up, 6x1000m at %s with 90s jog recovery, 10 min cool-down. VO2max work.",
				FormatPace(intervalPace)),
		}
	}

	duration := int(float64(p.cfg.EasyRunMinutes) * mult)
	pace := paces[SessionEasy]
	return Session{
		Day:             day,
		SessionType:     SessionEasy,
		DurationMinutes: duration,
		Intensity:       "easy",
		PacePerKm:       &pace,
		TerrainType:     "road",
		WorkoutDetails: fmt.Sprintf("Easy run, %d minutes at %s. Relaxed breathing, conversational effort.",
			duration, FormatPace(pace)),
	}
}

func phaseFocus(phase string) string {
	switch phase {
	case PhaseBuild:
		return "Building aerobic endurance"
	case PhasePeak:
		return "Race-specific work and peak intensity"
	case PhaseTaper:
		return "Recovery and freshness for race day"
	default:
		return "General training"
	}
}

// FormatPace renders seconds-per-km as "M:SS/km".
func FormatPace(secondsPerKm int) string {
	if secondsPerKm <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d:%02d/km", secondsPerKm/60, secondsPerKm%60)
}
