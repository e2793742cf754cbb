package models

import (
	"time"

	"github.com/google/uuid"
)

// AthleteRow is a row of the athletes table. HR fields default to 60/190
// when unset; the load calculator substitutes a default range if they are
// inconsistent rather than failing.
type AthleteRow struct {
	ID               int       `json:"id"`
	Login            string    `json:"login"`
	DisplayName      string    `json:"display_name"`
	RestingHeartRate int       `json:"resting_heart_rate"`
	MaxHeartRate     int       `json:"max_heart_rate"`
	CreatedAt        time.Time `json:"created_at"`
}

// ActivityRow is a completed workout ready for insertion into the
// activities table. Impulse is computed at ingest time and stored so
// daily-load queries stay a plain sum.
type ActivityRow struct {
	ID               uuid.UUID `json:"id"`
	AthleteID        int       `json:"athlete_id"`
	Name             string    `json:"name"`
	ActivityType     string    `json:"activity_type"`
	StartTime        time.Time `json:"start_time"`
	MovingDurationSec int      `json:"moving_duration_sec"`
	DistanceM        *float64  `json:"distance_m,omitempty"`
	ElevationGainM   *float64  `json:"elevation_gain_m,omitempty"`
	AvgHeartRate     *float64  `json:"avg_heart_rate,omitempty"`
	MaxHeartRate     *float64  `json:"max_heart_rate,omitempty"`
	IncludeInLoad    bool      `json:"include_in_load"`
	ImpulseScore     *float64  `json:"impulse_score,omitempty"`
	RawJSON          []byte    `json:"-"`
}

// RaceGoalRow is a row of the race_goals table.
type RaceGoalRow struct {
	ID                int        `json:"id"`
	AthleteID         int        `json:"athlete_id"`
	Name              string     `json:"name"`
	RaceDate          time.Time  `json:"race_date"`
	RaceDistanceKm    float64    `json:"race_distance_km"`
	TargetTimeSeconds *int       `json:"target_time_seconds,omitempty"`
	AvailableDays     []int      `json:"available_days"`
	LongRunDay        int        `json:"long_run_day"`
	Status            string     `json:"status"`
	PlanGenerated     bool       `json:"plan_generated"`
	PlanGeneratedAt   *time.Time `json:"plan_generated_at,omitempty"`
	PlanExplanation   string     `json:"plan_explanation,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Planned session status values.
const (
	SessionPlanned   = "planned"
	SessionCompleted = "completed"
	SessionSkipped   = "skipped"
	SessionModified  = "modified"
)

// Interval is one structured repetition block inside an interval session.
type Interval struct {
	Reps            int `json:"reps"`
	DistanceM       int `json:"distance_m"`
	PacePerKm       int `json:"pace_per_km"`
	RecoverySeconds int `json:"recovery_seconds"`
}

// PlannedSessionRow is a dated training session belonging to a race goal's
// active plan. Regenerating a plan archives all previous rows for the goal
// before inserting the new set.
type PlannedSessionRow struct {
	ID                int        `json:"id"`
	AthleteID         int        `json:"athlete_id"`
	RaceGoalID        int        `json:"race_goal_id"`
	ScheduledDate     time.Time  `json:"scheduled_date"`
	WeekNumber        int        `json:"week_number"`
	SessionType       string     `json:"session_type"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	TargetDurationMin int        `json:"target_duration_min"`
	TargetIntensity   string     `json:"target_intensity"`
	TargetPacePerKm   *int       `json:"target_pace_per_km,omitempty"`
	TerrainType       string     `json:"terrain_type"`
	ElevationGainM    int        `json:"elevation_gain_m"`
	Intervals         []Interval `json:"intervals,omitempty"`
	WorkoutDetails    string     `json:"workout_details"`
	Status            string     `json:"status"`
}
