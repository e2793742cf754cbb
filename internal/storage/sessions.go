package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/claude/stride/internal/models"
)

// ReplacePlan atomically replaces a goal's plan: deletes all existing planned
// sessions for the goal, inserts the new set, and marks the goal's plan
// generated. Either everything commits or the previous plan survives intact.
func (db *DB) ReplacePlan(ctx context.Context, goalID, athleteID int, sessions []models.PlannedSessionRow, explanation string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM planned_sessions WHERE race_goal_id = $1 AND athlete_id = $2`,
		goalID, athleteID); err != nil {
		return fmt.Errorf("clearing previous plan: %w", err)
	}

	if len(sessions) > 0 {
		query := `INSERT INTO planned_sessions (athlete_id, race_goal_id, scheduled_date, week_number,
			session_type, title, description, target_duration_min, target_intensity,
			target_pace_per_km, terrain_type, elevation_gain_m, intervals, workout_details, status) VALUES `
		args := make([]any, 0, len(sessions)*15)
		valueStrings := make([]string, 0, len(sessions))

		for i, s := range sessions {
			var intervals []byte
			if len(s.Intervals) > 0 {
				intervals, err = json.Marshal(s.Intervals)
				if err != nil {
					return fmt.Errorf("encoding intervals: %w", err)
				}
			}
			status := s.Status
			if status == "" {
				status = models.SessionPlanned
			}
			base := i * 15
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
				base+9, base+10, base+11, base+12, base+13, base+14, base+15,
			))
			args = append(args, athleteID, goalID, s.ScheduledDate, s.WeekNumber,
				s.SessionType, s.Title, s.Description, s.TargetDurationMin, s.TargetIntensity,
				s.TargetPacePerKm, s.TerrainType, s.ElevationGainM, intervals, s.WorkoutDetails, status)
		}

		query += strings.Join(valueStrings, ",")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting planned sessions: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE race_goals
		 SET plan_generated = TRUE, plan_generated_at = NOW(), plan_explanation = $2
		 WHERE id = $1 AND athlete_id = $3`,
		goalID, explanation, athleteID); err != nil {
		return fmt.Errorf("marking plan generated: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing plan: %w", err)
	}
	return nil
}

// QueryPlannedSessions retrieves a goal's sessions with scheduled dates in
// [start, end), earliest first.
func (db *DB) QueryPlannedSessions(ctx context.Context, goalID, athleteID int, start, end time.Time) ([]models.PlannedSessionRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, race_goal_id, scheduled_date, week_number,
		 session_type, title, description, target_duration_min, target_intensity,
		 target_pace_per_km, terrain_type, elevation_gain_m, intervals,
		 COALESCE(workout_details, ''), status
		 FROM planned_sessions
		 WHERE race_goal_id = $1 AND athlete_id = $2
		   AND scheduled_date >= $3 AND scheduled_date < $4
		 ORDER BY scheduled_date ASC`,
		goalID, athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying planned sessions: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// QuerySessionsByDate retrieves all of an athlete's sessions, across goals,
// with scheduled dates in [start, end).
func (db *DB) QuerySessionsByDate(ctx context.Context, athleteID int, start, end time.Time) ([]models.PlannedSessionRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, race_goal_id, scheduled_date, week_number,
		 session_type, title, description, target_duration_min, target_intensity,
		 target_pace_per_km, terrain_type, elevation_gain_m, intervals,
		 COALESCE(workout_details, ''), status
		 FROM planned_sessions
		 WHERE athlete_id = $1 AND scheduled_date >= $2 AND scheduled_date < $3
		 ORDER BY scheduled_date ASC`,
		athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// UpdateSessionStatus marks a session completed, skipped, or modified.
func (db *DB) UpdateSessionStatus(ctx context.Context, sessionID, athleteID int, status string) error {
	switch status {
	case models.SessionPlanned, models.SessionCompleted, models.SessionSkipped, models.SessionModified:
	default:
		return fmt.Errorf("invalid session status %q", status)
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE planned_sessions SET status = $3 WHERE id = $1 AND athlete_id = $2`,
		sessionID, athleteID, status)
	if err != nil {
		return fmt.Errorf("updating session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("planned session %d not found", sessionID)
	}
	return nil
}

func scanSessionRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.PlannedSessionRow, error) {
	var result []models.PlannedSessionRow
	for rows.Next() {
		var s models.PlannedSessionRow
		var intervals []byte
		if err := rows.Scan(&s.ID, &s.AthleteID, &s.RaceGoalID, &s.ScheduledDate, &s.WeekNumber,
			&s.SessionType, &s.Title, &s.Description, &s.TargetDurationMin, &s.TargetIntensity,
			&s.TargetPacePerKm, &s.TerrainType, &s.ElevationGainM, &intervals,
			&s.WorkoutDetails, &s.Status); err != nil {
			return nil, fmt.Errorf("scanning planned session: %w", err)
		}
		if len(intervals) > 0 {
			if err := json.Unmarshal(intervals, &s.Intervals); err != nil {
				return nil, fmt.Errorf("decoding intervals: %w", err)
			}
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
