package storage

import (
	"context"
	"fmt"

	"github.com/claude/stride/internal/models"
)

// CreateRaceGoal inserts a race goal and returns its ID.
func (db *DB) CreateRaceGoal(ctx context.Context, row models.RaceGoalRow) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO race_goals (athlete_id, name, race_date, race_distance_km, target_time_seconds,
		 available_days, long_run_day, status, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING id`,
		row.AthleteID, row.Name, row.RaceDate, row.RaceDistanceKm, row.TargetTimeSeconds,
		row.AvailableDays, row.LongRunDay, row.Status, row.Notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting race goal: %w", err)
	}
	return id, nil
}

// ListRaceGoals retrieves all race goals for an athlete, soonest race first.
func (db *DB) ListRaceGoals(ctx context.Context, athleteID int) ([]models.RaceGoalRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, name, race_date, race_distance_km, target_time_seconds,
		 available_days, long_run_day, status, plan_generated, plan_generated_at,
		 COALESCE(plan_explanation, ''), COALESCE(notes, ''), created_at
		 FROM race_goals
		 WHERE athlete_id = $1
		 ORDER BY race_date ASC`,
		athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying race goals: %w", err)
	}
	defer rows.Close()

	var result []models.RaceGoalRow
	for rows.Next() {
		var g models.RaceGoalRow
		if err := rows.Scan(&g.ID, &g.AthleteID, &g.Name, &g.RaceDate, &g.RaceDistanceKm,
			&g.TargetTimeSeconds, &g.AvailableDays, &g.LongRunDay, &g.Status,
			&g.PlanGenerated, &g.PlanGeneratedAt, &g.PlanExplanation, &g.Notes, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning race goal: %w", err)
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// GetRaceGoal retrieves a single race goal by ID.
func (db *DB) GetRaceGoal(ctx context.Context, goalID, athleteID int) (*models.RaceGoalRow, error) {
	var g models.RaceGoalRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, athlete_id, name, race_date, race_distance_km, target_time_seconds,
		 available_days, long_run_day, status, plan_generated, plan_generated_at,
		 COALESCE(plan_explanation, ''), COALESCE(notes, ''), created_at
		 FROM race_goals
		 WHERE id = $1 AND athlete_id = $2`,
		goalID, athleteID).Scan(
		&g.ID, &g.AthleteID, &g.Name, &g.RaceDate, &g.RaceDistanceKm,
		&g.TargetTimeSeconds, &g.AvailableDays, &g.LongRunDay, &g.Status,
		&g.PlanGenerated, &g.PlanGeneratedAt, &g.PlanExplanation, &g.Notes, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying race goal: %w", err)
	}
	return &g, nil
}

// UpdateRaceGoalStatus changes a goal's status (active, completed, abandoned).
func (db *DB) UpdateRaceGoalStatus(ctx context.Context, goalID, athleteID int, status string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE race_goals SET status = $3 WHERE id = $1 AND athlete_id = $2`,
		goalID, athleteID, status)
	if err != nil {
		return fmt.Errorf("updating race goal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("race goal %d not found", goalID)
	}
	return nil
}

// DeleteRaceGoal removes a goal and, via ON DELETE CASCADE, its planned sessions.
func (db *DB) DeleteRaceGoal(ctx context.Context, goalID, athleteID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM race_goals WHERE id = $1 AND athlete_id = $2`,
		goalID, athleteID)
	if err != nil {
		return fmt.Errorf("deleting race goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("race goal %d not found", goalID)
	}
	return nil
}
