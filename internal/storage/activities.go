package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/stride/internal/models"
	"github.com/google/uuid"
)

// InsertActivity inserts an activity row. Returns true if inserted, false if duplicate.
func (db *DB) InsertActivity(ctx context.Context, row models.ActivityRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO activities (id, athlete_id, name, activity_type, start_time, moving_duration_sec,
		 distance_m, elevation_gain_m, avg_heart_rate, max_heart_rate,
		 include_in_load, impulse_score, raw_json)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.AthleteID, row.Name, row.ActivityType, row.StartTime, row.MovingDurationSec,
		row.DistanceM, row.ElevationGainM, row.AvgHeartRate, row.MaxHeartRate,
		row.IncludeInLoad, row.ImpulseScore, row.RawJSON)
	if err != nil {
		return false, fmt.Errorf("inserting activity: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertActivities batch-inserts activity rows. Returns count inserted,
// skipping duplicates.
func (db *DB) InsertActivities(ctx context.Context, rows []models.ActivityRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO activities (id, athlete_id, name, activity_type, start_time, moving_duration_sec,
		distance_m, elevation_gain_m, avg_heart_rate, max_heart_rate,
		include_in_load, impulse_score, raw_json) VALUES `
	args := make([]any, 0, len(rows)*13)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 13
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args, r.ID, r.AthleteID, r.Name, r.ActivityType, r.StartTime, r.MovingDurationSec,
			r.DistanceM, r.ElevationGainM, r.AvgHeartRate, r.MaxHeartRate,
			r.IncludeInLoad, r.ImpulseScore, r.RawJSON)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting activities: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryActivities retrieves activities in a time range, newest first.
func (db *DB) QueryActivities(ctx context.Context, start, end time.Time, athleteID int) ([]models.ActivityRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, name, activity_type, start_time, moving_duration_sec,
		 distance_m, elevation_gain_m, avg_heart_rate, max_heart_rate,
		 include_in_load, impulse_score, raw_json
		 FROM activities
		 WHERE start_time >= $1 AND start_time < $2 AND athlete_id = $3
		 ORDER BY start_time DESC`,
		start, end, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var result []models.ActivityRow
	for rows.Next() {
		var a models.ActivityRow
		if err := rows.Scan(&a.ID, &a.AthleteID, &a.Name, &a.ActivityType, &a.StartTime, &a.MovingDurationSec,
			&a.DistanceM, &a.ElevationGainM, &a.AvgHeartRate, &a.MaxHeartRate,
			&a.IncludeInLoad, &a.ImpulseScore, &a.RawJSON); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// GetActivity retrieves a single activity by ID.
func (db *DB) GetActivity(ctx context.Context, activityID uuid.UUID, athleteID int) (*models.ActivityRow, error) {
	var a models.ActivityRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, athlete_id, name, activity_type, start_time, moving_duration_sec,
		 distance_m, elevation_gain_m, avg_heart_rate, max_heart_rate,
		 include_in_load, impulse_score, raw_json
		 FROM activities
		 WHERE id = $1 AND athlete_id = $2`,
		activityID, athleteID).Scan(
		&a.ID, &a.AthleteID, &a.Name, &a.ActivityType, &a.StartTime, &a.MovingDurationSec,
		&a.DistanceM, &a.ElevationGainM, &a.AvgHeartRate, &a.MaxHeartRate,
		&a.IncludeInLoad, &a.ImpulseScore, &a.RawJSON)
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	return &a, nil
}

// DailyImpulseSums returns total impulse per UTC day for activities that
// count toward training load. Days with no activity are absent from the map.
func (db *DB) DailyImpulseSums(ctx context.Context, start, end time.Time, athleteID int) (map[time.Time]float64, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc('day', start_time AT TIME ZONE 'UTC') AS day,
		        SUM(COALESCE(impulse_score, 0))
		 FROM activities
		 WHERE start_time >= $1 AND start_time < $2
		   AND athlete_id = $3 AND include_in_load
		 GROUP BY day`,
		start, end, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying daily impulse: %w", err)
	}
	defer rows.Close()

	sums := make(map[time.Time]float64)
	for rows.Next() {
		var day time.Time
		var total float64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("scanning daily impulse: %w", err)
		}
		sums[time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)] = total
	}
	return sums, rows.Err()
}

// VolumeStats summarizes recent running volume for plan generation.
type VolumeStats struct {
	RunCount       int
	WeeklyVolumeKm float64
	LongestRunKm   float64
	AvgPacePerKm   float64
}

// RunningVolume aggregates run activities over the window ending at end.
// Weekly volume is total distance scaled to a 7-day average; avg pace is
// distance-weighted. Returns zero stats when no runs with distance exist.
func (db *DB) RunningVolume(ctx context.Context, start, end time.Time, athleteID int) (VolumeStats, error) {
	var s VolumeStats
	var totalKm, totalSec float64
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(distance_m) / 1000.0, 0),
		        COALESCE(MAX(distance_m) / 1000.0, 0),
		        COALESCE(SUM(moving_duration_sec), 0)
		 FROM activities
		 WHERE start_time >= $1 AND start_time < $2 AND athlete_id = $3
		   AND activity_type = 'Run' AND distance_m IS NOT NULL AND distance_m > 0`,
		start, end, athleteID).Scan(&s.RunCount, &totalKm, &s.LongestRunKm, &totalSec)
	if err != nil {
		return s, fmt.Errorf("querying running volume: %w", err)
	}

	days := end.Sub(start).Hours() / 24
	if days > 0 {
		s.WeeklyVolumeKm = totalKm * 7 / days
	}
	if totalKm > 0 {
		s.AvgPacePerKm = totalSec / totalKm
	}
	return s, nil
}
