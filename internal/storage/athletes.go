package storage

import (
	"context"
	"fmt"

	"github.com/claude/stride/internal/models"
)

// GetOrCreateAthlete finds or creates an athlete by Tailscale login name.
// Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateAthlete(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO athletes (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), athletes.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// GetAthlete retrieves an athlete by ID.
func (db *DB) GetAthlete(ctx context.Context, athleteID int) (*models.AthleteRow, error) {
	var a models.AthleteRow
	err := db.Pool.QueryRow(ctx, `
		SELECT id, login, display_name, resting_heart_rate, max_heart_rate, created_at
		FROM athletes
		WHERE id = $1
	`, athleteID).Scan(&a.ID, &a.Login, &a.DisplayName, &a.RestingHeartRate, &a.MaxHeartRate, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying athlete: %w", err)
	}
	return &a, nil
}

// UpdateAthleteHeartRates sets the resting and max heart rate used by the
// impulse calculator. Values outside a plausible physiological range are
// rejected.
func (db *DB) UpdateAthleteHeartRates(ctx context.Context, athleteID, restingHR, maxHR int) error {
	if restingHR < 25 || restingHR > 120 {
		return fmt.Errorf("resting heart rate %d out of range", restingHR)
	}
	if maxHR < 100 || maxHR > 230 {
		return fmt.Errorf("max heart rate %d out of range", maxHR)
	}
	_, err := db.Pool.Exec(ctx, `
		UPDATE athletes SET resting_heart_rate = $2, max_heart_rate = $3 WHERE id = $1
	`, athleteID, restingHR, maxHR)
	if err != nil {
		return fmt.Errorf("updating athlete heart rates: %w", err)
	}
	return nil
}
