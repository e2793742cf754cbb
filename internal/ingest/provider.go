package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/stride/internal/load"
	"github.com/claude/stride/internal/models"
	"github.com/claude/stride/internal/storage"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	ActivitiesReceived int      `json:"activities_received"`
	ActivitiesInserted int64    `json:"activities_inserted"`
	ActivitiesSkipped  int64    `json:"activities_skipped"`
	ActivitiesRejected int      `json:"activities_rejected"`
	RejectedReasons    []string `json:"rejected_reasons,omitempty"`

	Message string `json:"message,omitempty"`
}

// Payload is the JSON body accepted by POST /api/v1/ingest.
type Payload struct {
	Activities []Activity `json:"activities"`
}

// Activity is one exported workout. ID is optional; when absent a
// deterministic ID is derived from the athlete, start time, and type so
// re-ingesting the same export is idempotent.
type Activity struct {
	ID                string    `json:"id,omitempty"`
	Name              string    `json:"name"`
	ActivityType      string    `json:"activity_type"`
	StartTime         Timestamp `json:"start_time"`
	MovingDurationSec int       `json:"moving_duration_sec"`
	DistanceM         *float64  `json:"distance_m,omitempty"`
	ElevationGainM    *float64  `json:"elevation_gain_m,omitempty"`
	AvgHeartRate      *float64  `json:"avg_heart_rate,omitempty"`
	MaxHeartRate      *float64  `json:"max_heart_rate,omitempty"`
	IncludeInLoad     *bool     `json:"include_in_load,omitempty"`
}

// Timestamp accepts both RFC 3339 and the "2006-01-02 15:04:05 -0700"
// format common in fitness exports.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}

// Provider converts export payloads into activity rows, scoring each one
// against the athlete's heart-rate profile at ingest time.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new activity ingest provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest validates, scores, and stores the payload's activities.
func (p *Provider) Ingest(ctx context.Context, payload *Payload, athleteID int) (*Result, error) {
	result := &Result{}

	athlete, err := p.db.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("loading athlete: %w", err)
	}
	profile := load.Athlete{
		RestingHeartRate: athlete.RestingHeartRate,
		MaxHeartRate:     athlete.MaxHeartRate,
	}

	var rows []models.ActivityRow
	for _, a := range payload.Activities {
		result.ActivitiesReceived++

		row, err := ConvertActivity(a, athleteID, profile)
		if err != nil {
			p.log.Warn("rejecting activity", "name", a.Name, "error", err)
			result.ActivitiesRejected++
			result.RejectedReasons = append(result.RejectedReasons, err.Error())
			continue
		}
		rows = append(rows, *row)
	}

	if len(rows) > 0 {
		inserted, err := p.db.InsertActivities(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("inserting activities: %w", err)
		}
		result.ActivitiesInserted = inserted
		result.ActivitiesSkipped = int64(len(rows)) - inserted
	}

	if result.ActivitiesRejected > 0 {
		result.Message = fmt.Sprintf("%d activities were rejected: %s",
			result.ActivitiesRejected, strings.Join(result.RejectedReasons, "; "))
	}

	return result, nil
}

// ConvertActivity validates one exported activity and produces a scored row.
func ConvertActivity(a Activity, athleteID int, profile load.Athlete) (*models.ActivityRow, error) {
	if a.ActivityType == "" {
		return nil, fmt.Errorf("activity_type is required")
	}
	if a.StartTime.IsZero() {
		return nil, fmt.Errorf("start_time is required")
	}
	if a.MovingDurationSec < 0 {
		return nil, fmt.Errorf("moving_duration_sec must not be negative")
	}

	id, err := activityID(a, athleteID)
	if err != nil {
		return nil, err
	}

	include := true
	if a.IncludeInLoad != nil {
		include = *a.IncludeInLoad
	}

	score := load.Score(load.Workout{
		Date:              a.StartTime.Time,
		MovingDurationSec: a.MovingDurationSec,
		ActivityType:      a.ActivityType,
		AvgHeartRate:      a.AvgHeartRate,
		IncludeInLoad:     include,
	}, profile)

	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encoding raw activity: %w", err)
	}

	return &models.ActivityRow{
		ID:                id,
		AthleteID:         athleteID,
		Name:              a.Name,
		ActivityType:      a.ActivityType,
		StartTime:         a.StartTime.Time,
		MovingDurationSec: a.MovingDurationSec,
		DistanceM:         a.DistanceM,
		ElevationGainM:    a.ElevationGainM,
		AvgHeartRate:      a.AvgHeartRate,
		MaxHeartRate:      a.MaxHeartRate,
		IncludeInLoad:     include,
		ImpulseScore:      &score,
		RawJSON:           raw,
	}, nil
}

func activityID(a Activity, athleteID int) (uuid.UUID, error) {
	if a.ID != "" {
		id, err := uuid.Parse(a.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid activity id %q: %w", a.ID, err)
		}
		return id, nil
	}
	seed := fmt.Sprintf("%d|%s|%s|%d",
		athleteID, a.StartTime.UTC().Format(time.RFC3339), a.ActivityType, a.MovingDurationSec)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)), nil
}
