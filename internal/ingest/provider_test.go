package ingest

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/claude/stride/internal/load"
)

var testProfile = load.Athlete{RestingHeartRate: 50, MaxHeartRate: 190}

func TestTimestampFormats(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `"2026-03-01T07:30:00Z"`, time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)},
		{"export format", `"2026-03-01 07:30:00 +0000"`, time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)},
		{"no zone", `"2026-03-01 07:30:00"`, time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tc.input), &ts); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ts.Equal(tc.want) {
				t.Errorf("parsed %v, want %v", ts.Time, tc.want)
			}
		})
	}
}

func TestTimestampInvalid(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}

func TestConvertActivityScoresAtIngest(t *testing.T) {
	hr := 120.0
	a := Activity{
		Name:              "Morning Run",
		ActivityType:      "Run",
		StartTime:         Timestamp{time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)},
		MovingDurationSec: 3600,
		AvgHeartRate:      &hr,
	}
	row, err := ConvertActivity(a, 1, testProfile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.ImpulseScore == nil {
		t.Fatal("impulse score not set")
	}
	ratio := (hr - 50) / 140.0
	want := 60 * ratio * 0.64 * math.Exp(1.92*ratio)
	if math.Abs(*row.ImpulseScore-want) > 0.01 {
		t.Errorf("impulse = %.3f, want %.3f", *row.ImpulseScore, want)
	}
	if !row.IncludeInLoad {
		t.Error("include_in_load should default to true")
	}
}

func TestConvertActivityNoHeartRate(t *testing.T) {
	a := Activity{
		ActivityType:      "Walk",
		StartTime:         Timestamp{time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)},
		MovingDurationSec: 1800,
	}
	row, err := ConvertActivity(a, 1, testProfile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 30 min walk at the 0.5 type multiplier
	if want := 15.0; math.Abs(*row.ImpulseScore-want) > 0.001 {
		t.Errorf("impulse = %.3f, want %.3f", *row.ImpulseScore, want)
	}
}

func TestConvertActivityValidation(t *testing.T) {
	start := Timestamp{time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)}
	cases := []struct {
		name string
		a    Activity
	}{
		{"missing type", Activity{StartTime: start, MovingDurationSec: 100}},
		{"missing start", Activity{ActivityType: "Run", MovingDurationSec: 100}},
		{"negative duration", Activity{ActivityType: "Run", StartTime: start, MovingDurationSec: -1}},
		{"bad id", Activity{ID: "not-a-uuid", ActivityType: "Run", StartTime: start, MovingDurationSec: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ConvertActivity(tc.a, 1, testProfile); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestActivityIDDeterministic(t *testing.T) {
	a := Activity{
		ActivityType:      "Run",
		StartTime:         Timestamp{time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)},
		MovingDurationSec: 3600,
	}
	r1, err := ConvertActivity(a, 1, testProfile)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := ConvertActivity(a, 1, testProfile)
	if err != nil {
		t.Fatal(err)
	}
	if r1.ID != r2.ID {
		t.Errorf("same activity produced different IDs: %s vs %s", r1.ID, r2.ID)
	}

	r3, err := ConvertActivity(a, 2, testProfile)
	if err != nil {
		t.Fatal(err)
	}
	if r1.ID == r3.ID {
		t.Error("different athletes should produce different IDs")
	}
}
