package load

import (
	"math"
	"time"
)

// Athlete holds the heart-rate bounds used to normalize workout intensity.
type Athlete struct {
	RestingHeartRate int
	MaxHeartRate     int
}

// Workout is one completed activity, already marshalled out of whatever
// row or payload it arrived in.
type Workout struct {
	Date              time.Time
	MovingDurationSec int
	ActivityType      string
	AvgHeartRate      *float64
	IncludeInLoad     bool
}

// TRIMP coefficients (male form of the Banister model). There is no
// per-athlete calibration.
const (
	trimpIntercept = 0.64
	trimpExponent  = 1.92

	// defaultHRRange substitutes for an inconsistent athlete profile
	// (max <= resting).
	defaultHRRange = 130.0
)

// typeMultipliers estimate load per minute when no heart-rate data exists.
var typeMultipliers = map[string]float64{
	"Run":       1.2,
	"Trail Run": 1.2,
	"Track":     1.2,
	"Ride":      0.8,
	"Swim":      1.0,
	"Walk":      0.5,
	"Hike":      0.7,
	"Workout":   1.0,
}

const defaultTypeMultiplier = 0.8

// Score computes the training impulse for one workout. It never fails:
// missing heart-rate data falls back to a duration-based estimate, a zero
// duration yields 0, and an inconsistent HR profile uses a default range.
func Score(w Workout, a Athlete) float64 {
	if w.MovingDurationSec <= 0 {
		return 0
	}
	durationMin := float64(w.MovingDurationSec) / 60

	if w.AvgHeartRate == nil {
		return durationMin * typeMultiplier(w.ActivityType)
	}

	hrRange := float64(a.MaxHeartRate - a.RestingHeartRate)
	if hrRange <= 0 {
		hrRange = defaultHRRange
	}

	ratio := (*w.AvgHeartRate - float64(a.RestingHeartRate)) / hrRange
	ratio = math.Max(0, math.Min(ratio, 1))

	return durationMin * ratio * trimpIntercept * math.Exp(trimpExponent*ratio)
}

func typeMultiplier(activityType string) float64 {
	if m, ok := typeMultipliers[activityType]; ok {
		return m
	}
	return defaultTypeMultiplier
}
