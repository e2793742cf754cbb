// Package metrics turns per-day impulse series into stabilized fitness,
// fatigue, form, and workload-ratio values with an injury-risk zone.
package metrics

import (
	"time"

	"github.com/claude/stride/internal/load"
)

// Training zones, ordered from underload to overload.
const (
	ZoneDetraining   = "detraining"
	ZoneOptimal      = "optimal"
	ZoneOverreaching = "overreaching"
	ZoneCaution      = "caution"
	ZoneDanger       = "danger"
)

// Config holds the engine's time constants and safety thresholds. Passed
// explicitly so behavior is reproducible without process-wide state.
type Config struct {
	ChronicDays int     // CTL EMA time constant
	AcuteDays   int     // ATL EMA time constant
	WarmupDays  int     // iteration lead-in before the queried range
	ACWRFloor   float64 // minimum effective CTL in the ratio denominator

	// Absolute-ATL thresholds that soften ratio-only classifications
	// when overall volume is low.
	OverreachingMinATL float64
	DangerMinATL       float64
}

// DefaultConfig returns the standard 42/7-day configuration with a
// 180-day warm-up (>4× the chronic constant).
func DefaultConfig() Config {
	return Config{
		ChronicDays:        42,
		AcuteDays:          7,
		WarmupDays:         180,
		ACWRFloor:          10.0,
		OverreachingMinATL: 30,
		DangerMinATL:       40,
	}
}

// Snapshot is the full set of rolling metrics for one date.
type Snapshot struct {
	Date        time.Time `json:"date"`
	CTL         float64   `json:"ctl"`
	ATL         float64   `json:"atl"`
	TSB         float64   `json:"tsb"`
	AcuteLoad   float64   `json:"acute_load"`
	ChronicLoad float64   `json:"chronic_load"`
	ACWR        float64   `json:"acwr"`
	Zone        string    `json:"zone"`
}

// Engine computes rolling training metrics from daily load series.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// ComputeRange walks the daily load series in one forward pass and returns
// a snapshot per calendar day in [start, end]. Iteration begins WarmupDays
// before start with CTL=ATL=0 so returned values carry no cold-start bias.
// Missing days contribute zero load.
func (e *Engine) ComputeRange(dailyLoads map[time.Time]float64, start, end time.Time) map[time.Time]Snapshot {
	start = load.Day(start)
	end = load.Day(end)

	result := make(map[time.Time]Snapshot)
	if end.Before(start) {
		return result
	}

	var ctl, atl float64
	for d := start.AddDate(0, 0, -e.cfg.WarmupDays); !d.After(end); d = d.AddDate(0, 0, 1) {
		dayLoad := dailyLoads[d]
		ctl += (dayLoad - ctl) / float64(e.cfg.ChronicDays)
		atl += (dayLoad - atl) / float64(e.cfg.AcuteDays)

		if d.Before(start) {
			continue
		}

		acwr := e.acwr(ctl, atl)
		result[d] = Snapshot{
			Date:        d,
			CTL:         ctl,
			ATL:         atl,
			TSB:         ctl - atl,
			AcuteLoad:   atl,
			ChronicLoad: ctl,
			ACWR:        acwr,
			Zone:        e.Classify(acwr, atl),
		}
	}
	return result
}

// ComputeCurrent returns the snapshot for a single date. Defined as the
// one-day range so both entry points share the same pass.
func (e *Engine) ComputeCurrent(dailyLoads map[time.Time]float64, date time.Time) Snapshot {
	return e.ComputeRange(dailyLoads, date, date)[load.Day(date)]
}

// acwr divides acute by chronic load with a floor on the denominator, so
// a detrained athlete logging one session does not produce an explosive ratio.
func (e *Engine) acwr(ctl, atl float64) float64 {
	effective := ctl
	if effective < e.cfg.ACWRFloor {
		effective = e.cfg.ACWRFloor
	}
	return atl / effective
}

// Classify maps an ACWR value and absolute acute load to a training zone.
// Ratio bands are softened when absolute volume is low: a high ratio off a
// tiny base is not the same risk as one off real mileage.
func (e *Engine) Classify(acwr, atl float64) string {
	switch {
	case acwr < 0.8:
		return ZoneDetraining
	case acwr <= 1.3:
		return ZoneOptimal
	case acwr <= 1.5:
		if atl < e.cfg.OverreachingMinATL {
			return ZoneOptimal
		}
		return ZoneOverreaching
	default:
		if atl < e.cfg.DangerMinATL {
			return ZoneCaution
		}
		return ZoneDanger
	}
}
