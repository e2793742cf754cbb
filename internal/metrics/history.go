package metrics

import (
	"sort"
	"time"

	"github.com/claude/stride/internal/load"
)

// FitnessHistory holds parallel date-indexed series for charting.
type FitnessHistory struct {
	Dates []time.Time `json:"dates"`
	CTL   []float64   `json:"ctl"`
	ATL   []float64   `json:"atl"`
	TSB   []float64   `json:"tsb"`
}

// History returns the CTL/ATL/TSB series over [start, end], oldest first.
func (e *Engine) History(dailyLoads map[time.Time]float64, start, end time.Time) FitnessHistory {
	snapshots := e.ComputeRange(dailyLoads, start, end)

	dates := make([]time.Time, 0, len(snapshots))
	for d := range snapshots {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	h := FitnessHistory{
		Dates: dates,
		CTL:   make([]float64, len(dates)),
		ATL:   make([]float64, len(dates)),
		TSB:   make([]float64, len(dates)),
	}
	for i, d := range dates {
		snap := snapshots[load.Day(d)]
		h.CTL[i] = snap.CTL
		h.ATL[i] = snap.ATL
		h.TSB[i] = snap.TSB
	}
	return h
}
