package load

import "time"

// Day truncates t to a UTC calendar date. All daily-load maps are keyed
// by Day values so lookups never depend on the time-of-day component.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyLoads folds workouts into one summed impulse value per calendar
// date. Workouts flagged out of the training load are skipped. The result
// is a derived view, recomputed on demand.
func DailyLoads(workouts []Workout, a Athlete) map[time.Time]float64 {
	loads := make(map[time.Time]float64, len(workouts))
	for _, w := range workouts {
		if !w.IncludeInLoad {
			continue
		}
		loads[Day(w.Date)] += Score(w, a)
	}
	return loads
}

// DailyLoadsScored folds pre-computed impulse scores (e.g. stored on
// activity rows at ingest) into the same per-date view.
func DailyLoadsScored(dates []time.Time, scores []float64) map[time.Time]float64 {
	loads := make(map[time.Time]float64, len(dates))
	for i, d := range dates {
		if i >= len(scores) {
			break
		}
		loads[Day(d)] += scores[i]
	}
	return loads
}
