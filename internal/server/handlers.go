package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/stride/internal/ingest"
	"github.com/claude/stride/internal/load"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var payload ingest.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.ingest.Ingest(r.Context(), &payload, userIDFromContext(r))
	if err != nil {
		s.log.Error("ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleUpdateHeartRate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RestingHeartRate int `json:"resting_heart_rate"`
		MaxHeartRate     int `json:"max_heart_rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.db.UpdateAthleteHeartRates(r.Context(), userIDFromContext(r), body.RestingHeartRate, body.MaxHeartRate); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQueryActivities(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	activities, err := s.db.QueryActivities(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (s *Server) handleCurrentMetrics(w http.ResponseWriter, r *http.Request) {
	today := load.Day(time.Now().UTC())

	loads, err := s.dailyLoads(r, today, today)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.engine.ComputeCurrent(loads, today))
}

func (s *Server) handleMetricsHistory(w http.ResponseWriter, r *http.Request) {
	end := load.Day(time.Now().UTC())
	days := 90
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}
	start := end.AddDate(0, 0, -(days - 1))

	loads, err := s.dailyLoads(r, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.engine.History(loads, start, end))
}

func (s *Server) handleMetricsRange(w http.ResponseWriter, r *http.Request) {
	rangeStart, rangeEnd, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	start := load.Day(rangeStart.UTC())
	end := load.Day(rangeEnd.UTC())
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must not precede start"})
		return
	}

	loads, err := s.dailyLoads(r, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.engine.History(loads, start, end))
}

// dailyLoads fetches per-day impulse sums covering [start, end] plus the
// engine's warm-up lead-in.
func (s *Server) dailyLoads(r *http.Request, start, end time.Time) (map[time.Time]float64, error) {
	fetchStart := start.AddDate(0, 0, -s.engine.Config().WarmupDays)
	return s.db.DailyImpulseSums(r.Context(), fetchStart, end.AddDate(0, 0, 1), userIDFromContext(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
