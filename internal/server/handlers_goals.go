package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claude/stride/internal/load"
	"github.com/claude/stride/internal/models"
	"github.com/claude/stride/internal/plan"
)

// Race goal status values.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalAbandoned = "abandoned"
)

type goalRequest struct {
	Name              string  `json:"name"`
	RaceDate          string  `json:"race_date"`
	RaceDistanceKm    float64 `json:"race_distance_km"`
	TargetTimeSeconds *int    `json:"target_time_seconds,omitempty"`
	AvailableDays     []int   `json:"available_days"`
	LongRunDay        int     `json:"long_run_day"`
	Notes             string  `json:"notes,omitempty"`
}

func (g goalRequest) validate() (time.Time, error) {
	if g.Name == "" {
		return time.Time{}, fmt.Errorf("name is required")
	}
	raceDate, err := time.Parse("2006-01-02", g.RaceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("race_date must be YYYY-MM-DD: %w", err)
	}
	if g.RaceDistanceKm <= 0 {
		return time.Time{}, fmt.Errorf("race_distance_km must be positive")
	}
	if g.TargetTimeSeconds != nil && *g.TargetTimeSeconds <= 0 {
		return time.Time{}, fmt.Errorf("target_time_seconds must be positive")
	}
	if len(g.AvailableDays) == 0 {
		return time.Time{}, fmt.Errorf("available_days is required")
	}
	seen := map[int]bool{}
	for _, d := range g.AvailableDays {
		if d < 1 || d > 7 {
			return time.Time{}, fmt.Errorf("available_days entries must be 1 (Monday) through 7 (Sunday)")
		}
		if seen[d] {
			return time.Time{}, fmt.Errorf("available_days contains duplicate day %d", d)
		}
		seen[d] = true
	}
	if !seen[g.LongRunDay] {
		return time.Time{}, fmt.Errorf("long_run_day must be one of available_days")
	}
	return raceDate, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var body goalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	raceDate, err := body.validate()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	athleteID := userIDFromContext(r)
	id, err := s.db.CreateRaceGoal(r.Context(), models.RaceGoalRow{
		AthleteID:         athleteID,
		Name:              body.Name,
		RaceDate:          raceDate,
		RaceDistanceKm:    body.RaceDistanceKm,
		TargetTimeSeconds: body.TargetTimeSeconds,
		AvailableDays:     body.AvailableDays,
		LongRunDay:        body.LongRunDay,
		Status:            GoalActive,
		Notes:             body.Notes,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	goal, err := s.db.GetRaceGoal(r.Context(), id, athleteID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.db.ListRaceGoals(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}
	goal, err := s.db.GetRaceGoal(r.Context(), goalID, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "goal not found"})
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	switch body.Status {
	case GoalActive, GoalCompleted, GoalAbandoned:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid status %q", body.Status)})
		return
	}

	if err := s.db.UpdateRaceGoalStatus(r.Context(), goalID, userIDFromContext(r), body.Status); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": body.Status})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteRaceGoal(r.Context(), goalID, userIDFromContext(r)); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// planRequest optionally carries an externally produced plan. When Weeks
// is empty the deterministic planner runs instead.
type planRequest struct {
	Weeks     []plan.Week `json:"weeks,omitempty"`
	Narrative string      `json:"narrative,omitempty"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}
	athleteID := userIDFromContext(r)

	var body planRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	row, err := s.db.GetRaceGoal(r.Context(), goalID, athleteID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "goal not found"})
		return
	}

	now := time.Now().UTC()
	today := load.Day(now)

	profile, err := s.volumeProfile(r, now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	loads, err := s.dailyLoads(r, today, today)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	snapshot := s.engine.ComputeCurrent(loads, today)

	goal := plan.Goal{
		Name:              row.Name,
		RaceDate:          row.RaceDate,
		RaceDistanceKm:    row.RaceDistanceKm,
		TargetTimeSeconds: row.TargetTimeSeconds,
		AvailableDays:     row.AvailableDays,
		LongRunDay:        row.LongRunDay,
	}

	result, err := s.assembler.Assemble(goal, profile, &snapshot, body.Weeks, body.Narrative, today)
	if err != nil {
		if errors.Is(err, plan.ErrInsufficientLeadTime) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	for i := range result.Sessions {
		result.Sessions[i].AthleteID = athleteID
		result.Sessions[i].RaceGoalID = goalID
	}

	if err := s.db.ReplacePlan(r.Context(), goalID, athleteID, result.Sessions, result.Narrative); err != nil {
		s.log.Error("plan replacement failed", "goal", goalID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("plan generated", "goal", goalID, "sessions", len(result.Sessions))
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions_created": len(result.Sessions),
		"weeks_until_race": plan.WeeksUntilRace(row.RaceDate, today),
		"narrative":        result.Narrative,
	})
}

// calendarDay groups a date's sessions for the calendar view.
type calendarDay struct {
	Date     string                      `json:"date"`
	Sessions []models.PlannedSessionRow `json:"sessions"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}
	athleteID := userIDFromContext(r)

	row, err := s.db.GetRaceGoal(r.Context(), goalID, athleteID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "goal not found"})
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if r.URL.Query().Get("start") == "" {
		// Default: from today through race day
		start = load.Day(time.Now().UTC())
		end = load.Day(row.RaceDate).AddDate(0, 0, 1)
	}

	sessions, err := s.db.QueryPlannedSessions(r.Context(), goalID, athleteID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	byDate := map[string][]models.PlannedSessionRow{}
	for _, sess := range sessions {
		key := sess.ScheduledDate.Format("2006-01-02")
		byDate[key] = append(byDate[key], sess)
	}
	days := make([]calendarDay, 0, len(byDate))
	for date, group := range byDate {
		days = append(days, calendarDay{Date: date, Sessions: group})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	writeJSON(w, http.StatusOK, map[string]any{
		"goal": row,
		"days": days,
	})
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.db.UpdateSessionStatus(r.Context(), sessionID, userIDFromContext(r), body.Status); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": body.Status})
}

// volumeProfile summarizes the athlete's last 90 days of running.
func (s *Server) volumeProfile(r *http.Request, now time.Time) (plan.VolumeProfile, error) {
	stats, err := s.db.RunningVolume(r.Context(), now.AddDate(0, 0, -90), now, userIDFromContext(r))
	if err != nil {
		return plan.VolumeProfile{}, err
	}
	return plan.VolumeProfile{
		HasHistory:     stats.RunCount > 0,
		WeeklyVolumeKm: stats.WeeklyVolumeKm,
		LongestRunKm:   stats.LongestRunKm,
		AvgPacePerKm:   int(stats.AvgPacePerKm),
	}, nil
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
