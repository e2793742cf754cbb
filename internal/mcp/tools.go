package mcp

import (
	"context"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetTrainingMetrics = mcp.NewTool("get_training_metrics",
	mcp.WithDescription("Get today's rolling training metrics: CTL (fitness), ATL (fatigue), TSB (form), acute:chronic workload ratio, and training zone."),
)

var toolGetFitnessHistory = mcp.NewTool("get_fitness_history",
	mcp.WithDescription("Get the day-by-day CTL/ATL/TSB series for charting fitness trends."),
	mcp.WithString("days", mcp.Description("Number of trailing days. Defaults to 90.")),
)

var toolGetActivities = mcp.NewTool("get_activities",
	mcp.WithDescription("Query recorded activities with training impulse scores. Returns duration, distance, heart rate, and per-activity load."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolListRaceGoals = mcp.NewTool("list_race_goals",
	mcp.WithDescription("List all race goals with race dates, distances, target times, and whether a training plan has been generated."),
)

var toolGetTrainingPlan = mcp.NewTool("get_training_plan",
	mcp.WithDescription("Get the planned sessions for a race goal: dates, session types, durations, paces, and completion status."),
	mcp.WithString("goal_id", mcp.Required(), mcp.Description("Race goal ID")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to today.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to one year out.")),
)

// --- Tool handlers ---

func (h *handlers) getTrainingMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	snap, err := h.ds.CurrentMetrics(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_training_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(snap)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getFitnessHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := 90
	if d := req.GetString("days", ""); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			return mcp.NewToolResultError("days must be a positive integer"), nil
		}
		days = parsed
	}
	uid := UserIDFromContext(ctx)

	history, err := h.ds.MetricsHistory(ctx, days, uid)
	if err != nil {
		h.log.Error("mcp get_fitness_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(history)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getActivities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	uid := UserIDFromContext(ctx)

	activities, err := h.ds.QueryActivities(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_activities", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(activities)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listRaceGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	goals, err := h.ds.ListRaceGoals(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_race_goals", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(goals)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalStr, err := req.RequireString("goal_id")
	if err != nil {
		return mcp.NewToolResultError("goal_id parameter is required"), nil
	}
	goalID, err := strconv.Atoi(goalStr)
	if err != nil || goalID <= 0 {
		return mcp.NewToolResultError("goal_id must be a positive integer"), nil
	}

	now := time.Now()
	start := now
	end := now.AddDate(1, 0, 0)
	if s := req.GetString("start", ""); s != "" {
		if start, err = parseFlexTime(s); err != nil {
			return mcp.NewToolResultError("invalid start date: " + err.Error()), nil
		}
	}
	if e := req.GetString("end", ""); e != "" {
		if end, err = parseFlexTime(e); err != nil {
			return mcp.NewToolResultError("invalid end date: " + err.Error()), nil
		}
	}

	uid := UserIDFromContext(ctx)
	sessions, err := h.ds.QueryPlannedSessions(ctx, goalID, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_training_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
