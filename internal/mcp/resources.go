package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/stride/internal/models"
)

func (h *handlers) trainingStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	snap, err := h.ds.CurrentMetrics(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekOut := today.AddDate(0, 0, 7)

	var upcoming []models.PlannedSessionRow
	goals, err := h.ds.ListRaceGoals(ctx, uid)
	if err != nil {
		h.log.Warn("training_status: goal query failed", "error", err)
	}
	for _, g := range goals {
		if !g.PlanGenerated {
			continue
		}
		sessions, err := h.ds.QueryPlannedSessions(ctx, g.ID, uid, today, weekOut)
		if err != nil {
			h.log.Warn("training_status: session query failed", "goal", g.ID, "error", err)
			continue
		}
		upcoming = append(upcoming, sessions...)
	}

	status := map[string]any{
		"date":              today.Format("2006-01-02"),
		"metrics":           snap,
		"upcoming_sessions": upcoming,
	}

	data, err := json.Marshal(status)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentActivities(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	activities, err := h.ds.QueryActivities(ctx, start, end, uid)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(activities)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) raceGoals(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	goals, err := h.ds.ListRaceGoals(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(goals)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
