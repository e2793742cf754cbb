package mcp

import (
	"context"
	"time"

	"github.com/claude/stride/internal/load"
	"github.com/claude/stride/internal/metrics"
	"github.com/claude/stride/internal/models"
	"github.com/claude/stride/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both Local (direct
// database access) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	CurrentMetrics(ctx context.Context, athleteID int) (*metrics.Snapshot, error)
	MetricsHistory(ctx context.Context, days, athleteID int) (*metrics.FitnessHistory, error)
	QueryActivities(ctx context.Context, start, end time.Time, athleteID int) ([]models.ActivityRow, error)
	ListRaceGoals(ctx context.Context, athleteID int) ([]models.RaceGoalRow, error)
	QueryPlannedSessions(ctx context.Context, goalID, athleteID int, start, end time.Time) ([]models.PlannedSessionRow, error)
}

// Local serves MCP tools directly from the database, computing rolling
// metrics on demand.
type Local struct {
	*storage.DB
	engine *metrics.Engine
}

// Compile-time checks.
var (
	_ DataSource = (*Local)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

// NewLocal wraps a database handle as an MCP data source.
func NewLocal(db *storage.DB) *Local {
	return &Local{DB: db, engine: metrics.NewEngine(metrics.DefaultConfig())}
}

// CurrentMetrics computes today's rolling metrics snapshot.
func (l *Local) CurrentMetrics(ctx context.Context, athleteID int) (*metrics.Snapshot, error) {
	today := load.Day(time.Now().UTC())
	loads, err := l.dailyLoads(ctx, today, today, athleteID)
	if err != nil {
		return nil, err
	}
	snap := l.engine.ComputeCurrent(loads, today)
	return &snap, nil
}

// MetricsHistory computes the CTL/ATL/TSB series for the trailing window.
func (l *Local) MetricsHistory(ctx context.Context, days, athleteID int) (*metrics.FitnessHistory, error) {
	end := load.Day(time.Now().UTC())
	start := end.AddDate(0, 0, -(days - 1))
	loads, err := l.dailyLoads(ctx, start, end, athleteID)
	if err != nil {
		return nil, err
	}
	history := l.engine.History(loads, start, end)
	return &history, nil
}

func (l *Local) dailyLoads(ctx context.Context, start, end time.Time, athleteID int) (map[time.Time]float64, error) {
	fetchStart := start.AddDate(0, 0, -l.engine.Config().WarmupDays)
	return l.DailyImpulseSums(ctx, fetchStart, end.AddDate(0, 0, 1), athleteID)
}
