package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the athlete ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given athlete ID.
func WithUserID(ctx context.Context, athleteID int) context.Context {
	return context.WithValue(ctx, userIDKey, athleteID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Stride", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Stride training load server. Query training metrics (fitness, fatigue, form, workload ratio), activities, race goals, and training plans. All data is scoped to the authenticated athlete."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetTrainingMetrics, Handler: h.getTrainingMetrics},
		server.ServerTool{Tool: toolGetFitnessHistory, Handler: h.getFitnessHistory},
		server.ServerTool{Tool: toolGetActivities, Handler: h.getActivities},
		server.ServerTool{Tool: toolListRaceGoals, Handler: h.listRaceGoals},
		server.ServerTool{Tool: toolGetTrainingPlan, Handler: h.getTrainingPlan},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resTrainingStatus, Handler: h.trainingStatus},
		server.ServerResource{Resource: resRecentActivities, Handler: h.recentActivities},
		server.ServerResource{Resource: resRaceGoals, Handler: h.raceGoals},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resTrainingStatus = mcp.NewResource(
	"stride://training_status",
	"Training Status",
	mcp.WithResourceDescription("Today's fitness, fatigue, form, workload ratio, and training zone, plus the next 7 days of planned sessions"),
	mcp.WithMIMEType("application/json"),
)

var resRecentActivities = mcp.NewResource(
	"stride://recent_activities",
	"Recent Activities",
	mcp.WithResourceDescription("Activities from the last 14 days with training impulse scores"),
	mcp.WithMIMEType("application/json"),
)

var resRaceGoals = mcp.NewResource(
	"stride://race_goals",
	"Race Goals",
	mcp.WithResourceDescription("All race goals with dates, distances, and plan status"),
	mcp.WithMIMEType("application/json"),
)
