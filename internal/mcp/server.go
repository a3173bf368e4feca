package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(sess Session, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("repsession", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Live workout session. Read the current state, log weight and reps for sets, mark sets done, skip rest periods and finish the workout. Abandoning is only possible from the app itself."),
	)

	h := &handlers{sess: sess, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetWorkoutState, Handler: h.getWorkoutState},
		server.ServerTool{Tool: toolLogSet, Handler: h.logSet},
		server.ServerTool{Tool: toolSkipRest, Handler: h.skipRest},
		server.ServerTool{Tool: toolFinishWorkout, Handler: h.finishWorkout},
	)

	s.AddResources(
		server.ServerResource{Resource: resCurrentSession, Handler: h.currentSession},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	sess Session
	log  *slog.Logger
}
