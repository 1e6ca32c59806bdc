// Package mcp exposes the local store to MCP clients as read-only tools.
// Writes stay behind the repository layer; agents can browse routines and
// the exercise library but never mutate them.
package mcp

import (
	"log/slog"

	"github.com/FairHead/GymFit/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools registered.
func New(db *storage.DB, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GymFit", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("GymFit workout data. Query routines, their exercises and set plans, the exercise library, and sync state. Read-only."),
	)

	h := &handlers{db: db, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListRoutines, Handler: h.listRoutines},
		server.ServerTool{Tool: toolGetRoutine, Handler: h.getRoutine},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolGetSyncStatus, Handler: h.getSyncStatus},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	db  *storage.DB
	log *slog.Logger
}
