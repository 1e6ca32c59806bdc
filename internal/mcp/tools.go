package mcp

import (
	"context"

	"github.com/FairHead/GymFit/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListRoutines = mcp.NewTool("list_routines",
	mcp.WithDescription("List all workout routines with their sync status, most recently updated first."),
)

var toolGetRoutine = mcp.NewTool("get_routine",
	mcp.WithDescription("Get one routine with its configured exercises and set plans in order."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine id")),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise library. Matches name and muscle groups, case-insensitive substring. Omit the query to list everything; pass muscle_group to filter by primary or secondary group."),
	mcp.WithString("query", mcp.Description("Substring to search for")),
	mcp.WithString("muscle_group", mcp.Description("Muscle group filter (e.g. chest, back, core)")),
)

var toolGetSyncStatus = mcp.NewTool("get_sync_status",
	mcp.WithDescription("Report the device's last sync time and which routines still have unsynced local changes."),
)

// --- Tool handlers ---

func (h *handlers) listRoutines(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routines, err := h.db.GetAllRoutines(ctx)
	if err != nil {
		h.log.Error("mcp list_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(routines)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routineID, err := req.RequireString("routine_id")
	if err != nil {
		return mcp.NewToolResultError("routine_id parameter is required"), nil
	}

	agg, err := h.db.GetAggregate(ctx, routineID)
	if err != nil {
		h.log.Error("mcp get_routine", "routine", routineID, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(agg)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	group := req.GetString("muscle_group", "")

	var (
		exercises []models.ExerciseDefinition
		err       error
	)
	switch {
	case group != "":
		exercises, err = h.db.GetExercisesByMuscleGroup(ctx, models.MuscleGroup(group))
	case query != "":
		exercises, err = h.db.SearchExercises(ctx, query)
	default:
		exercises, err = h.db.GetAllExercises(ctx)
	}
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSyncStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lastSync, err := h.db.LastSyncAt(ctx)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	pending, err := h.db.ListPendingRoutines(ctx)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	pendingIDs := make([]string, 0, len(pending))
	for _, r := range pending {
		pendingIDs = append(pendingIDs, r.ID)
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"lastSyncAt":      lastSync,
		"pendingRoutines": pendingIDs,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
