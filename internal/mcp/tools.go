package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/repsession/internal/models"
)

// --- Tool definitions ---

var toolGetWorkoutState = mcp.NewTool("get_workout_state",
	mcp.WithDescription("Current workout session: phase (workout/rest/summary), exercises with targets, logged sets, elapsed time and rest countdown."),
)

var toolLogSet = mcp.NewTool("log_set",
	mcp.WithDescription("Record weight and/or reps for one set and optionally mark it done. Marking a set done starts the exercise's rest countdown. Done sets cannot be edited."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id from get_workout_state")),
	mcp.WithNumber("set", mcp.Required(), mcp.Description("Zero-based set index")),
	mcp.WithString("weight", mcp.Description("Weight as typed, e.g. '82.5'")),
	mcp.WithString("reps", mcp.Description("Reps performed, e.g. '8'")),
	mcp.WithBoolean("done", mcp.Description("Mark the set done. Defaults to false.")),
)

var toolSkipRest = mcp.NewTool("skip_rest",
	mcp.WithDescription("End the current rest countdown early and return to the workout."),
)

var toolFinishWorkout = mcp.NewTool("finish_workout",
	mcp.WithDescription("Report the workout as complete and return the summary (duration, exercises completed, sets, total volume). Requires at least one set done."),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutState(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.sess.GetState(ctx)
	if err != nil {
		h.log.Error("mcp get_workout_state", "error", err)
		return mcp.NewToolResultError("reading state failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(st)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	idx, err := req.RequireInt("set")
	if err != nil {
		return mcp.NewToolResultError("set parameter is required"), nil
	}

	var u SetUpdate
	if w := req.GetString("weight", ""); w != "" {
		u.Weight = &w
	}
	if r := req.GetString("reps", ""); r != "" {
		u.Reps = &r
	}
	u.Done = req.GetBool("done", false)

	st, err := h.sess.LogSet(ctx, models.ID(exerciseID), idx, u)
	if err != nil {
		h.log.Warn("mcp log_set", "exercise", exerciseID, "set", idx, "error", err)
		return mcp.NewToolResultError("log_set failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(st)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) skipRest(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skipped, err := h.sess.SkipRest(ctx)
	if err != nil {
		h.log.Error("mcp skip_rest", "error", err)
		return mcp.NewToolResultError("skip_rest failed: " + err.Error()), nil
	}
	if !skipped {
		return mcp.NewToolResultText("no rest in progress"), nil
	}
	return mcp.NewToolResultText("rest skipped"), nil
}

func (h *handlers) finishWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := h.sess.Finish(ctx)
	if err != nil {
		h.log.Warn("mcp finish_workout", "error", err)
		return mcp.NewToolResultError("finish failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sum)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
