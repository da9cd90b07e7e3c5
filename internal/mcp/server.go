package mcp

import (
	"github.com/2beens/formlens/internal/formcheck"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with formlens tools: exercise catalog, single frame
// evaluation and recorded workout sets. Used by the stdio command and mounted by the
// main backend at /mcp. A nil sets repo leaves list_workout_sets reporting an error.
func NewServer(engine *formcheck.Engine, sets SetsRepo) *mcp.Server {
	h := NewHandler(NewContextService(engine, sets))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "formlens-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_exercises",
		Description: "Returns the supported exercises with description, required landmarks, angle thresholds (min, max, ideal) and the rep crossing angles. Use when you need to know what the form engine checks.",
	}, h.ListExercisesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "evaluate_frame",
		Description: "Evaluates one frame of body landmarks against an exercise and returns feedback, driver angle and accuracy. Args: exercise (e.g. squat), landmarks (label -> x, y, z). Reps are not counted for single frames.",
	}, h.EvaluateFrameTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_workout_sets",
		Description: "Returns recorded workout sets (exercise, reps, average accuracy, start and finish time), newest first. Args: page, size; optional: exercise. Use when you need training history.",
	}, h.ListSetsTool())

	return s
}
