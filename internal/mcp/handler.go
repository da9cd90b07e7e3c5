package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/2beens/formlens/internal/formcheck"
	"github.com/2beens/formlens/internal/pose"
	"github.com/2beens/formlens/internal/workouts"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service contextService
}

// NewHandler builds a handler with the given service.
func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// ListExercisesTool returns the MCP tool handler for list_exercises.
func (h *Handler) ListExercisesTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		return jsonResult(h.service.ListExercises()), nil, nil
	}
}

// EvaluateFrameInput is the input for evaluate_frame.
type EvaluateFrameInput struct {
	Exercise  string         `json:"exercise" jsonschema:"Exercise id (e.g. squat, pushup)"`
	Landmarks pose.Landmarks `json:"landmarks" jsonschema:"Landmark label (e.g. left_knee) to normalized x, y, z coordinates"`
}

// EvaluateFrameTool returns the MCP tool handler for evaluate_frame.
func (h *Handler) EvaluateFrameTool() func(context.Context, *mcp.CallToolRequest, EvaluateFrameInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in EvaluateFrameInput) (*mcp.CallToolResult, any, error) {
		if len(in.Landmarks) == 0 {
			return errorResult("No landmarks provided"), nil, nil
		}
		res, err := h.service.EvaluateFrame(in.Exercise, in.Landmarks)
		if errors.Is(err, formcheck.ErrUnknownExercise) {
			return errorResult("Invalid exercise: " + in.Exercise), nil, nil
		}
		if err != nil {
			return errorResult("Error evaluating frame: " + err.Error()), nil, nil
		}
		return jsonResult(res), nil, nil
	}
}

// ListSetsInput is the input for list_workout_sets.
type ListSetsInput struct {
	Exercise string `json:"exercise,omitempty" jsonschema:"Filter by exercise id (e.g. squat)"`
	Page     int    `json:"page" jsonschema:"Page number, starting at 1"`
	Size     int    `json:"size" jsonschema:"Page size, 1 to 100"`
}

// ListSetsTool returns the MCP tool handler for list_workout_sets.
func (h *Handler) ListSetsTool() func(context.Context, *mcp.CallToolRequest, ListSetsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ListSetsInput) (*mcp.CallToolResult, any, error) {
		resp, err := h.service.ListSets(ctx, workouts.ListParams{
			Exercise: in.Exercise,
			Page:     in.Page,
			Size:     in.Size,
		})
		if err != nil {
			return errorResult("Error listing sets: " + err.Error()), nil, nil
		}
		return jsonResult(resp), nil, nil
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
