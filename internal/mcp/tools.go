package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vertexhq/vertex/internal/domain/assignment"
	"github.com/vertexhq/vertex/internal/domain/block"
	"github.com/vertexhq/vertex/internal/domain/calendar"
	"github.com/vertexhq/vertex/internal/domain/progress"
)

// planner adapts the stores to tool handlers.
type planner struct {
	blocks      BlockStore
	assignments AssignmentStore
}

type upsertBlockInput struct {
	ID           string  `json:"id,omitempty" jsonschema:"existing block id to update; omit to create a new block"`
	Title        string  `json:"title,omitempty" jsonschema:"block title; blank defaults to Focus Block"`
	Date         string  `json:"date,omitempty" jsonschema:"calendar date, YYYY-MM-DD"`
	Time         string  `json:"time,omitempty" jsonschema:"clock time, HH:MM; blank defaults to the current time"`
	Duration     float64 `json:"duration,omitempty" jsonschema:"duration in minutes"`
	Priority     string  `json:"priority,omitempty" jsonschema:"high, medium, or low"`
	Notes        string  `json:"notes,omitempty" jsonschema:"free-form notes"`
	AssignmentID string  `json:"assignment_id,omitempty" jsonschema:"assignment to link the block to; ignored when the assignment does not exist"`
	Completed    bool    `json:"completed,omitempty" jsonschema:"whether the block is already completed"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"entity id"`
}

type emptyInput struct{}

type okOutput struct {
	OK bool `json:"ok"`
}

type blockListOutput struct {
	Blocks []block.Block `json:"blocks"`
}

type upsertAssignmentInput struct {
	ID    string  `json:"id,omitempty" jsonschema:"existing assignment id to update; omit to create"`
	Title string  `json:"title,omitempty" jsonschema:"assignment title"`
	Due   string  `json:"due,omitempty" jsonschema:"due date, YYYY-MM-DD"`
	Hours float64 `json:"hours,omitempty" jsonschema:"estimated effort in hours"`
}

type assignmentListOutput struct {
	Assignments []assignment.Assignment `json:"assignments"`
}

type calendarViewInput struct {
	View string `json:"view" jsonschema:"calendar zoom level: day, week, month, or year"`
}

type calendarViewOutput struct {
	View    string            `json:"view"`
	Buckets []calendar.Bucket `json:"buckets"`
}

func registerTools(server *sdkmcp.Server, p *planner) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "upsert_focus_block",
		Description: "Create a focus block, or update one by id",
	}, p.upsertBlock)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_focus_blocks",
		Description: "List all focus blocks, newest first",
	}, p.listBlocks)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_focus_block",
		Description: "Delete a focus block by id",
	}, p.deleteBlock)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_focus_block",
		Description: "Toggle a focus block's completion state",
	}, p.toggleBlock)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "upsert_assignment",
		Description: "Create an assignment, or update one by id",
	}, p.upsertAssignment)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_assignments",
		Description: "List all assignments, newest first",
	}, p.listAssignments)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_assignment",
		Description: "Delete an assignment; linked blocks keep their other fields but drop the link",
	}, p.deleteAssignment)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "calendar_view",
		Description: "Project focus blocks into the buckets of a calendar view",
	}, p.calendarView)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "assignment_progress",
		Description: "Compute scheduled and completed minutes and percent for an assignment",
	}, p.assignmentProgress)
}

func (p *planner) upsertBlock(ctx context.Context, _ *sdkmcp.CallToolRequest, in upsertBlockInput) (*sdkmcp.CallToolResult, block.Block, error) {
	req := block.UpsertRequest{
		ID:        in.ID,
		Title:     in.Title,
		Date:      in.Date,
		Time:      in.Time,
		Duration:  block.Minutes(in.Duration),
		Priority:  block.Priority(in.Priority),
		Notes:     in.Notes,
		Completed: in.Completed,
	}
	req.AssignmentID, req.AssignmentTitle = p.assignments.Denormalize(ctx, in.AssignmentID)

	b, err := p.blocks.Upsert(ctx, req)
	if err != nil {
		return nil, block.Block{}, err
	}
	return nil, b, nil
}

func (p *planner) listBlocks(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, blockListOutput, error) {
	return nil, blockListOutput{Blocks: p.blocks.List(ctx)}, nil
}

func (p *planner) deleteBlock(ctx context.Context, _ *sdkmcp.CallToolRequest, in idInput) (*sdkmcp.CallToolResult, okOutput, error) {
	if err := p.blocks.Delete(ctx, in.ID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

func (p *planner) toggleBlock(ctx context.Context, _ *sdkmcp.CallToolRequest, in idInput) (*sdkmcp.CallToolResult, okOutput, error) {
	if err := p.blocks.ToggleCompletion(ctx, in.ID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

func (p *planner) upsertAssignment(ctx context.Context, _ *sdkmcp.CallToolRequest, in upsertAssignmentInput) (*sdkmcp.CallToolResult, assignment.Assignment, error) {
	a, err := p.assignments.Upsert(ctx, assignment.UpsertRequest{
		ID:    in.ID,
		Title: in.Title,
		Due:   in.Due,
		Hours: assignment.Hours(in.Hours),
	})
	if err != nil {
		return nil, assignment.Assignment{}, err
	}
	return nil, a, nil
}

func (p *planner) listAssignments(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, assignmentListOutput, error) {
	return nil, assignmentListOutput{Assignments: p.assignments.List(ctx)}, nil
}

func (p *planner) deleteAssignment(ctx context.Context, _ *sdkmcp.CallToolRequest, in idInput) (*sdkmcp.CallToolResult, okOutput, error) {
	if err := p.assignments.Delete(ctx, in.ID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: true}, nil
}

func (p *planner) calendarView(ctx context.Context, _ *sdkmcp.CallToolRequest, in calendarViewInput) (*sdkmcp.CallToolResult, calendarViewOutput, error) {
	view, err := calendar.ParseView(in.View)
	if err != nil {
		return nil, calendarViewOutput{}, err
	}
	return nil, calendarViewOutput{
		View:    string(view),
		Buckets: calendar.Aggregate(p.blocks.List(ctx), view),
	}, nil
}

func (p *planner) assignmentProgress(ctx context.Context, _ *sdkmcp.CallToolRequest, in idInput) (*sdkmcp.CallToolResult, progress.Report, error) {
	a, err := p.assignments.Get(ctx, in.ID)
	if err != nil {
		return nil, progress.Report{}, err
	}
	return nil, progress.Compute(a, p.blocks.List(ctx)), nil
}
