package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vertexhq/vertex/internal/domain/assignment"
	"github.com/vertexhq/vertex/internal/domain/block"
	"github.com/vertexhq/vertex/internal/domain/calendar"
	"github.com/vertexhq/vertex/internal/snapshot"
)

func newTestPlanner(t *testing.T) *planner {
	t.Helper()
	ctx := context.Background()
	snaps := snapshot.NewMemory()
	blocks := block.NewStore(ctx, snaps, nil, nil)
	assignments := assignment.NewStore(ctx, snaps, blocks, nil, nil)
	return &planner{blocks: blocks, assignments: assignments}
}

func TestUpsertAndListBlocks(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t)

	_, created, err := p.upsertBlock(ctx, nil, upsertBlockInput{
		Title:    "Read chapter 3",
		Date:     "2026-09-01",
		Duration: 45,
		Priority: "high",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, block.Minutes(45), created.Duration)

	_, out, err := p.listBlocks(ctx, nil, emptyInput{})
	require.NoError(t, err)
	require.Len(t, out.Blocks, 1)
	require.Equal(t, created.ID, out.Blocks[0].ID)
}

func TestUpsertBlockResolvesAssignment(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t)

	_, a, err := p.upsertAssignment(ctx, nil, upsertAssignmentInput{Title: "Essay", Hours: 4})
	require.NoError(t, err)

	_, b, err := p.upsertBlock(ctx, nil, upsertBlockInput{Title: "Draft", AssignmentID: a.ID})
	require.NoError(t, err)
	require.Equal(t, a.ID, b.AssignmentID)
	require.Equal(t, "Essay", b.AssignmentTitle)

	_, orphan, err := p.upsertBlock(ctx, nil, upsertBlockInput{Title: "Orphan", AssignmentID: "nope"})
	require.NoError(t, err)
	require.Empty(t, orphan.AssignmentID)
}

func TestToggleAndDeleteBlock(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t)

	_, b, err := p.upsertBlock(ctx, nil, upsertBlockInput{Title: "Review"})
	require.NoError(t, err)

	_, ok, err := p.toggleBlock(ctx, nil, idInput{ID: b.ID})
	require.NoError(t, err)
	require.True(t, ok.OK)

	_, out, err := p.listBlocks(ctx, nil, emptyInput{})
	require.NoError(t, err)
	require.True(t, out.Blocks[0].Completed)

	_, ok, err = p.deleteBlock(ctx, nil, idInput{ID: b.ID})
	require.NoError(t, err)
	require.True(t, ok.OK)

	_, out, err = p.listBlocks(ctx, nil, emptyInput{})
	require.NoError(t, err)
	require.Empty(t, out.Blocks)
}

func TestDeleteAssignmentCascades(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t)

	_, a, err := p.upsertAssignment(ctx, nil, upsertAssignmentInput{Title: "Essay"})
	require.NoError(t, err)
	_, b, err := p.upsertBlock(ctx, nil, upsertBlockInput{Title: "Draft", AssignmentID: a.ID})
	require.NoError(t, err)
	require.Equal(t, a.ID, b.AssignmentID)

	_, ok, err := p.deleteAssignment(ctx, nil, idInput{ID: a.ID})
	require.NoError(t, err)
	require.True(t, ok.OK)

	_, out, err := p.listBlocks(ctx, nil, emptyInput{})
	require.NoError(t, err)
	require.Empty(t, out.Blocks[0].AssignmentID)

	_, assignments, err := p.listAssignments(ctx, nil, emptyInput{})
	require.NoError(t, err)
	require.Empty(t, assignments.Assignments)
}

func TestCalendarViewTool(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t)

	_, _, err := p.upsertBlock(ctx, nil, upsertBlockInput{
		Title:    "Sunday review",
		Date:     "2026-09-06",
		Priority: "high",
	})
	require.NoError(t, err)

	_, out, err := p.calendarView(ctx, nil, calendarViewInput{View: "week"})
	require.NoError(t, err)
	require.Equal(t, "week", out.View)
	require.Len(t, out.Buckets, 7)
	require.Len(t, out.Buckets[6].Blocks, 1)

	_, _, err = p.calendarView(ctx, nil, calendarViewInput{View: "decade"})
	require.ErrorIs(t, err, calendar.ErrUnknownView)
}

func TestAssignmentProgressTool(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(t)

	_, _, err := p.assignmentProgress(ctx, nil, idInput{ID: "nope"})
	require.ErrorIs(t, err, assignment.ErrNotFound)

	_, a, err := p.upsertAssignment(ctx, nil, upsertAssignmentInput{Title: "Essay", Hours: 1})
	require.NoError(t, err)
	_, _, err = p.upsertBlock(ctx, nil, upsertBlockInput{
		Title:        "Draft",
		AssignmentID: a.ID,
		Duration:     30,
		Completed:    true,
	})
	require.NoError(t, err)

	_, report, err := p.assignmentProgress(ctx, nil, idInput{ID: a.ID})
	require.NoError(t, err)
	require.Equal(t, 50, report.Percent)
	require.Equal(t, 30.0, report.CompletedMinutes)
	require.False(t, report.FullyRealized)
}
