package assignment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vertexhq/vertex/internal/domain/assignment"
	"github.com/vertexhq/vertex/internal/domain/block"
	"github.com/vertexhq/vertex/internal/snapshot"
)

func newStores(t *testing.T) (*block.Store, *assignment.Store) {
	t.Helper()
	ctx := context.Background()
	snaps := snapshot.NewMemory()
	blocks := block.NewStore(ctx, snaps, nil, nil)
	assignments := assignment.NewStore(ctx, snaps, blocks, nil, nil)
	return blocks, assignments
}

func TestStore_UpsertPrependsNew(t *testing.T) {
	ctx := context.Background()
	_, assignments := newStores(t)

	first, err := assignments.Upsert(ctx, assignment.UpsertRequest{Title: "Essay", Due: "2026-09-15", Hours: 4})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := assignments.Upsert(ctx, assignment.UpsertRequest{Title: "Lab report", Due: "2026-09-20", Hours: 2})
	require.NoError(t, err)

	list := assignments.List(ctx)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}

func TestStore_UpsertRenamePropagatesToBlocks(t *testing.T) {
	ctx := context.Background()
	blocks, assignments := newStores(t)

	a, err := assignments.Upsert(ctx, assignment.UpsertRequest{Title: "Essay", Hours: 4})
	require.NoError(t, err)

	b, err := blocks.Upsert(ctx, block.UpsertRequest{Title: "Draft", AssignmentID: a.ID, AssignmentTitle: a.Title})
	require.NoError(t, err)

	_, err = assignments.Upsert(ctx, assignment.UpsertRequest{ID: a.ID, Title: "Final Essay", Hours: 4})
	require.NoError(t, err)

	got, err := blocks.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "Final Essay", got.AssignmentTitle)
}

func TestStore_DeleteClearsBlockReferences(t *testing.T) {
	ctx := context.Background()
	blocks, assignments := newStores(t)

	a, err := assignments.Upsert(ctx, assignment.UpsertRequest{Title: "Essay"})
	require.NoError(t, err)

	linked, err := blocks.Upsert(ctx, block.UpsertRequest{Title: "Draft", AssignmentID: a.ID, AssignmentTitle: a.Title})
	require.NoError(t, err)
	loose, err := blocks.Upsert(ctx, block.UpsertRequest{Title: "Unrelated"})
	require.NoError(t, err)

	require.NoError(t, assignments.Delete(ctx, a.ID))

	_, err = assignments.Get(ctx, a.ID)
	require.ErrorIs(t, err, assignment.ErrNotFound)

	got, err := blocks.Get(ctx, linked.ID)
	require.NoError(t, err)
	require.Empty(t, got.AssignmentID)
	require.Empty(t, got.AssignmentTitle)
	require.Equal(t, "Draft", got.Title, "cascade only clears the reference pair")

	got, err = blocks.Get(ctx, loose.ID)
	require.NoError(t, err)
	require.Equal(t, "Unrelated", got.Title)
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	_, assignments := newStores(t)

	require.NoError(t, assignments.Delete(ctx, "nope"))
}

func TestStore_Denormalize(t *testing.T) {
	ctx := context.Background()
	_, assignments := newStores(t)

	a, err := assignments.Upsert(ctx, assignment.UpsertRequest{Title: "Essay"})
	require.NoError(t, err)

	id, title := assignments.Denormalize(ctx, a.ID)
	require.Equal(t, a.ID, id)
	require.Equal(t, "Essay", title)

	id, title = assignments.Denormalize(ctx, "nope")
	require.Empty(t, id)
	require.Empty(t, title)

	id, title = assignments.Denormalize(ctx, "")
	require.Empty(t, id)
	require.Empty(t, title)
}

func TestStore_ReloadsFromSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemory()
	blocks := block.NewStore(ctx, snaps, nil, nil)

	assignments := assignment.NewStore(ctx, snaps, blocks, nil, nil)
	a, err := assignments.Upsert(ctx, assignment.UpsertRequest{Title: "Essay", Hours: 3})
	require.NoError(t, err)

	reloaded := assignment.NewStore(ctx, snaps, blocks, nil, nil)
	got, err := reloaded.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Essay", got.Title)
	require.Equal(t, assignment.Hours(3), got.Hours)
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemory()
	require.NoError(t, snaps.Save(ctx, assignment.SnapshotKey, []byte("[broken")))

	blocks := block.NewStore(ctx, snaps, nil, nil)
	assignments := assignment.NewStore(ctx, snaps, blocks, nil, nil)
	require.Empty(t, assignments.List(ctx))
}
