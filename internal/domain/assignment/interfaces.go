package assignment

import "context"

// SnapshotStore persists the assignment collection as one keyed payload.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// BlockCascade is the hook into the block collection used to keep
// denormalized assignment references consistent. Both operations persist the
// block collection before returning, so callers of the assignment store
// observe the consistent pair.
type BlockCascade interface {
	ClearAssignment(ctx context.Context, assignmentID string) error
	RenameAssignment(ctx context.Context, assignmentID, title string) error
}
