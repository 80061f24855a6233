package block

import "context"

// SnapshotStore persists the block collection as one keyed payload.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
