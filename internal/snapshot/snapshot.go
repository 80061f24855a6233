// Package snapshot defines the whole-collection persistence port used by the
// planner stores. Each collection is serialized as a single payload and
// written in full under a fixed key after every mutation; there is no partial
// write and no transaction log. The model assumes one writer per backend.
package snapshot

import (
	"context"
	"errors"
)

// ErrNotFound indicates no payload has been saved under the key.
var ErrNotFound = errors.New("snapshot not found")

// Store reads and writes named snapshot payloads.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
