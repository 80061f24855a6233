package block

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vertexhq/vertex/internal/snapshot"
)

// SnapshotKey is the fixed key under which the block collection is persisted.
const SnapshotKey = "focus_blocks"

// DefaultTitle is used when a block is submitted with a blank title.
const DefaultTitle = "Focus Block"

// Store owns the in-memory block collection and persists it as a whole
// snapshot after every mutation. Mutations are serialized by the store
// mutex; two processes sharing one snapshot backend are not coordinated and
// overwrite each other last-write-wins.
type Store struct {
	snapshots SnapshotStore
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	blocks []Block
}

// NewStore creates a block store and loads the persisted collection. An
// absent, unreadable, or unparseable snapshot starts an empty collection;
// it is never surfaced as an error.
func NewStore(ctx context.Context, snapshots SnapshotStore, logger *slog.Logger, now func() time.Time) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	s := &Store{snapshots: snapshots, logger: logger, now: now}
	s.load(ctx)
	return s
}

// load implements the fail-open recovery policy: corruption means "start
// fresh", not "block the app".
func (s *Store) load(ctx context.Context) {
	data, err := s.snapshots.Load(ctx, SnapshotKey)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			s.logger.Warn("block snapshot unreadable, starting empty", "error", err)
		}
		return
	}
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		s.logger.Warn("block snapshot corrupt, starting empty", "error", err)
		return
	}
	s.blocks = blocks
}

// UpsertRequest carries a block form submission. An empty ID creates a new
// block at the head of the collection; a matching ID updates that block in
// place. There is no validation failure path: malformed numeric and date
// fields are stored as-is and defended against in the read models.
type UpsertRequest struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Duration        Minutes  `json:"duration"`
	Priority        Priority `json:"priority"`
	Notes           string   `json:"notes"`
	AssignmentID    string   `json:"assignment_id"`
	AssignmentTitle string   `json:"assignment_title"`
	Completed       bool     `json:"completed"`
}

// Upsert inserts or updates a block and persists the collection. CreatedAt
// and CompletedAt are not part of the request and are retained on update.
func (s *Store) Upsert(ctx context.Context, req UpsertRequest) (Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	b := Block{
		ID:              req.ID,
		Title:           strings.TrimSpace(req.Title),
		Date:            req.Date,
		Time:            req.Time,
		Duration:        req.Duration,
		Priority:        req.Priority,
		Notes:           strings.TrimSpace(req.Notes),
		AssignmentID:    req.AssignmentID,
		AssignmentTitle: req.AssignmentTitle,
		Completed:       req.Completed,
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Title == "" {
		b.Title = DefaultTitle
	}
	if strings.TrimSpace(b.Time) == "" {
		b.Time = now.Format("15:04")
	}

	for i := range s.blocks {
		if s.blocks[i].ID != b.ID {
			continue
		}
		b.CreatedAt = s.blocks[i].CreatedAt
		b.CompletedAt = s.blocks[i].CompletedAt
		s.blocks[i] = b
		return b, s.persist(ctx)
	}

	b.CreatedAt = now
	s.blocks = append([]Block{b}, s.blocks...)
	return b, s.persist(ctx)
}

// Delete removes the block with the given id and persists. A missing id is
// a no-op, not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.blocks {
		if s.blocks[i].ID == id {
			s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// ToggleCompletion flips the completion flag. Flipping to completed stamps
// CompletedAt with the mutation time; flipping back retains the previous
// stamp as last-completion history. A missing id is a no-op.
func (s *Store) ToggleCompletion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.blocks {
		if s.blocks[i].ID != id {
			continue
		}
		s.blocks[i].Completed = !s.blocks[i].Completed
		if s.blocks[i].Completed {
			t := s.now()
			s.blocks[i].CompletedAt = &t
		}
		return s.persist(ctx)
	}
	return nil
}

// Get returns a single block by id.
func (s *Store) Get(_ context.Context, id string) (Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.blocks {
		if b.ID == id {
			return b, nil
		}
	}
	return Block{}, ErrNotFound
}

// List returns a copy of the collection in insertion order, newest first.
func (s *Store) List(_ context.Context) []Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// ClearAssignment empties the assignment reference pair on every block that
// points at the given assignment. Invoked by the assignment store when an
// assignment is deleted, before that deletion returns to the caller.
func (s *Store) ClearAssignment(ctx context.Context, assignmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.blocks {
		if s.blocks[i].AssignmentID == assignmentID {
			s.blocks[i].AssignmentID = ""
			s.blocks[i].AssignmentTitle = ""
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persist(ctx)
}

// RenameAssignment pushes a changed assignment title into the denormalized
// cache on every referencing block.
func (s *Store) RenameAssignment(ctx context.Context, assignmentID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.blocks {
		if s.blocks[i].AssignmentID == assignmentID && s.blocks[i].AssignmentTitle != title {
			s.blocks[i].AssignmentTitle = title
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persist(ctx)
}

// persist writes the whole collection. Callers hold the store mutex.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.blocks)
	if err != nil {
		return fmt.Errorf("encoding focus blocks: %w", err)
	}
	if err := s.snapshots.Save(ctx, SnapshotKey, data); err != nil {
		return fmt.Errorf("persisting focus blocks: %w", err)
	}
	return nil
}
