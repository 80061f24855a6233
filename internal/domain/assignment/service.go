package assignment

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

// SnapshotKey is the fixed key under which the assignment collection is
// persisted.
const SnapshotKey = "assignments"

// Store owns the in-memory assignment collection, persists it as a whole
// snapshot after every mutation, and enforces the referential rules against
// the block collection: delete cascade-clears references, rename propagates
// the new title into the denormalized caches.
type Store struct {
	snapshots SnapshotStore
	blocks    BlockCascade
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	assignments []Assignment
}

// NewStore creates an assignment store and loads the persisted collection,
// with the same fail-open recovery as the block store.
func NewStore(ctx context.Context, snapshots SnapshotStore, blocks BlockCascade, logger *slog.Logger, now func() time.Time) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	s := &Store{snapshots: snapshots, blocks: blocks, logger: logger, now: now}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	data, err := s.snapshots.Load(ctx, SnapshotKey)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			s.logger.Warn("assignment snapshot unreadable, starting empty", "error", err)
		}
		return
	}
	var assignments []Assignment
	if err := json.Unmarshal(data, &assignments); err != nil {
		s.logger.Warn("assignment snapshot corrupt, starting empty", "error", err)
		return
	}
	s.assignments = assignments
}

// UpsertRequest carries an assignment form submission.
type UpsertRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Due   string `json:"due"`
	Hours Hours  `json:"hours"`
}

// Upsert inserts or updates an assignment and persists the collection.
// Updating an existing assignment pushes the (possibly changed) title into
// every referencing block before returning.
func (s *Store) Upsert(ctx context.Context, req UpsertRequest) (Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := Assignment{
		ID:    req.ID,
		Title: strings.TrimSpace(req.Title),
		Due:   req.Due,
		Hours: req.Hours,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	for i := range s.assignments {
		if s.assignments[i].ID != a.ID {
			continue
		}
		a.CreatedAt = s.assignments[i].CreatedAt
		s.assignments[i] = a
		if err := s.persist(ctx); err != nil {
			return Assignment{}, err
		}
		if err := s.blocks.RenameAssignment(ctx, a.ID, a.Title); err != nil {
			return Assignment{}, fmt.Errorf("propagating assignment title: %w", err)
		}
		return a, nil
	}

	a.CreatedAt = s.now()
	s.assignments = append([]Assignment{a}, s.assignments...)
	return a, s.persist(ctx)
}

// Delete removes the assignment and cascade-clears the reference pair on
// every block that pointed at it. Both collections are persisted before the
// call returns. A missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.assignments {
		if s.assignments[i].ID != id {
			continue
		}
		s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
		if err := s.persist(ctx); err != nil {
			return err
		}
		if err := s.blocks.ClearAssignment(ctx, id); err != nil {
			return fmt.Errorf("clearing assignment references: %w", err)
		}
		return nil
	}
	return nil
}

// Get returns a single assignment by id.
func (s *Store) Get(_ context.Context, id string) (Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return Assignment{}, ErrNotFound
}

// List returns a copy of the collection in insertion order, newest first.
func (s *Store) List(_ context.Context) []Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}

// Denormalize resolves the reference pair a block should store for the given
// assignment id: the id and current title when the assignment exists, empty
// strings otherwise. This keeps the "references a live assignment or is
// empty" invariant enforced in one place.
func (s *Store) Denormalize(_ context.Context, id string) (string, string) {
	if id == "" {
		return "", ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.assignments {
		if a.ID == id {
			return a.ID, a.Title
		}
	}
	return "", ""
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.assignments)
	if err != nil {
		return fmt.Errorf("encoding assignments: %w", err)
	}
	if err := s.snapshots.Save(ctx, SnapshotKey, data); err != nil {
		return fmt.Errorf("persisting assignments: %w", err)
	}
	return nil
}
