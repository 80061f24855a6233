package snapshot

import (
	"context"
	"sync"
)

// Memory is an in-memory Store used in tests and for throwaway runs.
type Memory struct {
	mu       sync.Mutex
	payloads map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{payloads: make(map[string][]byte)}
}

// Load returns a copy of the payload saved under key.
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.payloads[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save stores a copy of data under key.
func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.payloads[key] = stored
	return nil
}
