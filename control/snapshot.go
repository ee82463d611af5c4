// control/snapshot.go
// Author: momentics <momentics@gmail.com>
//
// Goroutine-safe state snapshot published by the serve loop.

package control

import "sync"

// Snapshot is a key/value view written by the goroutine that owns the server
// and read from any other, typically a debug probe on the HTTP goroutine.
type Snapshot struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{values: make(map[string]any)}
}

// Get returns a copy of all values.
func (s *Snapshot) Get() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Set merges values into the snapshot.
func (s *Snapshot) Set(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
}
