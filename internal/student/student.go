// Package student is the anti-corruption boundary to the student registry.
// The enrollment core only asks two questions: does this student exist, and
// what is their display name.
package student

import (
	"context"
	"sync"

	id "registrar/pkg/domain"
)

// Directory answers student lookups. Implementations return an error wrapping
// sentinel.ErrUnavailable when the registry cannot answer; callers must treat
// that as "unknown", never as "exists".
type Directory interface {
	Exists(ctx context.Context, studentID id.StudentID) (bool, error)
	Name(ctx context.Context, studentID id.StudentID) (name string, found bool, err error)
}

// InMemory is an in-process directory for single-binary deployments and tests.
type InMemory struct {
	mu    sync.RWMutex
	names map[id.StudentID]string
}

func NewInMemory() *InMemory {
	return &InMemory{names: make(map[id.StudentID]string)}
}

func (d *InMemory) Add(studentID id.StudentID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[studentID] = name
}

func (d *InMemory) Exists(_ context.Context, studentID id.StudentID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.names[studentID]
	return ok, nil
}

func (d *InMemory) Name(_ context.Context, studentID id.StudentID) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[studentID]
	return name, ok, nil
}
