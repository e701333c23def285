// Package store provides in-memory storage for compiled scenes.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/scenescript/pkg/scene"
)

// State represents the outcome of a scene's most recent compile.
type State string

const (
	StateReady  State = "READY"
	StateFailed State = "FAILED"
)

// Stats summarizes a compiled scene for listings.
type Stats struct {
	Objects  int           `json:"objects"`
	Lights   int           `json:"lights"`
	Duration time.Duration `json:"duration"`
}

// CompiledScene is a stored compile result. Description and Frames are
// never mutated after Put; renderers may read them from many goroutines.
type CompiledScene struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Source      string               `json:"source"`
	State       State                `json:"state"`
	Error       string               `json:"error,omitempty"`
	Description *scene.Description   `json:"description,omitempty"`
	Issues      []scene.Issue        `json:"issues,omitempty"`
	Frames      []*scene.Description `json:"frames,omitempty"`
	CompiledAt  time.Time            `json:"compiledAt"`
	Stats       Stats                `json:"stats"`
}

// Store is a thread-safe in-memory collection of compiled scenes.
// Listing preserves first-insertion order.
type Store struct {
	mu     sync.RWMutex
	scenes map[string]*CompiledScene
	order  []string
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		scenes: make(map[string]*CompiledScene),
	}
}

// Put stores a compiled scene under its name, replacing any previous
// compile. The first Put of a name fixes its position in List order.
// A missing ID and zero CompiledAt are filled in.
func (s *Store) Put(cs *CompiledScene) *CompiledScene {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cs.ID == "" {
		cs.ID = uuid.NewString()
	}
	if cs.CompiledAt.IsZero() {
		cs.CompiledAt = time.Now()
	}
	if cs.State == "" {
		cs.State = StateReady
	}
	if cs.Description != nil {
		cs.Stats.Objects = len(cs.Description.Objects)
		cs.Stats.Lights = len(cs.Description.Lights)
	}

	if _, exists := s.scenes[cs.Name]; !exists {
		s.order = append(s.order, cs.Name)
	}
	s.scenes[cs.Name] = cs
	return cs
}

// Fail records a failed compile attempt for name. Any previously bound
// description is kept, so readers continue to see the last good scene.
func (s *Store) Fail(name, source string, compileErr error) *CompiledScene {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.scenes[name]
	if !ok {
		cs = &CompiledScene{ID: uuid.NewString(), Name: name}
		s.order = append(s.order, name)
		s.scenes[name] = cs
	}
	cs.Source = source
	cs.State = StateFailed
	cs.Error = compileErr.Error()
	cs.CompiledAt = time.Now()
	return cs
}

// Get retrieves a scene by name.
func (s *Store) Get(name string) (*CompiledScene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.scenes[name]
	if !ok {
		return nil, fmt.Errorf("scene '%s' not found", name)
	}
	return cs, nil
}

// List returns all scenes in first-insertion order.
func (s *Store) List() []*CompiledScene {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*CompiledScene, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.scenes[name])
	}
	return result
}

// Delete removes a scene.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenes[name]; !ok {
		return fmt.Errorf("scene '%s' not found", name)
	}
	delete(s.scenes, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored scenes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenes)
}
