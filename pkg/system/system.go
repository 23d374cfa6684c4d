// Package system drives a set of shapes from a listener once per tick.
package system

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
	"github.com/df07/volumetric-audio/pkg/shapes"
)

// Config controls a System
type Config struct {
	Budget int     // Culling checks per tick, DefaultBudget when < 1
	Margin float64 // Default culling margin for shapes added without one
}

// DefaultConfig returns the standard culling settings
func DefaultConfig() Config {
	return Config{Budget: culling.DefaultBudget, Margin: culling.DefaultMargin}
}

// entry is a registered shape; index is its slot in the scheduler, which owns
// the culling rectangle
type entry struct {
	name  string
	shape shapes.Shape
	index int
}

// System owns the registered shapes and the culling scheduler. Tick takes the
// write lock and Snapshot the read lock, so inspection can run alongside.
type System struct {
	mu sync.RWMutex

	config    Config
	listener  ListenerProvider
	scheduler *culling.Scheduler
	entries   []*entry
	byName    map[string]*entry

	ticks     atomic.Int64 // Readable without the lock, so loggers can tag output mid-tick
	position  core.Vec3
	available bool

	logger core.Logger
}

// New creates an empty system. A nil listener behaves like NoListener and a
// nil logger discards output.
func New(listener ListenerProvider, config Config, logger core.Logger) *System {
	if listener == nil {
		listener = NoListener{}
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	if config.Budget < 1 {
		config.Budget = culling.DefaultBudget
	}
	return &System{
		config:    config,
		listener:  listener,
		scheduler: culling.NewScheduler(config.Budget, logger),
		byName:    make(map[string]*entry),
		logger:    logger,
	}
}

// Add registers a shape under a unique name. A negative margin selects the
// configured default.
func (s *System) Add(name string, shape shapes.Shape, margin float64) error {
	if shape == nil {
		return fmt.Errorf("shape %q is nil", name)
	}
	if margin < 0 {
		margin = s.config.Margin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("shape %q already registered", name)
	}

	e := &entry{name: name, shape: shape, index: s.scheduler.Len()}
	s.entries = append(s.entries, e)
	s.byName[name] = e
	s.scheduler.Add(shape, margin)
	return nil
}

// SetListener swaps the listener provider
func (s *System) SetListener(listener ListenerProvider) {
	if listener == nil {
		listener = NoListener{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = listener
}

// Tick reads the listener, advances culling when it is available, then
// updates every enabled shape. Disabled shapes keep their last results.
func (s *System) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	position, ok := s.listener.TryGetListenerPosition()
	if ok {
		s.scheduler.Tick(position)
	}
	for _, e := range s.entries {
		if e.shape.Enabled() {
			e.shape.Update(position, ok)
		}
	}

	s.ticks.Add(1)
	s.position = position
	s.available = ok
}

// Resync recomputes every culling rectangle and re-evaluates all shapes at
// once. Call it after shapes move or the listener teleports.
func (s *System) Resync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.Init()
	if position, ok := s.listener.TryGetListenerPosition(); ok {
		s.scheduler.Resync(position)
	}
}

// Len returns the number of registered shapes
func (s *System) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Shape looks up a registered shape by name
func (s *System) Shape(name string) (shapes.Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return e.shape, true
}

// Names returns the registered shape names in sorted order
func (s *System) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// MaxStaleTicks is the longest any shape can go between culling checks
func (s *System) MaxStaleTicks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduler.MaxStaleTicks()
}

// Ticks returns the number of completed ticks. It does not take the lock and
// is safe to call from a logger while the system is ticking.
func (s *System) Ticks() int {
	return int(s.ticks.Load())
}

// Logger returns the system's logger
func (s *System) Logger() core.Logger {
	return s.logger
}
