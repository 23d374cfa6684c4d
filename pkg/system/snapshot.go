package system

import (
	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
	"github.com/df07/volumetric-audio/pkg/shapes"
)

// ShapeState is a copy of one shape's results after the last tick
type ShapeState struct {
	Name     string
	Kind     shapes.Kind
	Hollow   bool
	Enabled  bool
	CullRect culling.Rect
	Outer    shapes.ClosestPoint
	Inner    shapes.ClosestPoint
	Final    shapes.ClosestPoint
}

// Snapshot is a consistent view of the whole system
type Snapshot struct {
	Ticks             int
	Listener          core.Vec3
	ListenerAvailable bool
	MaxStaleTicks     int
	Shapes            []ShapeState
}

// Snapshot copies every shape's state in registration order
func (s *System) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Ticks:             s.Ticks(),
		Listener:          s.position,
		ListenerAvailable: s.available,
		MaxStaleTicks:     s.scheduler.MaxStaleTicks(),
		Shapes:            make([]ShapeState, 0, len(s.entries)),
	}
	for _, e := range s.entries {
		snap.Shapes = append(snap.Shapes, s.stateOf(e))
	}
	return snap
}

// State returns the state of one named shape
func (s *System) State(name string) (ShapeState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byName[name]
	if !ok {
		return ShapeState{}, false
	}
	return s.stateOf(e), true
}

// stateOf reads the culling rectangle from the scheduler so the snapshot
// reports exactly what culling tests against
func (s *System) stateOf(e *entry) ShapeState {
	return ShapeState{
		Name:     e.name,
		Kind:     e.shape.Kind(),
		Hollow:   e.shape.IsHollow(),
		Enabled:  e.shape.Enabled(),
		CullRect: s.scheduler.Rect(e.index),
		Outer:    e.shape.OuterPoint(),
		Inner:    e.shape.InnerPoint(),
		Final:    e.shape.FinalPoint(),
	}
}
