package system

import (
	"fmt"
	"testing"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/shapes"
)

// testLogger collects output instead of printing it
type testLogger struct {
	lines []string
}

func (l *testLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// newSphereRow registers count unit spheres spaced 100 apart along X with a
// culling margin of 1
func newSphereRow(t *testing.T, listener ListenerProvider, count int) (*System, []*shapes.Sphere) {
	t.Helper()
	sys := New(listener, DefaultConfig(), &testLogger{})
	spheres := make([]*shapes.Sphere, count)
	for i := range spheres {
		spheres[i] = shapes.NewSphere(nil, core.NewVec3(float64(i)*100, 0, 0), 1, false)
		if err := sys.Add(fmt.Sprintf("sphere-%d", i), spheres[i], 1); err != nil {
			t.Fatalf("Failed to add sphere %d: %v", i, err)
		}
	}
	return sys, spheres
}

func TestSystem_TickUpdatesEnabledShapes(t *testing.T) {
	listener := NewStaticListener(core.NewVec3(1.5, 0, 0))
	sys, spheres := newSphereRow(t, listener, 1)

	sys.Tick()
	outer := spheres[0].OuterPoint()
	if !outer.Set || outer.Point != core.NewVec3(1, 0, 0) {
		t.Errorf("Expected outer point (1,0,0), got %+v", outer)
	}

	// Outside the margin the sphere is culled before the update runs
	listener.Set(core.NewVec3(3, 0, 0))
	sys.Tick()
	if spheres[0].Enabled() {
		t.Error("Expected sphere to be culled")
	}
	if spheres[0].OuterPoint() != outer {
		t.Error("Expected culled sphere to keep its previous result")
	}
}

func TestSystem_NoListener(t *testing.T) {
	sys, spheres := newSphereRow(t, nil, 2)
	sys.Tick()

	for i, s := range spheres {
		if s.OuterPoint().Set || s.InnerPoint().Set {
			t.Errorf("Sphere %d: expected no points without a listener", i)
		}
		if !s.Enabled() {
			t.Errorf("Sphere %d: expected culling to be skipped without a listener", i)
		}
	}
	snap := sys.Snapshot()
	if snap.ListenerAvailable || snap.Ticks != 1 {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
}

func TestSystem_CulledShapesKeepStaleState(t *testing.T) {
	listener := NewStaticListener(core.Vec3{})
	sys, spheres := newSphereRow(t, listener, 7)

	maxStale := sys.MaxStaleTicks()
	if maxStale != 3 {
		t.Fatalf("Expected 7 shapes with budget 3 to go stale for at most 3 ticks, got %d", maxStale)
	}
	for i := 0; i < maxStale; i++ {
		sys.Tick()
	}

	for i, s := range spheres {
		if want := i == 0; s.Enabled() != want {
			t.Errorf("Sphere %d: expected enabled=%v", i, want)
		}
	}
	far := spheres[4]
	stale := far.OuterPoint()

	// Culled shapes are not updated, so their results stay as they were
	listener.Set(core.NewVec3(1, 0, 0.5))
	sys.Tick()
	if far.OuterPoint() != stale {
		t.Error("Expected culled sphere to keep its stale result")
	}

	// Teleport next to sphere 4: it must resume within the staleness bound
	target := core.NewVec3(400.5, 0, 0)
	listener.Set(target)
	resumed := false
	for i := 0; i < maxStale+1 && !resumed; i++ {
		sys.Tick()
		resumed = far.InnerPoint().Set && far.InnerPoint().Inside
	}
	if !resumed {
		t.Errorf("Expected sphere 4 to resume within %d ticks", maxStale+1)
	}
}

func TestSystem_Resync(t *testing.T) {
	listener := NewStaticListener(core.Vec3{})
	sys, spheres := newSphereRow(t, listener, 7)
	for i := 0; i < sys.MaxStaleTicks(); i++ {
		sys.Tick()
	}

	listener.Set(core.NewVec3(600, 0, 0))
	sys.Resync()
	for i, s := range spheres {
		if want := i == 6; s.Enabled() != want {
			t.Errorf("Sphere %d: expected enabled=%v after resync", i, want)
		}
	}

	sys.Tick()
	expected := spheres[6].InnerPoint()
	if !expected.Set || !expected.Inside {
		t.Errorf("Expected listener inside sphere 6 right after resync, got %+v", expected)
	}
}

func TestSystem_ResyncPicksUpMovedShapes(t *testing.T) {
	pose := &core.Pose{Scale: core.NewVec3(1, 1, 1)}
	listener := NewStaticListener(core.NewVec3(50, 0, 0))
	sys := New(listener, DefaultConfig(), nil)
	sphere := shapes.NewSphere(pose, core.Vec3{}, 1, false)
	if err := sys.Add("moving", sphere, 1); err != nil {
		t.Fatal(err)
	}

	pose.Position = core.NewVec3(50, 0, 0)
	sys.Resync()
	if !sphere.Enabled() {
		t.Error("Expected resync to use the moved rectangle")
	}
	state, ok := sys.State("moving")
	if !ok || !state.CullRect.Contains(core.NewVec3(50, 0, 0)) {
		t.Errorf("Expected snapshot rect to follow the shape, got %v", state.CullRect)
	}
}

func TestSystem_SnapshotRectIsCullingRect(t *testing.T) {
	pose := &core.Pose{Scale: core.NewVec3(1, 1, 1)}
	listener := NewStaticListener(core.NewVec3(50, 0, 0))
	sys := New(listener, DefaultConfig(), nil)
	sphere := shapes.NewSphere(pose, core.Vec3{}, 1, false)
	if err := sys.Add("moving", sphere, 1); err != nil {
		t.Fatal(err)
	}

	// Until a resync the scheduler keeps testing the registered rectangle,
	// and the snapshot must report that same rectangle
	pose.Position = core.NewVec3(50, 0, 0)
	sys.Tick()
	state, _ := sys.State("moving")
	if state.CullRect.Contains(core.NewVec3(50, 0, 0)) {
		t.Errorf("Expected the registered rectangle before resync, got %v", state.CullRect)
	}
	if state.Enabled {
		t.Error("Expected culling to test the registered rectangle")
	}

	sys.Resync()
	state, _ = sys.State("moving")
	if !state.CullRect.Contains(core.NewVec3(50, 0, 0)) || !state.Enabled {
		t.Errorf("Expected resync to move the rectangle and enable the shape, got %+v", state)
	}
}

// tickLogger records the system tick count as each line is logged
type tickLogger struct {
	sys   *System
	ticks []int
}

func (l *tickLogger) Printf(format string, args ...interface{}) {
	l.ticks = append(l.ticks, l.sys.Ticks())
}

func TestSystem_TicksReadableWhileLogging(t *testing.T) {
	logger := &tickLogger{}
	sys := New(NewStaticListener(core.Vec3{}), DefaultConfig(), logger)
	logger.sys = sys
	if err := sys.Add("ball", shapes.NewSphere(nil, core.Vec3{}, 1, false), 1); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		sys.Tick()
	}
	// Resync logs from the scheduler while the system is locked
	sys.Resync()

	if sys.Ticks() != 4 {
		t.Errorf("Expected 4 ticks, got %d", sys.Ticks())
	}
	if len(logger.ticks) == 0 {
		t.Fatal("Expected resync to log")
	}
	for _, tick := range logger.ticks {
		if tick != 4 {
			t.Errorf("Expected lines logged at tick 4, got %d", tick)
		}
	}
}

func TestSystem_Add(t *testing.T) {
	sys := New(nil, DefaultConfig(), nil)
	sphere := shapes.NewSphere(nil, core.Vec3{}, 1, false)

	if err := sys.Add("a", sphere, -1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := sys.Add("a", sphere, 0); err == nil {
		t.Error("Expected duplicate name to fail")
	}
	if err := sys.Add("b", nil, 0); err == nil {
		t.Error("Expected nil shape to fail")
	}

	state, ok := sys.State("a")
	if !ok {
		t.Fatal("Expected shape a to be registered")
	}
	// Negative margin picks the configured default
	if state.CullRect.MaxX != 1+DefaultConfig().Margin {
		t.Errorf("Expected default margin, got rect %v", state.CullRect)
	}
	if _, ok := sys.Shape("missing"); ok {
		t.Error("Expected lookup of unknown shape to fail")
	}
}

func TestSystem_SnapshotOrder(t *testing.T) {
	sys, _ := newSphereRow(t, NewStaticListener(core.Vec3{}), 3)
	sys.Tick()

	snap := sys.Snapshot()
	if len(snap.Shapes) != 3 {
		t.Fatalf("Expected 3 shapes, got %d", len(snap.Shapes))
	}
	for i, state := range snap.Shapes {
		if state.Name != fmt.Sprintf("sphere-%d", i) {
			t.Errorf("Expected registration order, got %s at %d", state.Name, i)
		}
		if state.Kind != shapes.KindSphere {
			t.Errorf("Expected sphere kind, got %v", state.Kind)
		}
	}
	if !snap.Shapes[0].Final.Inside {
		t.Error("Expected listener inside the first sphere")
	}
	if names := sys.Names(); len(names) != 3 || names[0] != "sphere-0" {
		t.Errorf("Unexpected names %v", names)
	}
}

func TestStaticListener(t *testing.T) {
	l := NewStaticListener(core.NewVec3(1, 2, 3))
	if p, ok := l.TryGetListenerPosition(); !ok || p != core.NewVec3(1, 2, 3) {
		t.Errorf("Expected (1,2,3), got %v ok=%v", p, ok)
	}
	l.Clear()
	if _, ok := l.TryGetListenerPosition(); ok {
		t.Error("Expected cleared listener to be unavailable")
	}
	l.Set(core.NewVec3(4, 5, 6))
	if p, ok := l.TryGetListenerPosition(); !ok || p != core.NewVec3(4, 5, 6) {
		t.Errorf("Expected (4,5,6), got %v ok=%v", p, ok)
	}
}
