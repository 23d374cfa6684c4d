package shapes

import (
	"testing"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
)

func TestPath_LocalPrism(t *testing.T) {
	tests := []struct {
		name          string
		listener      core.Vec3
		expectedInner core.Vec3
		expectedOuter core.Vec3
		inside        bool
	}{
		{"Inside snaps outer to nearest wall", core.NewVec3(5, 2, 3), core.NewVec3(5, 2, 3), core.NewVec3(5, 2, 0), true},
		{"Above the prism clamps to the top", core.NewVec3(5, 8, 5), core.NewVec3(5, 5, 5), core.NewVec3(5, 5, 5), false},
		{"Beside the prism snaps to the wall", core.NewVec3(15, 2, 5), core.NewVec3(10, 2, 5), core.NewVec3(10, 2, 5), false},
		{"Below a corner snaps to the corner", core.NewVec3(15, -3, 12), core.NewVec3(10, 0, 10), core.NewVec3(10, 0, 10), false},
		{"Closing edge is a wall", core.NewVec3(-4, 1, 6), core.NewVec3(0, 1, 6), core.NewVec3(0, 1, 6), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := NewPath(nil, squarePoints(), PolygonPrism, 5, false)
			path.Update(tt.listener, true)
			expectPoint(t, "inner", path.InnerPoint(), tt.expectedInner, tt.inside)
			expectPoint(t, "outer", path.OuterPoint(), tt.expectedOuter, false)
		})
	}
}

func TestPath_LocalPrismFollowsPose(t *testing.T) {
	pose := core.NewPose(core.NewVec3(100, 0, 0), core.NewVec3(0, 90, 0), core.NewVec3(1, 1, 1))
	path := NewPath(pose, squarePoints(), PolygonPrism, 5, false)

	// Local (5, 2, 5) is the middle of the prism
	center := pose.TransformPoint(core.NewVec3(5, 2, 5))
	path.Update(center, true)
	expectPoint(t, "inner", path.InnerPoint(), center, true)
	if d := path.OuterPoint().Distance; d < 5-tolerance || d > 5+tolerance {
		t.Errorf("Expected outer point 5 away from the center, got %f", d)
	}
}

func TestPath_LocalPolyline(t *testing.T) {
	points := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(10, 0, 0), core.NewVec3(10, 0, 10)}
	path := NewPath(core.NewPose(core.NewVec3(0, 3, 0), core.Vec3{}, core.NewVec3(1, 1, 1)), points, Polyline, 0, false)

	path.Update(core.NewVec3(5, 7, 4), true)
	expectPoint(t, "inner", path.InnerPoint(), core.NewVec3(5, 3, 0), false)
	expectPoint(t, "outer", path.OuterPoint(), core.NewVec3(5, 3, 0), false)

	// A polyline is never closed, so the gap between the ends is not an edge
	path.Update(core.NewVec3(3, 3, 8), true)
	expectPoint(t, "open end", path.OuterPoint(), core.NewVec3(10, 3, 8), false)
}

func TestPath_FlattenedPrism(t *testing.T) {
	tests := []struct {
		name          string
		listener      core.Vec3
		expectedInner core.Vec3
		expectedOuter core.Vec3
		inside        bool
	}{
		{"Inside lower half snaps outer to floor and wall", core.NewVec3(5, 3, 3), core.NewVec3(5, 3, 3), core.NewVec3(5, 2, 0), true},
		{"Inside upper half snaps outer to ceiling", core.NewVec3(3, 5, 5), core.NewVec3(3, 5, 5), core.NewVec3(0, 6, 5), true},
		{"Above keeps outer height", core.NewVec3(5, 10, 5), core.NewVec3(5, 6, 5), core.NewVec3(5, 10, 0), false},
		{"Beside keeps inner height", core.NewVec3(15, 4, 5), core.NewVec3(10, 4, 5), core.NewVec3(15, 2, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pose := core.NewPose(core.NewVec3(0, 2, 0), core.Vec3{}, core.NewVec3(1, 1, 1))
			path := NewPath(pose, squarePoints(), PolygonPrism, 4, false)
			path.Flatten = true
			path.Update(tt.listener, true)
			expectPoint(t, "inner", path.InnerPoint(), tt.expectedInner, tt.inside)
			expectPoint(t, "outer", path.OuterPoint(), tt.expectedOuter, false)
		})
	}
}

func TestPath_FlattenedPolyline(t *testing.T) {
	pose := core.NewPose(core.NewVec3(0, 2, 0), core.Vec3{}, core.NewVec3(1, 1, 1))
	points := []core.Vec3{core.NewVec3(0, 5, 0), core.NewVec3(10, -5, 0)}
	path := NewPath(pose, points, Polyline, 0, false)
	path.Flatten = true

	path.Update(core.NewVec3(4, 9, 3), true)
	expectPoint(t, "outer", path.OuterPoint(), core.NewVec3(4, 2, 0), false)
	expectPoint(t, "inner", path.InnerPoint(), core.NewVec3(4, 2, 0), false)
}

func TestPath_BakeOnce(t *testing.T) {
	pose := &core.Pose{Position: core.Vec3{}, Scale: core.NewVec3(1, 1, 1)}
	path := NewPath(pose, squarePoints(), PolygonPrism, 4, false)
	path.Flatten = true

	listener := core.NewVec3(5, 1, 5)
	path.Update(listener, true)
	if !path.InnerPoint().Inside {
		t.Fatal("Expected listener inside before moving")
	}

	// Baked XZ stays put, height follows the pose
	pose.Position = core.NewVec3(100, 0, 0)
	path.Update(listener, true)
	if !path.InnerPoint().Inside {
		t.Error("Expected baked points to ignore the new pose position")
	}

	path.Bake()
	path.Update(listener, true)
	if path.InnerPoint().Inside {
		t.Error("Expected rebaked points to follow the pose")
	}
}

func TestPath_ClonePoints(t *testing.T) {
	source := NewPath(nil, squarePoints(), PolygonPrism, 5, false)
	clone := NewPath(core.NewPose(core.NewVec3(0, 10, 0), core.Vec3{}, core.NewVec3(1, 1, 1)), nil, PolygonPrism, 5, false)
	clone.ClonePoints(source)

	clone.Update(core.NewVec3(5, 12, 5), true)
	expectPoint(t, "inner", clone.InnerPoint(), core.NewVec3(5, 12, 5), true)

	// Edits to the source show up in the clone
	source.Points[1] = core.NewVec3(20, 0, 0)
	source.Points[2] = core.NewVec3(20, 0, 10)
	clone.Update(core.NewVec3(15, 12, 5), true)
	if !clone.InnerPoint().Inside {
		t.Error("Expected clone to see the widened source")
	}

	clone.ClonePoints(clone)
	clone.Update(core.NewVec3(15, 12, 5), true)
	if !clone.InnerPoint().Inside {
		t.Error("Expected cloning from itself to be ignored")
	}
}

func TestPath_ClonedFlattenedSharesBake(t *testing.T) {
	source := NewPath(core.NewPose(core.NewVec3(50, 0, 0), core.Vec3{}, core.NewVec3(1, 1, 1)), squarePoints(), PolygonPrism, 5, false)
	source.Flatten = true
	clone := NewPath(nil, nil, PolygonPrism, 5, false)
	clone.Flatten = true
	clone.ClonePoints(source)

	clone.Update(core.NewVec3(55, 1, 5), true)
	if !clone.InnerPoint().Inside {
		t.Error("Expected clone to use the source's world points")
	}
}

func TestPath_TooFewPoints(t *testing.T) {
	for _, flatten := range []bool{false, true} {
		path := NewPath(nil, []core.Vec3{core.NewVec3(1, 0, 1)}, PolygonPrism, 5, false)
		path.Flatten = flatten
		path.Update(core.NewVec3(1, 0, 1), true)
		if path.InnerPoint().Set || path.OuterPoint().Set {
			t.Errorf("Flatten=%v: expected a single point to produce nothing", flatten)
		}
	}
}

func TestPath_CullRect(t *testing.T) {
	local := NewPath(core.NewPose(core.NewVec3(5, 0, 0), core.Vec3{}, core.NewVec3(1, 1, 1)), squarePoints(), PolygonPrism, 5, false)
	want := culling.Rect{MinX: 4, MinZ: -1, MaxX: 16, MaxZ: 11}
	if got := local.CullRect(1); !rectClose(got, want) {
		t.Errorf("Expected local rect %v, got %v", want, got)
	}

	flat := NewPath(core.NewPose(core.NewVec3(5, 0, 0), core.Vec3{}, core.NewVec3(1, 1, 1)), squarePoints(), PolygonPrism, 5, false)
	flat.Flatten = true
	if got := flat.CullRect(1); !rectClose(got, want) {
		t.Errorf("Expected flattened rect %v, got %v", want, got)
	}
}

func TestPath_Kind(t *testing.T) {
	if NewPath(nil, nil, Polyline, 0, false).Kind() != KindPolyline {
		t.Error("Expected polyline kind")
	}
	if NewPath(nil, nil, PolygonPrism, 0, false).Kind() != KindPolygonPrism {
		t.Error("Expected polygon prism kind")
	}
	for _, name := range []string{"polyline", "POLYGON_PRISM"} {
		if _, err := ParsePathMode(name); err != nil {
			t.Errorf("ParsePathMode(%q) failed: %v", name, err)
		}
	}
	if _, err := ParsePathMode("spiral"); err == nil {
		t.Error("Expected unknown path mode to fail")
	}
}
