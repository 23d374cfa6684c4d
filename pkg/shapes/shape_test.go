package shapes

import (
	"math"
	"testing"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/mesh"
)

const tolerance = 1e-9

func vecClose(a, b core.Vec3) bool {
	return a.Subtract(b).Length() < 1e-9
}

func expectPoint(t *testing.T, label string, got ClosestPoint, want core.Vec3, inside bool) {
	t.Helper()
	if !got.Set {
		t.Errorf("%s: expected point to be set", label)
		return
	}
	if !vecClose(got.Point, want) {
		t.Errorf("%s: expected %v, got %v", label, want, got.Point)
	}
	if got.Inside != inside {
		t.Errorf("%s: expected inside=%v, got %v", label, inside, got.Inside)
	}
}

func squarePoints() []core.Vec3 {
	return []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(10, 0, 0),
		core.NewVec3(10, 0, 10),
		core.NewVec3(0, 0, 10),
	}
}

func solidMeshBox() *Mesh {
	m := mesh.NewBox(core.NewVec3(2, 2, 2))
	pose := core.IdentityPose()
	shape := NewMesh(pose, m, mesh.NewCollider(m, pose))
	shape.Hollow = false
	return shape
}

// solidShapes returns one solid instance of every kind with the origin
// region (0.5, 0.5, 0.5) strictly inside
func solidShapes() map[string]Shape {
	prism := NewPath(core.NewPose(core.NewVec3(-5, -1, -5), core.Vec3{}, core.NewVec3(1, 1, 1)), squarePoints(), PolygonPrism, 3, false)
	return map[string]Shape{
		"box":        NewBox(core.IdentityPose(), core.Vec3{}, core.NewVec3(2, 2, 2), false),
		"sphere":     NewSphere(core.IdentityPose(), core.Vec3{}, 2, false),
		"capsule":    NewCapsule(core.IdentityPose(), core.Vec3{}, 1.5, 5, AxisY, false),
		"mesh":       solidMeshBox(),
		"prism":      prism,
		"half_space": NewHalfSpace(1, Below, false),
	}
}

func TestKind_String(t *testing.T) {
	for k := KindBox; k <= KindHalfSpace; k++ {
		parsed, err := ParseKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("Kind %d: round trip through %q gave %v (%v)", int(k), k.String(), parsed, err)
		}
	}
	if _, err := ParseKind("torus"); err == nil {
		t.Error("Expected unknown kind to fail")
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("Unexpected name for out of range kind: %s", Kind(99).String())
	}
}

func TestShapes_InsideSolidReturnsListener(t *testing.T) {
	listener := core.NewVec3(0.3, 0.2, -0.4)
	for name, shape := range solidShapes() {
		t.Run(name, func(t *testing.T) {
			shape.Update(listener, true)
			inner := shape.InnerPoint()
			expectPoint(t, "inner", inner, listener, true)
			if inner.Distance != 0 {
				t.Errorf("Expected zero inner distance, got %f", inner.Distance)
			}
			final := shape.FinalPoint()
			if final != inner {
				t.Errorf("Expected solid final point to equal the inner point")
			}
			if !shape.OuterPoint().Set {
				t.Error("Expected outer point to be set")
			}
		})
	}
}

func TestShapes_UpdateIsIdempotent(t *testing.T) {
	listeners := []core.Vec3{core.NewVec3(0.3, 0.2, -0.4), core.NewVec3(7, -3, 2.5)}
	for name, shape := range solidShapes() {
		t.Run(name, func(t *testing.T) {
			for _, listener := range listeners {
				shape.Update(listener, true)
				inner, outer := shape.InnerPoint(), shape.OuterPoint()
				shape.Update(listener, true)
				if shape.InnerPoint() != inner || shape.OuterPoint() != outer {
					t.Errorf("Listener %v: results drifted between identical updates", listener)
				}
			}
		})
	}
}

func TestShapes_UnavailableListenerKeepsStaleState(t *testing.T) {
	for name, shape := range solidShapes() {
		t.Run(name, func(t *testing.T) {
			shape.Update(core.NewVec3(7, -3, 2.5), true)
			inner, outer := shape.InnerPoint(), shape.OuterPoint()

			shape.Update(core.NewVec3(100, 100, 100), false)
			if shape.InnerPoint().Set || shape.OuterPoint().Set {
				t.Error("Expected set flags to clear without a listener")
			}
			if shape.InnerPoint().Point != inner.Point || shape.OuterPoint().Point != outer.Point {
				t.Error("Expected previous positions to persist")
			}
			if shape.InnerPoint().Distance != inner.Distance {
				t.Error("Expected previous distance to persist")
			}
		})
	}
}

func TestShapes_OutsideDistanceMatchesPoint(t *testing.T) {
	listener := core.NewVec3(7, -3, 2.5)
	for name, shape := range solidShapes() {
		t.Run(name, func(t *testing.T) {
			shape.Update(listener, true)
			for label, p := range map[string]ClosestPoint{"inner": shape.InnerPoint(), "outer": shape.OuterPoint()} {
				if math.Abs(p.Distance-p.Point.Distance(listener)) > tolerance {
					t.Errorf("%s: distance %f does not match point %v", label, p.Distance, p.Point)
				}
			}
		})
	}
}

func TestBase_EnabledByDefault(t *testing.T) {
	shape := NewSphere(nil, core.Vec3{}, 1, true)
	if !shape.Enabled() {
		t.Error("Expected new shape to be enabled")
	}
	shape.SetEnabled(false)
	if shape.Enabled() {
		t.Error("Expected SetEnabled(false) to disable")
	}
}

func TestBase_HollowFinalPointIsOuter(t *testing.T) {
	shape := NewSphere(nil, core.Vec3{}, 1, true)
	shape.Update(core.NewVec3(0.2, 0, 0), true)
	if shape.InnerPoint().Set {
		t.Error("Expected hollow shape to leave the inner point unset")
	}
	expectPoint(t, "final", shape.FinalPoint(), core.NewVec3(1, 0, 0), false)
}
