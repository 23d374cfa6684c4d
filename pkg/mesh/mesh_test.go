package mesh

import (
	"math"
	"testing"

	"github.com/df07/volumetric-audio/pkg/core"
)

const tolerance = 1e-9

func vecClose(a, b core.Vec3) bool {
	return a.Subtract(b).Length() < tolerance
}

func TestNew_Validation(t *testing.T) {
	vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}

	tests := []struct {
		name    string
		indices []int
		wantErr bool
	}{
		{"Valid triangle", []int{0, 1, 2}, false},
		{"Empty mesh", nil, false},
		{"Not a multiple of 3", []int{0, 1}, true},
		{"Index out of bounds", []int{0, 1, 3}, true},
		{"Negative index", []int{0, -1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(vertices, tt.indices)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMesh_Bounds(t *testing.T) {
	box := NewBox(core.NewVec3(2, 4, 6))
	bounds := box.Bounds()
	if !vecClose(bounds.Min, core.NewVec3(-1, -2, -3)) || !vecClose(bounds.Max, core.NewVec3(1, 2, 3)) {
		t.Errorf("Unexpected bounds %v", bounds)
	}
	if box.TriangleCount() != 12 {
		t.Errorf("Expected 12 triangles, got %d", box.TriangleCount())
	}
}

func TestNewBox_FacesPointOutward(t *testing.T) {
	box := NewBox(core.NewVec3(2, 2, 2))
	for i, tri := range box.Triangles() {
		if tri.Normal().Dot(tri.Centroid()) <= 0 {
			t.Errorf("Triangle %d normal %v points inward", i, tri.Normal())
		}
	}
}

func TestFindClosestPoint_Linear(t *testing.T) {
	box := NewBox(core.NewVec3(2, 2, 2))

	tests := []struct {
		name     string
		point    core.Vec3
		expected core.Vec3
	}{
		{"Above the top face", core.NewVec3(0.2, 5, -0.3), core.NewVec3(0.2, 1, -0.3)},
		{"Off a corner", core.NewVec3(3, 3, 3), core.NewVec3(1, 1, 1)},
		{"Inside near +X", core.NewVec3(0.9, 0, 0), core.NewVec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindClosestPoint(box, tt.point)
			if !ok {
				t.Fatal("Expected a result")
			}
			if !vecClose(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	if _, ok := FindClosestPoint(&Mesh{}, core.NewVec3(0, 0, 0)); ok {
		t.Error("Expected no result for an empty mesh")
	}
	if _, ok := FindClosestPoint(nil, core.NewVec3(0, 0, 0)); ok {
		t.Error("Expected no result for a nil mesh")
	}
}

func TestFindClosestPoint_DistanceMatchesBox(t *testing.T) {
	box := NewBox(core.NewVec3(2, 2, 2))
	bounds := box.Bounds()
	for _, p := range []core.Vec3{core.NewVec3(4, 0.5, -0.5), core.NewVec3(-2, -2, 0), core.NewVec3(0, 0, 7)} {
		got, _ := FindClosestPoint(box, p)
		want := math.Sqrt(bounds.DistanceSquared(p))
		if math.Abs(got.Distance(p)-want) > tolerance {
			t.Errorf("Point %v: expected distance %f, got %f", p, want, got.Distance(p))
		}
	}
}
