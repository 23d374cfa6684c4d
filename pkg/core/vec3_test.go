package core

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func vecClose(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < tolerance &&
		math.Abs(a.Y-b.Y) < tolerance &&
		math.Abs(a.Z-b.Z) < tolerance
}

func TestVec3_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		vector   Vec3
		expected Vec3
	}{
		{"Unit X", NewVec3(5, 0, 0), NewVec3(1, 0, 0)},
		{"Diagonal", NewVec3(3, 4, 0), NewVec3(0.6, 0.8, 0)},
		{"Zero vector stays zero", NewVec3(0, 0, 0), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.vector.Normalize()
			if !vecClose(result, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	if got := x.Cross(y); !vecClose(got, NewVec3(0, 0, 1)) {
		t.Errorf("Expected X x Y = Z, got %v", got)
	}
	if got := y.Cross(x); !vecClose(got, NewVec3(0, 0, -1)) {
		t.Errorf("Expected Y x X = -Z, got %v", got)
	}
}

func TestVec3_MinMaxAxis(t *testing.T) {
	a := NewVec3(1, 5, -2)
	b := NewVec3(3, -1, 0)

	if got := a.Min(b); got != NewVec3(1, -1, -2) {
		t.Errorf("Min: expected (1,-1,-2), got %v", got)
	}
	if got := a.Max(b); got != NewVec3(3, 5, 0) {
		t.Errorf("Max: expected (3,5,0), got %v", got)
	}
	for axis, want := range []float64{1, 5, -2} {
		if got := a.Axis(axis); got != want {
			t.Errorf("Axis(%d): expected %f, got %f", axis, want, got)
		}
	}
}

func TestVec3_IsFinite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("Expected finite vector")
	}
	if NewVec3(math.NaN(), 0, 0).IsFinite() {
		t.Error("Expected NaN component to be non-finite")
	}
	if NewVec3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Expected Inf component to be non-finite")
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 0, 0), NewVec3(0, 2, 0))
	if got := ray.At(1.5); !vecClose(got, NewVec3(1, 3, 0)) {
		t.Errorf("Expected (1,3,0), got %v", got)
	}
}
