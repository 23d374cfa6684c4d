package core

import (
	"math"
	"testing"
)

func TestAABB_FromPoints(t *testing.T) {
	box := NewAABBFromPoints(NewVec3(1, 2, 3), NewVec3(-1, 5, 0), NewVec3(0, 0, 4))
	if box.Min != NewVec3(-1, 0, 0) || box.Max != NewVec3(1, 5, 4) {
		t.Errorf("Expected [(-1,0,0),(1,5,4)], got [%v,%v]", box.Min, box.Max)
	}
	if !box.IsValid() {
		t.Error("Expected box from points to be valid")
	}
	if (NewAABBFromPoints() != AABB{}) {
		t.Error("Expected empty AABB for no points")
	}
}

func TestAABB_DistanceSquared(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		point    Vec3
		expected float64
	}{
		{"Inside", NewVec3(0.5, 0.5, 0.5), 0},
		{"On face", NewVec3(1, 0.5, 0.5), 0},
		{"Off one face", NewVec3(3, 0.5, 0.5), 4},
		{"Off a corner", NewVec3(2, 2, 2), 3},
		{"Below", NewVec3(0.5, -2, 0.5), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := box.DistanceSquared(tt.point)
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
			closest := box.ClosestPoint(tt.point)
			if d := closest.DistanceSquared(tt.point); math.Abs(d-tt.expected) > tolerance {
				t.Errorf("ClosestPoint %v disagrees with DistanceSquared: %f vs %f", closest, d, tt.expected)
			}
		})
	}
}

func TestAABB_Contains(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	if !box.Contains(NewVec3(1, 1, 1)) {
		t.Error("Expected corner to be contained")
	}
	if box.Contains(NewVec3(1.0001, 0, 0)) {
		t.Error("Expected point outside to not be contained")
	}
}

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	if !box.Hit(NewRay(NewVec3(-5, 0, 0), NewVec3(1, 0, 0)), 0, math.Inf(1)) {
		t.Error("Expected ray through center to hit")
	}
	if box.Hit(NewRay(NewVec3(-5, 2, 0), NewVec3(1, 0, 0)), 0, math.Inf(1)) {
		t.Error("Expected parallel ray above the box to miss")
	}
	if box.Hit(NewRay(NewVec3(-5, 0, 0), NewVec3(1, 0, 0)), 0, 3) {
		t.Error("Expected ray to miss when tMax ends before the box")
	}
}

func TestAABB_LongestAxis(t *testing.T) {
	tests := []struct {
		size     Vec3
		expected int
	}{
		{NewVec3(3, 1, 1), 0},
		{NewVec3(1, 3, 1), 1},
		{NewVec3(1, 1, 3), 2},
	}
	for _, tt := range tests {
		box := NewAABB(NewVec3(0, 0, 0), tt.size)
		if got := box.LongestAxis(); got != tt.expected {
			t.Errorf("Size %v: expected axis %d, got %d", tt.size, tt.expected, got)
		}
	}
}

func TestAABB_Corners(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 2, 3))
	corners := box.Corners()
	if NewAABBFromPoints(corners[:]...) != box {
		t.Errorf("Expected corners to bound the original box")
	}
}
