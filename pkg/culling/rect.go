package culling

import (
	"fmt"
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
)

// Rect is an axis-aligned rectangle on the world XZ plane
type Rect struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// Empty returns a rectangle that contains nothing and grows to fit the first point added
func Empty() Rect {
	return Rect{
		MinX: math.MaxFloat64,
		MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MaxZ: -math.MaxFloat64,
	}
}

// Infinite returns a rectangle that contains every point
func Infinite() Rect {
	return Rect{
		MinX: math.Inf(-1),
		MinZ: math.Inf(-1),
		MaxX: math.Inf(1),
		MaxZ: math.Inf(1),
	}
}

// FromPoints returns the rectangle around the XZ projection of points, grown by margin
func FromPoints(margin float64, points ...core.Vec3) Rect {
	r := Empty()
	for _, p := range points {
		r = r.ExpandPoint(p)
	}
	return r.ExpandMargin(margin)
}

// ExpandPoint grows the rectangle to include the XZ projection of p
func (r Rect) ExpandPoint(p core.Vec3) Rect {
	r.MinX = math.Min(r.MinX, p.X)
	r.MaxX = math.Max(r.MaxX, p.X)
	r.MinZ = math.Min(r.MinZ, p.Z)
	r.MaxZ = math.Max(r.MaxZ, p.Z)
	return r
}

// ExpandMargin grows the rectangle by margin on every side.
// An empty rectangle stays empty.
func (r Rect) ExpandMargin(margin float64) Rect {
	if r.IsEmpty() {
		return r
	}
	r.MinX -= margin
	r.MinZ -= margin
	r.MaxX += margin
	r.MaxZ += margin
	return r
}

// IsEmpty reports whether the rectangle can contain no point
func (r Rect) IsEmpty() bool {
	return r.MinX > r.MaxX || r.MinZ > r.MaxZ
}

// IsBounded reports whether every edge is finite
func (r Rect) IsBounded() bool {
	return !math.IsInf(r.MinX, 0) && !math.IsInf(r.MinZ, 0) &&
		!math.IsInf(r.MaxX, 0) && !math.IsInf(r.MaxZ, 0)
}

// Contains reports whether the XZ projection of p lies inside or on the rectangle
func (r Rect) Contains(p core.Vec3) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Z >= r.MinZ && p.Z <= r.MaxZ
}

func (r Rect) String() string {
	return fmt.Sprintf("[x %.3f..%.3f, z %.3f..%.3f]", r.MinX, r.MaxX, r.MinZ, r.MaxZ)
}
