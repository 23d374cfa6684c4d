package geometry

import (
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
)

// Triangle is a single triangle with its supporting plane and three wall planes.
// Each wall contains one edge and the triangle normal, and faces away from the
// opposite vertex.
type Triangle struct {
	A, B, C core.Vec3

	Plane  Plane // Supporting plane, normal (B-A) x (C-A)
	WallAB Plane
	WallBC Plane
	WallCA Plane
}

// NewTriangle creates a triangle and precomputes its planes
func NewTriangle(a, b, c core.Vec3) Triangle {
	t := Triangle{A: a, B: b, C: c}
	t.computePlanes()
	return t
}

func (t *Triangle) computePlanes() {
	t.Plane = NewPlaneFromPoints(t.A, t.B, t.C)
	n := t.Plane.Normal
	t.WallAB = NewPlaneFromPoints(t.A, t.B, t.A.Add(n))
	t.WallBC = NewPlaneFromPoints(t.B, t.C, t.B.Add(n))
	t.WallCA = NewPlaneFromPoints(t.C, t.A, t.C.Add(n))
}

// Normal returns the unit normal of the triangle
func (t Triangle) Normal() core.Vec3 {
	return t.Plane.Normal
}

// IsDegenerate reports whether the triangle has zero area
func (t Triangle) IsDegenerate() bool {
	return t.Plane.IsDegenerate()
}

// Bounds returns the axis-aligned bounding box for this triangle
func (t Triangle) Bounds() core.AABB {
	return core.NewAABBFromPoints(t.A, t.B, t.C)
}

// Centroid returns the average of the three vertices
func (t Triangle) Centroid() core.Vec3 {
	return t.A.Add(t.B).Add(t.C).Multiply(1.0 / 3.0)
}

// ClosestPoint returns the point on the triangle nearest to p.
//
// A point on the outward side of a wall is closest to that wall's edge. Near a
// corner two walls can face p, so every such edge is tried and the nearest wins.
// Otherwise p projects straight onto the face.
func (t Triangle) ClosestPoint(p core.Vec3) core.Vec3 {
	if t.IsDegenerate() {
		return t.closestOnEdges(p, true, true, true)
	}

	ab := t.WallAB.SideOf(p)
	bc := t.WallBC.SideOf(p)
	ca := t.WallCA.SideOf(p)
	if ab || bc || ca {
		return t.closestOnEdges(p, ab, bc, ca)
	}

	return t.Plane.ClosestPoint(p)
}

func (t Triangle) closestOnEdges(p core.Vec3, ab, bc, ca bool) core.Vec3 {
	best := core.Vec3{}
	bestDist := math.Inf(1)

	consider := func(enabled bool, a, b core.Vec3) {
		if !enabled {
			return
		}
		candidate := core.ClosestPointOnSegment(a, b, p)
		if d := candidate.DistanceSquared(p); d < bestDist {
			bestDist = d
			best = candidate
		}
	}

	consider(ab, t.A, t.B)
	consider(bc, t.B, t.C)
	consider(ca, t.C, t.A)
	return best
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm.
// It returns the ray parameter and whether the ray struck the front face
// (the side the normal points to).
func (t Triangle) Hit(ray core.Ray, tMin, tMax float64) (float64, bool, bool) {
	const epsilon = 1e-8

	// Calculate two edge vectors
	edge1 := t.B.Subtract(t.A)
	edge2 := t.C.Subtract(t.A)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return 0, false, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.A)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false, false
	}

	tParam := f * edge2.Dot(q)
	if tParam < tMin || tParam > tMax {
		return 0, false, false
	}

	// A positive determinant means the ray travels against the normal
	return tParam, a > 0, true
}
