package geometry

import (
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point  core.Vec3 // A point on the plane
	Normal core.Vec3 // Unit normal, or zero for a degenerate plane
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3) Plane {
	return Plane{
		Point:  point,
		Normal: normal.Normalize(),
	}
}

// NewPlaneFromPoints creates the plane through a, b and c.
// The normal follows the right-hand rule: (b-a) x (c-a).
func NewPlaneFromPoints(a, b, c core.Vec3) Plane {
	return NewPlane(a, b.Subtract(a).Cross(c.Subtract(a)))
}

// IsDegenerate reports whether the plane has no usable normal
func (p Plane) IsDegenerate() bool {
	return p.Normal.LengthSquared() == 0
}

// SignedDistance returns the distance from q to the plane, positive on the normal side
func (p Plane) SignedDistance(q core.Vec3) float64 {
	return p.Normal.Dot(q.Subtract(p.Point))
}

// SideOf reports whether q lies strictly on the normal side of the plane
func (p Plane) SideOf(q core.Vec3) bool {
	return p.SignedDistance(q) > 0
}

// ClosestPoint returns the orthogonal projection of q onto the plane
func (p Plane) ClosestPoint(q core.Vec3) core.Vec3 {
	return q.Subtract(p.Normal.Multiply(p.SignedDistance(q)))
}

// Hit returns the ray parameter where the ray crosses the plane
func (p Plane) Hit(ray core.Ray, tMin, tMax float64) (float64, bool) {
	// Calculate denominator: dot product of ray direction and plane normal
	denominator := ray.Direction.Dot(p.Normal)

	// Parallel rays never cross
	if math.Abs(denominator) < 1e-8 {
		return 0, false
	}

	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < tMin || t > tMax {
		return 0, false
	}
	return t, true
}
