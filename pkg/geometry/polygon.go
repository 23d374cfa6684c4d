package geometry

import (
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
)

// PolygonContainsXZ tests p against the polygon formed by points projected onto
// the XZ plane using the even-odd rule. The last point connects back to the first.
func PolygonContainsXZ(points []core.Vec3, p core.Vec3) bool {
	inside := false
	j := len(points) - 1
	for i := 0; i < len(points); j, i = i, i+1 {
		pi := points[i]
		pj := points[j]
		crosses := (pi.Z <= p.Z && p.Z < pj.Z) || (pj.Z <= p.Z && p.Z < pi.Z)
		if crosses && p.X < core.SafeDivision((pj.X-pi.X)*(p.Z-pi.Z), pj.Z-pi.Z)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// ClosestPointOnPolyline returns the point on the consecutive segments of
// points nearest to p. Fewer than two points yields no result.
func ClosestPointOnPolyline(points []core.Vec3, p core.Vec3) (core.Vec3, bool) {
	if len(points) < 2 {
		return core.Vec3{}, false
	}

	best := points[0]
	bestDist := math.Inf(1)
	for i := 1; i < len(points); i++ {
		candidate := core.ClosestPointOnSegment(points[i-1], points[i], p)
		if d := candidate.DistanceSquared(p); d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	return best, true
}

// FlattenXZ returns a copy of points with every Y set to height
func FlattenXZ(points []core.Vec3, height float64) []core.Vec3 {
	flat := make([]core.Vec3, len(points))
	for i, p := range points {
		flat[i] = core.NewVec3(p.X, height, p.Z)
	}
	return flat
}
