package shapes

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
	"github.com/df07/volumetric-audio/pkg/geometry"
)

// PathMode selects how a Path is interpreted
type PathMode int

const (
	Polyline     PathMode = iota // Open line through the points
	PolygonPrism                 // Closed XZ polygon extruded upward by Depth
)

func (m PathMode) String() string {
	if m == PolygonPrism {
		return "polygon_prism"
	}
	return "polyline"
}

// ParsePathMode accepts "polyline" or "polygon_prism" in any case
func ParsePathMode(name string) (PathMode, error) {
	switch strings.ToLower(name) {
	case "polyline", "path", "":
		return Polyline, nil
	case "polygon_prism", "polygon", "volumetric_polygon":
		return PolygonPrism, nil
	}
	return 0, fmt.Errorf("unknown path mode %q", name)
}

// Path is a polyline or polygon prism defined by at least two points.
//
// In local mode the points live in the pose's local space and the prism spans
// local y in [0, Depth]. In flattened mode the points are baked once to world
// XZ and the prism spans world y in [pose y, pose y + Depth].
type Path struct {
	Base
	Points  []core.Vec3
	Mode    PathMode
	Depth   float64
	Flatten bool

	source *Path
	flat   []core.Vec3 // World XZ copy at y = 0, baked lazily
	baked  bool
}

// NewPath creates a path in local mode
func NewPath(pose core.PoseProvider, points []core.Vec3, mode PathMode, depth float64, hollow bool) *Path {
	return &Path{Base: Base{Hollow: hollow, Pose: pose}, Points: points, Mode: mode, Depth: depth}
}

func (p *Path) Kind() Kind {
	if p.Mode == PolygonPrism {
		return KindPolygonPrism
	}
	return KindPolyline
}

// ClonePoints makes p share source's points instead of its own. In flattened
// mode p also shares source's baked world copy.
func (p *Path) ClonePoints(source *Path) {
	if source == p {
		return
	}
	p.source = source
	p.flat = nil
	p.baked = false
}

func (p *Path) points() []core.Vec3 {
	if p.source != nil {
		return p.source.points()
	}
	return p.Points
}

// Bake captures the world XZ positions of the points for flattened mode.
// It runs automatically on first use; call it again after moving the pose.
func (p *Path) Bake() {
	if p.source != nil {
		p.source.Bake()
		p.flat = p.source.flat
		p.baked = true
		return
	}

	pose := p.pose()
	p.flat = make([]core.Vec3, len(p.Points))
	for i, pt := range p.Points {
		world := pose.TransformPoint(pt)
		p.flat[i] = core.NewVec3(world.X, 0, world.Z)
	}
	p.baked = true
}

func (p *Path) worldPoints() []core.Vec3 {
	if !p.baked {
		p.Bake()
	}
	return p.flat
}

func (p *Path) transform() core.Transform {
	return core.NewTransform(p.pose().Matrix())
}

func (p *Path) Update(listener core.Vec3, available bool) {
	p.begin(listener)
	if !available {
		return
	}
	if p.Flatten {
		p.updateFlattened(listener)
		return
	}
	p.updateLocal(listener)
}

func (p *Path) updateLocal(listener core.Vec3) {
	points := p.points()
	if len(points) < 2 {
		return
	}
	tr := p.transform()
	if !tr.Invertible() {
		return
	}

	local := tr.InversePoint(listener)

	if p.Mode == Polyline {
		closest, _ := geometry.ClosestPointOnPolyline(points, local)
		p.setInnerOuter(tr.Point(closest), false)
		return
	}

	flat := closedRing(geometry.FlattenXZ(points, 0))
	edgeAt := func(q core.Vec3) core.Vec3 {
		c, _ := geometry.ClosestPointOnPolyline(flat, core.NewVec3(q.X, 0, q.Z))
		return core.NewVec3(c.X, q.Y, c.Z)
	}

	closest := local
	insideDepth := local.Y > 0 && local.Y < p.Depth
	if !insideDepth {
		closest.Y = math.Max(0, math.Min(p.Depth, local.Y))
	}
	insidePolygon := geometry.PolygonContainsXZ(points, closest)
	if !insidePolygon {
		closest = edgeAt(closest)
	}

	inside := insideDepth && insidePolygon
	p.setInner(tr.Point(closest), inside)

	outer := closest
	if inside {
		outer = edgeAt(closest)
	}
	p.setOuter(tr.Point(outer))
}

func (p *Path) updateFlattened(listener core.Vec3) {
	flat := p.worldPoints()
	if len(flat) < 2 {
		return
	}

	minHeight := p.pose().Position.Y
	maxHeight := minHeight + p.Depth

	edges := flat
	if p.Mode == PolygonPrism {
		edges = closedRing(flat)
	}
	edge, _ := geometry.ClosestPointOnPolyline(edges, core.NewVec3(listener.X, 0, listener.Z))
	closePoint := core.NewVec3(edge.X, minHeight, edge.Z)

	if p.Mode == Polyline {
		p.setInnerOuter(closePoint, false)
		return
	}

	inner, outer := listener, listener
	insideDepth := listener.Y > minHeight && listener.Y < maxHeight
	insidePolygon := geometry.PolygonContainsXZ(flat, listener)

	if !insideDepth {
		inner.Y = math.Max(minHeight, math.Min(maxHeight, inner.Y))
	} else if outer.Y > (minHeight+maxHeight)*0.5 {
		outer.Y = maxHeight
	} else {
		outer.Y = minHeight
	}

	if !insidePolygon {
		inner.X, inner.Z = closePoint.X, closePoint.Z
	} else {
		outer.X, outer.Z = closePoint.X, closePoint.Z
	}

	p.setInner(inner, insideDepth && insidePolygon)
	p.setOuter(outer)
}

// closedRing appends the first point when the ring is left open, so the
// closing edge takes part in nearest-edge queries
func closedRing(points []core.Vec3) []core.Vec3 {
	if len(points) < 3 || points[0] == points[len(points)-1] {
		return points
	}
	return append(points[:len(points):len(points)], points[0])
}

func (p *Path) CullRect(margin float64) culling.Rect {
	if p.Flatten {
		return culling.FromPoints(margin, p.worldPoints()...)
	}
	return transformedRect(p.transform(), margin, p.points()...)
}
