// Package shapes answers, for a listener position, where the nearest point of
// each volume is and whether the listener is inside it.
//
// Every shape keeps two results. The outer point lies on the boundary surface.
// The inner point is the listener itself when it is inside a solid shape and
// the nearest boundary point otherwise. Hollow shapes report the outer point
// as their final point, solid shapes the inner point.
package shapes

import (
	"fmt"
	"strings"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
)

// Kind identifies the shape variant
type Kind int

const (
	KindBox Kind = iota
	KindSphere
	KindCapsule
	KindMesh
	KindPolyline
	KindPolygonPrism
	KindHalfSpace
)

var kindNames = [...]string{
	KindBox:          "box",
	KindSphere:       "sphere",
	KindCapsule:      "capsule",
	KindMesh:         "mesh",
	KindPolyline:     "polyline",
	KindPolygonPrism: "polygon_prism",
	KindHalfSpace:    "half_space",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a name produced by Kind.String back into a Kind
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown shape kind %q", name)
}

// ClosestPoint is one query result. Point and Distance keep their previous
// values when an update produces nothing; Set tells whether this tick wrote them.
type ClosestPoint struct {
	Set      bool
	Point    core.Vec3
	Distance float64 // Distance from the listener to Point
	Inside   bool    // Listener is inside the volume (inner points only)
}

// Shape is the common contract of every volume
type Shape interface {
	Kind() Kind

	// Update recomputes the closest points for the listener. With available
	// false nothing is computed and both results are marked unset.
	Update(listener core.Vec3, available bool)

	// CullRect returns the world XZ extent of the shape grown by margin
	CullRect(margin float64) culling.Rect

	OuterPoint() ClosestPoint
	InnerPoint() ClosestPoint
	FinalPoint() ClosestPoint

	IsHollow() bool
	Enabled() bool
	SetEnabled(enabled bool)
}

// Base holds the state every shape shares. Embed it and call begin at the
// start of Update.
type Base struct {
	Hollow bool              // Only the thin shell contributes
	Pose   core.PoseProvider // Nil means the identity pose

	outer    ClosestPoint
	inner    ClosestPoint
	disabled bool
	listener core.Vec3
}

// OuterPoint returns the closest point on the boundary surface
func (b *Base) OuterPoint() ClosestPoint {
	return b.outer
}

// InnerPoint returns the listener when inside, else the closest boundary point
func (b *Base) InnerPoint() ClosestPoint {
	return b.inner
}

// FinalPoint returns the outer point for hollow shapes and the inner point otherwise
func (b *Base) FinalPoint() ClosestPoint {
	if b.Hollow {
		return b.outer
	}
	return b.inner
}

func (b *Base) IsHollow() bool {
	return b.Hollow
}

// Enabled reports whether the shape should be updated; shapes start enabled
func (b *Base) Enabled() bool {
	return !b.disabled
}

func (b *Base) SetEnabled(enabled bool) {
	b.disabled = !enabled
}

func (b *Base) pose() core.Pose {
	if b.Pose == nil {
		return core.IdentityPose()
	}
	return b.Pose.WorldPose()
}

// begin clears the set flags for a new update
func (b *Base) begin(listener core.Vec3) {
	b.outer.Set = false
	b.inner.Set = false
	b.listener = listener
}

func (b *Base) setOuter(p core.Vec3) {
	b.outer = ClosestPoint{Set: true, Point: p, Distance: p.Distance(b.listener)}
}

func (b *Base) setInner(p core.Vec3, inside bool) {
	b.inner = ClosestPoint{Set: true, Point: p, Distance: p.Distance(b.listener), Inside: inside}
}

func (b *Base) setInnerOuter(p core.Vec3, inside bool) {
	b.setInner(p, inside)
	b.setOuter(p)
}

// transformedRect returns the XZ extent of local points under t, grown by margin
func transformedRect(t core.Transform, margin float64, local ...core.Vec3) culling.Rect {
	r := culling.Empty()
	for _, p := range local {
		r = r.ExpandPoint(t.Point(p))
	}
	return r.ExpandMargin(margin)
}
