package shapes

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
)

// Axis is the local axis a capsule runs along
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxis accepts "x", "y" or "z" in any case
func ParseAxis(name string) (Axis, error) {
	switch strings.ToLower(name) {
	case "x":
		return AxisX, nil
	case "y", "":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown capsule axis %q", name)
}

// Capsule is a cylinder of Radius capped by two hemispheres, Height long end to end.
// Queries run in a frame where the capsule runs along Y.
type Capsule struct {
	Base
	Center    core.Vec3
	Radius    float64
	Height    float64
	Direction Axis
}

// NewCapsule creates a capsule
func NewCapsule(pose core.PoseProvider, center core.Vec3, radius, height float64, direction Axis, hollow bool) *Capsule {
	return &Capsule{
		Base:      Base{Hollow: hollow, Pose: pose},
		Center:    center,
		Radius:    radius,
		Height:    height,
		Direction: direction,
	}
}

func (c *Capsule) Kind() Kind {
	return KindCapsule
}

// axisRotation turns the Y-aligned query frame onto the capsule's axis
func (c *Capsule) axisRotation() mgl64.Mat4 {
	switch c.Direction {
	case AxisX:
		return core.EulerRotation(core.NewVec3(0, 0, 90)).Mat4()
	case AxisZ:
		return core.EulerRotation(core.NewVec3(90, 0, 0)).Mat4()
	}
	return mgl64.Ident4()
}

// transform is T(center) * R * S * axis rotation, so pose scale applies along
// the pose's own axes whatever the capsule direction
func (c *Capsule) transform() core.Transform {
	pose := c.pose()
	m := core.TRS(pose.TransformPoint(c.Center), pose.Rotation, pose.Scale)
	return core.NewTransform(m.Mul4(c.axisRotation()))
}

func (c *Capsule) radius() float64 {
	return math.Max(0, c.Radius)
}

// halfHeight is the distance from the center to each cap's sphere center
func (c *Capsule) halfHeight() float64 {
	return math.Max(0, c.Height*0.5-c.radius())
}

func (c *Capsule) Update(listener core.Vec3, available bool) {
	c.begin(listener)
	if !available {
		return
	}
	tr := c.transform()
	if !tr.Invertible() {
		return
	}

	local := tr.InversePoint(listener)
	snapped := tr.Point(c.snap(local))
	switch {
	case c.Hollow:
		c.setOuter(snapped)
	case c.contains(local):
		c.setInner(listener, true)
		c.setOuter(snapped)
	default:
		c.setInnerOuter(snapped, false)
	}
}

// axisPoint returns the nearest point on the capsule's core segment
func (c *Capsule) axisPoint(p core.Vec3) core.Vec3 {
	h := c.halfHeight()
	return core.NewVec3(0, math.Max(-h, math.Min(h, p.Y)), 0)
}

func (c *Capsule) contains(p core.Vec3) bool {
	r := c.radius()
	return p.Subtract(c.axisPoint(p)).LengthSquared() < r*r
}

// snap pushes p out from the core segment to the surface: radially from the
// cap centers above and below, horizontally along the cylinder.
func (c *Capsule) snap(p core.Vec3) core.Vec3 {
	center := c.axisPoint(p)
	return center.Add(p.Subtract(center).Normalize().Multiply(c.radius()))
}

func (c *Capsule) CullRect(margin float64) culling.Rect {
	r := c.radius()
	extent := c.halfHeight() + r
	corners := core.NewAABB(core.NewVec3(-r, -extent, -r), core.NewVec3(r, extent, r)).Corners()
	return transformedRect(c.transform(), margin, corners[:]...)
}
