package shapes

import (
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
)

// Box is an oriented box. Queries run in a unit-cube frame where the box
// spans [-0.5, 0.5] on every axis.
type Box struct {
	Base
	Center core.Vec3 // Offset in the pose's local space
	Size   core.Vec3
}

// NewBox creates a box with the given center offset and size
func NewBox(pose core.PoseProvider, center, size core.Vec3, hollow bool) *Box {
	return &Box{Base: Base{Hollow: hollow, Pose: pose}, Center: center, Size: size}
}

func (b *Box) Kind() Kind {
	return KindBox
}

// transform maps the unit cube onto the box: T(center) * R * S(scale * size)
func (b *Box) transform() core.Transform {
	pose := b.pose()
	return core.NewTransform(core.TRS(pose.TransformPoint(b.Center), pose.Rotation, pose.Scale.MultiplyVec(b.Size)))
}

func (b *Box) Update(listener core.Vec3, available bool) {
	b.begin(listener)
	if !available {
		return
	}
	tr := b.transform()
	if !tr.Invertible() {
		return
	}

	local := tr.InversePoint(listener)
	switch {
	case b.Hollow:
		b.setOuter(tr.Point(snapToUnitBox(local)))
	case insideUnitBox(local):
		b.setInner(listener, true)
		b.setOuter(tr.Point(snapToUnitBox(local)))
	default:
		b.setInnerOuter(tr.Point(local.Clamp(-0.5, 0.5)), false)
	}
}

func (b *Box) CullRect(margin float64) culling.Rect {
	tr := b.transform()
	unit := core.NewAABB(core.NewVec3(-0.5, -0.5, -0.5), core.NewVec3(0.5, 0.5, 0.5)).Corners()
	return transformedRect(tr, margin, unit[:]...)
}

func insideUnitBox(p core.Vec3) bool {
	return p.X >= -0.5 && p.X <= 0.5 &&
		p.Y >= -0.5 && p.Y <= 0.5 &&
		p.Z >= -0.5 && p.Z <= 0.5
}

// snapToUnitBox scales p along its own direction until it touches the unit
// cube surface. The origin stays put.
func snapToUnitBox(p core.Vec3) core.Vec3 {
	largest := math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z)))
	return p.Multiply(core.SafeDivision(0.5, largest))
}
