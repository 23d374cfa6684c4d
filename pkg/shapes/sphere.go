package shapes

import (
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
)

// Sphere is a sphere of Radius in the pose's local space; non-uniform pose
// scale stretches it into an ellipsoid.
type Sphere struct {
	Base
	Center core.Vec3
	Radius float64
}

// NewSphere creates a sphere
func NewSphere(pose core.PoseProvider, center core.Vec3, radius float64, hollow bool) *Sphere {
	return &Sphere{Base: Base{Hollow: hollow, Pose: pose}, Center: center, Radius: radius}
}

func (s *Sphere) Kind() Kind {
	return KindSphere
}

func (s *Sphere) transform() core.Transform {
	pose := s.pose()
	return core.NewTransform(core.TRS(pose.TransformPoint(s.Center), pose.Rotation, pose.Scale))
}

func (s *Sphere) radius() float64 {
	return math.Max(0, s.Radius)
}

func (s *Sphere) Update(listener core.Vec3, available bool) {
	s.begin(listener)
	if !available {
		return
	}
	tr := s.transform()
	if !tr.Invertible() {
		return
	}

	r := s.radius()
	local := tr.InversePoint(listener)
	snapped := tr.Point(local.Normalize().Multiply(r))
	switch {
	case s.Hollow:
		s.setOuter(snapped)
	case local.LengthSquared() < r*r:
		s.setInner(listener, true)
		s.setOuter(snapped)
	default:
		s.setInnerOuter(snapped, false)
	}
}

func (s *Sphere) CullRect(margin float64) culling.Rect {
	r := s.radius()
	corners := core.NewAABB(core.NewVec3(-r, -r, -r), core.NewVec3(r, r, r)).Corners()
	return transformedRect(s.transform(), margin, corners[:]...)
}
