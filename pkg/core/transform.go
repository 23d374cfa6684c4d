package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a resolved world placement: translation, rotation and per-axis scale.
// The zero Pose has zero scale and is therefore singular; use IdentityPose or NewPose.
type Pose struct {
	Position Vec3
	Rotation mgl64.Quat
	Scale    Vec3
}

// IdentityPose returns a pose at the origin with no rotation and unit scale
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent(), Scale: NewVec3(1, 1, 1)}
}

// NewPose creates a pose from a position, Euler angles in degrees and a scale
func NewPose(position, eulerDegrees, scale Vec3) Pose {
	return Pose{Position: position, Rotation: EulerRotation(eulerDegrees), Scale: scale}
}

// WorldPose lets a bare Pose act as its own PoseProvider
func (p Pose) WorldPose() Pose {
	return p
}

// Matrix returns the local-to-world matrix T * R * S
func (p Pose) Matrix() mgl64.Mat4 {
	return TRS(p.Position, p.Rotation, p.Scale)
}

// Rotate applies only the pose rotation to v
func (p Pose) Rotate(v Vec3) Vec3 {
	return FromMgl(p.rotation().Rotate(ToMgl(v)))
}

// TransformPoint maps a local point into world space
func (p Pose) TransformPoint(v Vec3) Vec3 {
	return p.Position.Add(p.Rotate(v.MultiplyVec(p.Scale)))
}

// rotation treats the zero quaternion as identity
func (p Pose) rotation() mgl64.Quat {
	return p.Rotation.Normalize()
}

// TRS composes translation, rotation and scale into one matrix
func TRS(position Vec3, rotation mgl64.Quat, scale Vec3) mgl64.Mat4 {
	t := mgl64.Translate3D(position.X, position.Y, position.Z)
	r := Pose{Rotation: rotation}.rotation().Mat4()
	s := mgl64.Scale3D(scale.X, scale.Y, scale.Z)
	return t.Mul4(r).Mul4(s)
}

// EulerRotation builds a rotation from degrees applied Z first, then X, then Y
func EulerRotation(degrees Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(degrees.X), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(degrees.Y), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(degrees.Z), mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz)
}

// ToMgl converts a Vec3 into an mgl64 vector
func ToMgl(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts an mgl64 vector into a Vec3
func FromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// singularThreshold bounds the determinant relative to the product of the
// basis lengths; below it the axes are too close to coplanar to invert
const singularThreshold = 1e-12

// Transform is a local-to-world matrix paired with its inverse
type Transform struct {
	matrix     mgl64.Mat4
	inverse    mgl64.Mat4
	invertible bool
}

// NewTransform caches the inverse of m when it exists
func NewTransform(m mgl64.Mat4) Transform {
	if !isInvertible(m) {
		return Transform{matrix: m}
	}
	return Transform{matrix: m, inverse: m.Inv(), invertible: true}
}

// isInvertible compares the determinant against the basis volume so that
// uniformly tiny scales stay invertible while collapsed axes do not
func isInvertible(m mgl64.Mat4) bool {
	det := m.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return false
	}
	basis := m.Mat3()
	volume := basis.Col(0).Len() * basis.Col(1).Len() * basis.Col(2).Len()
	return math.Abs(det) > singularThreshold*volume
}

// Matrix returns the local-to-world matrix
func (t Transform) Matrix() mgl64.Mat4 {
	return t.matrix
}

// Invertible reports whether world points can be mapped back to local space
func (t Transform) Invertible() bool {
	return t.invertible
}

// Point maps a local point into world space
func (t Transform) Point(p Vec3) Vec3 {
	return FromMgl(mgl64.TransformCoordinate(ToMgl(p), t.matrix))
}

// Direction maps a local direction into world space, ignoring translation
func (t Transform) Direction(d Vec3) Vec3 {
	return FromMgl(mgl64.TransformNormal(ToMgl(d), t.matrix))
}

// InversePoint maps a world point into local space.
// Callers must check Invertible first; a singular transform returns the input.
func (t Transform) InversePoint(p Vec3) Vec3 {
	if !t.invertible {
		return p
	}
	return FromMgl(mgl64.TransformCoordinate(ToMgl(p), t.inverse))
}

// InverseDirection maps a world direction into local space
func (t Transform) InverseDirection(d Vec3) Vec3 {
	if !t.invertible {
		return d
	}
	return FromMgl(mgl64.TransformNormal(ToMgl(d), t.inverse))
}

// InverseTransposeNormal maps a local surface normal into world space
func (t Transform) InverseTransposeNormal(n Vec3) Vec3 {
	if !t.invertible {
		return n
	}
	return FromMgl(mgl64.TransformNormal(ToMgl(n), t.inverse.Transpose())).Normalize()
}
