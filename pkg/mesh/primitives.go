package mesh

import "github.com/df07/volumetric-audio/pkg/core"

// NewBox creates a closed box mesh centered at the origin with outward-facing triangles
func NewBox(size core.Vec3) *Mesh {
	half := size.Multiply(0.5)
	corners := core.NewAABB(half.Negate(), half).Corners()
	return &Mesh{
		Vertices: corners[:],
		Indices: []int{
			0, 2, 1, 0, 3, 2, // -Z
			4, 5, 6, 4, 6, 7, // +Z
			0, 1, 5, 0, 5, 4, // -Y
			3, 7, 6, 3, 6, 2, // +Y
			0, 4, 7, 0, 7, 3, // -X
			1, 2, 6, 1, 6, 5, // +X
		},
	}
}

// NewQuad creates a single-sided square in the XZ plane facing +Y
func NewQuad(size float64) *Mesh {
	h := size * 0.5
	return &Mesh{
		Vertices: []core.Vec3{
			core.NewVec3(-h, 0, -h),
			core.NewVec3(h, 0, -h),
			core.NewVec3(h, 0, h),
			core.NewVec3(-h, 0, h),
		},
		Indices: []int{0, 3, 2, 0, 2, 1},
	}
}
