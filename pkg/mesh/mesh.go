package mesh

import (
	"fmt"
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/geometry"
)

// Mesh is an indexed triangle list in local space
type Mesh struct {
	Vertices []core.Vec3
	Indices  []int // Each group of 3 indices forms a triangle
}

// New creates a mesh from vertices and face indices.
// indices must be a multiple of 3 and every index must reference a vertex.
func New(vertices []core.Vec3, indices []int) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("face indices must be a multiple of 3, got %d", len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(vertices) {
			return nil, fmt.Errorf("face index %d at position %d out of bounds (%d vertices)", idx, i, len(vertices))
		}
	}
	return &Mesh{Vertices: vertices, Indices: indices}, nil
}

// TriangleCount returns the number of triangles in the mesh
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no triangles
func (m *Mesh) IsEmpty() bool {
	return m.TriangleCount() == 0
}

// Triangle returns triangle i with its planes computed
func (m *Mesh) Triangle(i int) geometry.Triangle {
	return geometry.NewTriangle(
		m.Vertices[m.Indices[i*3]],
		m.Vertices[m.Indices[i*3+1]],
		m.Vertices[m.Indices[i*3+2]],
	)
}

// Triangles returns every triangle of the mesh
func (m *Mesh) Triangles() []geometry.Triangle {
	triangles := make([]geometry.Triangle, m.TriangleCount())
	for i := range triangles {
		triangles[i] = m.Triangle(i)
	}
	return triangles
}

// Bounds returns the bounding box of all referenced vertices
func (m *Mesh) Bounds() core.AABB {
	if m.IsEmpty() {
		return core.AABB{}
	}
	bounds := core.NewAABBFromPoints(m.Vertices[m.Indices[0]])
	for _, idx := range m.Indices[1:] {
		bounds = bounds.Union(core.NewAABBFromPoints(m.Vertices[idx]))
	}
	return bounds
}

// FindClosestPoint scans every triangle for the point nearest to p.
// Used when no tree has been baked. An empty mesh yields no result.
func FindClosestPoint(m *Mesh, p core.Vec3) (core.Vec3, bool) {
	if m.IsEmpty() {
		return core.Vec3{}, false
	}

	best := core.Vec3{}
	bestDist := math.Inf(1)
	found := false
	for i := 0; i < m.TriangleCount(); i++ {
		candidate := m.Triangle(i).ClosestPoint(p)
		if d := candidate.DistanceSquared(p); d < bestDist || !found {
			bestDist = d
			best = candidate
			found = true
		}
	}
	return best, found
}
