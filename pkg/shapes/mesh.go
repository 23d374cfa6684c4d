package shapes

import (
	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
	"github.com/df07/volumetric-audio/pkg/mesh"
)

const (
	// DefaultRaySeparation is how far each parity ray steps past a hit before casting again
	DefaultRaySeparation = 0.1
	// MaxRaycastHits caps each parity ray chain
	MaxRaycastHits = 50
)

// Mesh is an arbitrary triangle mesh volume. The closest point comes from the
// baked tree when present and a linear scan otherwise. Inside tests count
// vertical ray hits against Collider, so a solid mesh needs a closed,
// outward-facing collider.
type Mesh struct {
	Base
	Mesh          *mesh.Mesh
	Tree          *mesh.Tree
	Collider      mesh.Raycaster // Nil means the listener is never inside
	Layers        mesh.LayerMask
	RaySeparation float64
}

// NewMesh creates a hollow mesh shape. Meshes default to hollow so open
// meshes never claim the listener is inside.
func NewMesh(pose core.PoseProvider, m *mesh.Mesh, collider mesh.Raycaster) *Mesh {
	return &Mesh{
		Base:          Base{Hollow: true, Pose: pose},
		Mesh:          m,
		Tree:          mesh.NewTree(),
		Collider:      collider,
		Layers:        mesh.AllLayers,
		RaySeparation: DefaultRaySeparation,
	}
}

func (m *Mesh) Kind() Kind {
	return KindMesh
}

// Bake builds the spatial index for the current mesh
func (m *Mesh) Bake() {
	if m.Tree == nil {
		m.Tree = mesh.NewTree()
	}
	m.Tree.Bake(m.Mesh)
}

// ClearBake drops the spatial index; queries fall back to a linear scan
func (m *Mesh) ClearBake() {
	if m.Tree != nil {
		m.Tree.Clear()
	}
}

// IsBaked reports whether queries use the spatial index
func (m *Mesh) IsBaked() bool {
	return m.Tree.IsBaked()
}

func (m *Mesh) transform() core.Transform {
	return core.NewTransform(m.pose().Matrix())
}

func (m *Mesh) closestLocalPoint(p core.Vec3) (core.Vec3, bool) {
	if m.IsBaked() {
		return m.Tree.FindClosestPoint(p)
	}
	return mesh.FindClosestPoint(m.Mesh, p)
}

func (m *Mesh) Update(listener core.Vec3, available bool) {
	m.begin(listener)
	if !available || m.Mesh.IsEmpty() {
		return
	}
	tr := m.transform()
	if !tr.Invertible() {
		return
	}

	local := tr.InversePoint(listener)
	closest, ok := m.closestLocalPoint(local)
	if !ok {
		return
	}
	world := tr.Point(closest)

	switch {
	case m.Hollow:
		m.setOuter(world)
	case m.contains(local, listener):
		m.setInner(listener, true)
		m.setOuter(world)
	default:
		m.setInnerOuter(world, false)
	}
}

// contains requires the local point inside the mesh bounds and an odd number
// of ray hits
func (m *Mesh) contains(local, world core.Vec3) bool {
	if !m.Mesh.Bounds().Contains(local) {
		return false
	}
	hits := m.raycastHitCount(world, core.Up, m.RaySeparation)
	return hits > 0 && core.SafeRemainder(hits, 2) != 0
}

// raycastHitCount counts one-sided hits along two chains: from origin along
// direction, and from origin+direction*size back toward origin. With a closed
// mesh the total is odd exactly when origin is inside.
func (m *Mesh) raycastHitCount(origin, direction core.Vec3, separation float64) int {
	if m.Collider == nil || separation <= 0 {
		return 0
	}

	size := m.Collider.WorldBounds().Size().Length()
	forward := core.NewRay(origin, direction)
	backward := core.NewRay(origin.Add(direction.Multiply(size)), direction.Negate())

	return m.castChain(forward, size, separation) + m.castChain(backward, size, separation)
}

func (m *Mesh) castChain(ray core.Ray, length, separation float64) int {
	hits := 0
	for i := 0; i < MaxRaycastHits; i++ {
		hit, ok := m.Collider.Raycast(ray, length, m.Layers)
		if !ok {
			break
		}
		length -= hit.Distance + separation
		ray.Origin = hit.Point.Add(ray.Direction.Multiply(separation))
		hits++
	}
	return hits
}

func (m *Mesh) CullRect(margin float64) culling.Rect {
	if m.Mesh.IsEmpty() {
		return culling.Empty()
	}
	corners := m.Mesh.Bounds().Corners()
	return transformedRect(m.transform(), margin, corners[:]...)
}
