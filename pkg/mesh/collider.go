package mesh

import (
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
)

// LayerMask selects collider layers by bit; layer n is bit 1<<n
type LayerMask uint32

// AllLayers matches every collider
const AllLayers LayerMask = ^LayerMask(0)

// Includes reports whether layer is selected by the mask
func (m LayerMask) Includes(layer int) bool {
	return layer >= 0 && layer < 32 && m&(1<<uint(layer)) != 0
}

// RaycastHit describes where a ray struck a collider
type RaycastHit struct {
	Point    core.Vec3 // World-space hit point
	Normal   core.Vec3 // World-space face normal
	Distance float64   // Distance from the ray origin
	Collider *Collider
}

// Raycaster answers single-collider raycasts in world space
type Raycaster interface {
	Raycast(ray core.Ray, maxDistance float64, layers LayerMask) (RaycastHit, bool)
	WorldBounds() core.AABB
}

// Collider is a one-sided mesh collider placed in the world by a pose.
// Rays only hit faces whose normal points back toward the ray origin.
type Collider struct {
	Mesh  *Mesh
	Pose  core.PoseProvider
	Layer int
	tree  *Tree
}

// NewCollider creates a collider on layer 0 and bakes its raycast hierarchy
func NewCollider(m *Mesh, pose core.PoseProvider) *Collider {
	tree := NewTree()
	tree.Bake(m)
	return &Collider{Mesh: m, Pose: pose, tree: tree}
}

func (c *Collider) transform() core.Transform {
	if c.Pose == nil {
		return core.NewTransform(core.IdentityPose().Matrix())
	}
	return core.NewTransform(c.Pose.WorldPose().Matrix())
}

// Raycast returns the nearest front-face hit within maxDistance along ray.
// The ray direction need not be normalized; the reported distance is in world units.
// A collider outside layers is never hit.
func (c *Collider) Raycast(ray core.Ray, maxDistance float64, layers LayerMask) (RaycastHit, bool) {
	if c == nil || c.Mesh.IsEmpty() || maxDistance <= 0 || !layers.Includes(c.Layer) {
		return RaycastHit{}, false
	}
	tr := c.transform()
	if !tr.Invertible() {
		return RaycastHit{}, false
	}

	dirLength := ray.Direction.Length()
	if dirLength == 0 {
		return RaycastHit{}, false
	}
	worldDir := ray.Direction.Multiply(1 / dirLength)

	// An affine map preserves the ray parameter, so a unit world direction
	// keeps t equal to world distance in local space
	local := core.NewRay(tr.InversePoint(ray.Origin), tr.InverseDirection(worldDir))

	// Facing is decided in local space; the inverse transpose keeps the
	// outward normal outward even under mirroring scales
	tHit, tri, ok := c.tree.Hit(local, 0, maxDistance, CullBack)
	if !ok {
		return RaycastHit{}, false
	}

	normal := tr.InverseTransposeNormal(tri.Normal())
	return RaycastHit{
		Point:    ray.Origin.Add(worldDir.Multiply(tHit)),
		Normal:   normal,
		Distance: tHit,
		Collider: c,
	}, true
}

// WorldBounds returns the world-space box around the transformed mesh bounds
func (c *Collider) WorldBounds() core.AABB {
	if c == nil || c.Mesh.IsEmpty() {
		return core.AABB{}
	}
	tr := c.transform()
	corners := c.Mesh.Bounds().Corners()
	world := make([]core.Vec3, len(corners))
	for i, corner := range corners {
		world[i] = tr.Point(corner)
	}
	return core.NewAABBFromPoints(world...)
}

// Size returns the diagonal length of the world bounds
func (c *Collider) Size() float64 {
	size := c.WorldBounds().Size().Length()
	if math.IsNaN(size) {
		return 0
	}
	return size
}
