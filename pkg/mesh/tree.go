package mesh

import (
	"math"
	"sort"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/geometry"
)

// Leaf threshold: nodes with this many or fewer triangles become leaves
const leafThreshold = 4

// Node is a node of the mesh bounding volume hierarchy
type Node struct {
	Bounds    core.AABB
	Left      *Node
	Right     *Node
	Triangles []geometry.Triangle // Non-nil only for leaf nodes
}

// Tree is a bounding volume hierarchy over a mesh's triangles used for
// nearest-point queries and raycasts. A baked tree is read-only.
type Tree struct {
	root  *Node
	mesh  *Mesh
	count int
}

// NewTree creates an unbaked tree
func NewTree() *Tree {
	return &Tree{}
}

// Bake builds the hierarchy for m, discarding any previous one. Rebake after
// editing a mesh in place.
func (t *Tree) Bake(m *Mesh) {
	t.Clear()
	if m.IsEmpty() {
		return
	}

	triangles := m.Triangles()
	t.root = buildNode(triangles)
	t.mesh = m
	t.count = len(triangles)
}

// Clear returns the tree to the unbaked state
func (t *Tree) Clear() {
	t.root = nil
	t.mesh = nil
	t.count = 0
}

// IsBaked reports whether the tree holds a hierarchy
func (t *Tree) IsBaked() bool {
	return t != nil && t.root != nil
}

// Root returns the root node, or nil when unbaked
func (t *Tree) Root() *Node {
	return t.root
}

// buildNode recursively splits triangles at the median centroid of the longest axis
func buildNode(triangles []geometry.Triangle) *Node {
	bounds := triangles[0].Bounds()
	for _, tri := range triangles[1:] {
		bounds = bounds.Union(tri.Bounds())
	}

	if len(triangles) <= leafThreshold {
		return &Node{Bounds: bounds, Triangles: triangles}
	}

	axis := centroidBounds(triangles).LongestAxis()
	sort.Slice(triangles, func(i, j int) bool {
		return triangles[i].Centroid().Axis(axis) < triangles[j].Centroid().Axis(axis)
	})

	mid := len(triangles) / 2
	return &Node{
		Bounds: bounds,
		Left:   buildNode(triangles[:mid]),
		Right:  buildNode(triangles[mid:]),
	}
}

func centroidBounds(triangles []geometry.Triangle) core.AABB {
	points := make([]core.Vec3, len(triangles))
	for i, tri := range triangles {
		points[i] = tri.Centroid()
	}
	return core.NewAABBFromPoints(points...)
}

// FindClosestPoint returns the point on the mesh surface nearest to p.
// It reports false when the tree is not baked.
func (t *Tree) FindClosestPoint(p core.Vec3) (core.Vec3, bool) {
	if !t.IsBaked() {
		return core.Vec3{}, false
	}

	search := closestSearch{point: p, bestDist: math.Inf(1)}
	search.visit(t.root)
	return search.best, search.found
}

type closestSearch struct {
	point    core.Vec3
	best     core.Vec3
	bestDist float64
	found    bool
}

// visit descends into the nearer child first and skips any node whose box
// is no closer than the best candidate so far
func (s *closestSearch) visit(node *Node) {
	if node == nil || (s.found && node.Bounds.DistanceSquared(s.point) >= s.bestDist) {
		return
	}

	if node.Triangles != nil {
		for _, tri := range node.Triangles {
			candidate := tri.ClosestPoint(s.point)
			if d := candidate.DistanceSquared(s.point); d < s.bestDist || !s.found {
				s.best = candidate
				s.bestDist = d
				s.found = true
			}
		}
		return
	}

	first, second := node.Left, node.Right
	if second != nil && (first == nil || second.Bounds.DistanceSquared(s.point) < first.Bounds.DistanceSquared(s.point)) {
		first, second = second, first
	}
	s.visit(first)
	s.visit(second)
}

// Cull selects which triangle faces a raycast ignores
type Cull int

const (
	CullNone  Cull = iota // Both faces report hits
	CullBack              // Only faces the normal points toward the ray origin
	CullFront             // Only faces seen from behind
)

// Hit returns the nearest triangle intersection along the ray within [tMin, tMax]
func (t *Tree) Hit(ray core.Ray, tMin, tMax float64, cull Cull) (float64, geometry.Triangle, bool) {
	if !t.IsBaked() {
		return 0, geometry.Triangle{}, false
	}
	return hitNode(t.root, ray, tMin, tMax, cull)
}

// hitNode recursively tests ray intersection with tree nodes
func hitNode(node *Node, ray core.Ray, tMin, tMax float64, cull Cull) (float64, geometry.Triangle, bool) {
	// First check if ray hits the bounding box
	if node == nil || !node.Bounds.Hit(ray, tMin, tMax) {
		return 0, geometry.Triangle{}, false
	}

	if node.Triangles != nil {
		return hitTriangles(node.Triangles, ray, tMin, tMax, cull)
	}

	closest := tMax
	var closestTri geometry.Triangle
	hitAnything := false

	if tHit, tri, ok := hitNode(node.Left, ray, tMin, closest, cull); ok {
		closest, closestTri, hitAnything = tHit, tri, true
	}
	if tHit, tri, ok := hitNode(node.Right, ray, tMin, closest, cull); ok {
		closest, closestTri, hitAnything = tHit, tri, true
	}
	return closest, closestTri, hitAnything
}

// hitTriangles linearly tests a triangle list, keeping the nearest accepted hit
func hitTriangles(triangles []geometry.Triangle, ray core.Ray, tMin, tMax float64, cull Cull) (float64, geometry.Triangle, bool) {
	closest := tMax
	var closestTri geometry.Triangle
	hitAnything := false

	for _, tri := range triangles {
		tHit, front, ok := tri.Hit(ray, tMin, closest)
		if !ok || (cull == CullBack && !front) || (cull == CullFront && front) {
			continue
		}
		closest, closestTri, hitAnything = tHit, tri, true
	}
	return closest, closestTri, hitAnything
}

// Stats describes the shape of a baked tree
type Stats struct {
	TotalNodes     int
	LeafNodes      int
	MaxDepth       int
	AvgDepth       float64
	TotalTriangles int
}

// Stats returns statistics about the tree structure
func (t *Tree) Stats() Stats {
	if !t.IsBaked() {
		return Stats{}
	}

	stats := Stats{}
	collectStats(t.root, 0, &stats)

	// Calculate average depth after collecting all data
	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

// collectStats recursively collects statistics about the tree
func collectStats(node *Node, depth int, stats *Stats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.Triangles != nil {
		stats.LeafNodes++
		stats.TotalTriangles += len(node.Triangles)
		stats.AvgDepth += float64(depth)
		return
	}
	if node.Left != nil {
		collectStats(node.Left, depth+1, stats)
	}
	if node.Right != nil {
		collectStats(node.Right, depth+1, stats)
	}
}
