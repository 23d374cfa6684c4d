// Package solid builds closed mesh volumes from constructive solid geometry
// using the sdfx signed distance library.
package solid

import (
	"fmt"
	"math"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/mesh"
)

// DefaultCells controls marching cubes resolution along the longest axis
const DefaultCells = 64

// Node is one step of a CSG tree. Primitives are centered on the origin; the
// node's rotation then translation apply after its children are combined.
type Node struct {
	Op        string     `json:"op"` // box, sphere, cylinder, union, difference, intersection
	Size      [3]float64 `json:"size,omitempty"`
	Radius    float64    `json:"radius,omitempty"`
	Height    float64    `json:"height,omitempty"`
	Round     float64    `json:"round,omitempty"`
	Translate [3]float64 `json:"translate,omitempty"`
	RotateDeg [3]float64 `json:"rotateDeg,omitempty"`
	Children  []Node     `json:"children,omitempty"`
}

// Box returns a box node of the given size
func Box(x, y, z float64) Node {
	return Node{Op: "box", Size: [3]float64{x, y, z}}
}

// Sphere returns a sphere node
func Sphere(radius float64) Node {
	return Node{Op: "sphere", Radius: radius}
}

// Cylinder returns a cylinder node running along Z
func Cylinder(height, radius float64) Node {
	return Node{Op: "cylinder", Height: height, Radius: radius}
}

// Union returns the union of the children
func Union(children ...Node) Node {
	return Node{Op: "union", Children: children}
}

// Difference subtracts every later child from the first
func Difference(children ...Node) Node {
	return Node{Op: "difference", Children: children}
}

// Intersection keeps the volume shared by every child
func Intersection(children ...Node) Node {
	return Node{Op: "intersection", Children: children}
}

// Moved returns a copy of n translated by (x, y, z)
func (n Node) Moved(x, y, z float64) Node {
	n.Translate = [3]float64{n.Translate[0] + x, n.Translate[1] + y, n.Translate[2] + z}
	return n
}

// SDF converts the tree into a signed distance function
func (n Node) SDF() (sdf.SDF3, error) {
	s, err := n.primitive()
	if err != nil {
		return nil, err
	}

	if n.RotateDeg != [3]float64{} {
		rx := n.RotateDeg[0] * math.Pi / 180.0
		ry := n.RotateDeg[1] * math.Pi / 180.0
		rz := n.RotateDeg[2] * math.Pi / 180.0
		s = sdf.Transform3D(s, sdf.RotateZ(rz).Mul(sdf.RotateY(ry)).Mul(sdf.RotateX(rx)))
	}
	if n.Translate != [3]float64{} {
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: n.Translate[0], Y: n.Translate[1], Z: n.Translate[2]}))
	}
	return s, nil
}

func (n Node) primitive() (sdf.SDF3, error) {
	switch strings.ToLower(n.Op) {
	case "box":
		s, err := sdf.Box3D(v3.Vec{X: n.Size[0], Y: n.Size[1], Z: n.Size[2]}, n.Round)
		if err != nil {
			return nil, fmt.Errorf("box %v: %w", n.Size, err)
		}
		return s, nil
	case "sphere":
		s, err := sdf.Sphere3D(n.Radius)
		if err != nil {
			return nil, fmt.Errorf("sphere radius %g: %w", n.Radius, err)
		}
		return s, nil
	case "cylinder":
		s, err := sdf.Cylinder3D(n.Height, n.Radius, n.Round)
		if err != nil {
			return nil, fmt.Errorf("cylinder height %g radius %g: %w", n.Height, n.Radius, err)
		}
		return s, nil
	case "union", "difference", "intersection":
		return n.combine()
	}
	return nil, fmt.Errorf("unknown solid op %q", n.Op)
}

func (n Node) combine() (sdf.SDF3, error) {
	if len(n.Children) == 0 {
		return nil, fmt.Errorf("%s needs at least one child", n.Op)
	}
	children := make([]sdf.SDF3, len(n.Children))
	for i, child := range n.Children {
		s, err := child.SDF()
		if err != nil {
			return nil, fmt.Errorf("%s child %d: %w", n.Op, i, err)
		}
		children[i] = s
	}
	if len(children) == 1 {
		return children[0], nil
	}

	switch strings.ToLower(n.Op) {
	case "union":
		return sdf.Union3D(children...), nil
	case "difference":
		return sdf.Difference3D(children[0], sdf.Union3D(children[1:]...)), nil
	default:
		s := children[0]
		for _, c := range children[1:] {
			s = sdf.Intersect3D(s, c)
		}
		return s, nil
	}
}

// Build tessellates the tree into a mesh
func Build(n Node, cells int) (*mesh.Mesh, error) {
	s, err := n.SDF()
	if err != nil {
		return nil, err
	}
	return Tessellate(s, cells)
}

// Tessellate runs marching cubes over s and welds the result into an indexed
// mesh wound so that face normals point outward. Cells below 1 selects
// DefaultCells.
func Tessellate(s sdf.SDF3, cells int) (*mesh.Mesh, error) {
	if cells < 1 {
		cells = DefaultCells
	}

	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("tessellation produced no triangles")
	}

	welded := make(map[v3.Vec]int)
	vertices := make([]core.Vec3, 0, len(triangles))
	indices := make([]int, 0, len(triangles)*3)
	for _, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			idx, ok := welded[v]
			if !ok {
				idx = len(vertices)
				welded[v] = idx
				vertices = append(vertices, core.NewVec3(v.X, v.Y, v.Z))
			}
			indices = append(indices, idx)
		}
	}

	// A closed surface wound inside out has negative signed volume
	if signedVolume(vertices, indices) < 0 {
		for i := 0; i < len(indices); i += 3 {
			indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
		}
	}

	return mesh.New(vertices, indices)
}

// signedVolume sums the tetrahedra formed by each triangle and the origin
func signedVolume(vertices []core.Vec3, indices []int) float64 {
	volume := 0.0
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := vertices[indices[i]], vertices[indices[i+1]], vertices[indices[i+2]]
		volume += a.Dot(b.Cross(c))
	}
	return volume / 6
}
