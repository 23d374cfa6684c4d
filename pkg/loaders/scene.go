package loaders

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
	"github.com/df07/volumetric-audio/pkg/mesh"
	"github.com/df07/volumetric-audio/pkg/shapes"
	"github.com/df07/volumetric-audio/pkg/solid"
	"github.com/df07/volumetric-audio/pkg/system"
)

// SceneConfig is the JSON description of a listener and its shapes
type SceneConfig struct {
	Budget   int           `json:"budget,omitempty"` // Culling checks per tick
	Margin   float64       `json:"margin,omitempty"` // Default culling margin
	Listener *[3]float64   `json:"listener,omitempty"`
	Shapes   []ShapeConfig `json:"shapes"`
}

// PoseConfig places a shape. Rotation is in degrees applied Z, X, then Y.
type PoseConfig struct {
	Position    [3]float64 `json:"position"`
	RotationDeg [3]float64 `json:"rotationDeg,omitempty"`
	Scale       [3]float64 `json:"scale,omitempty"` // Zero components default to 1
}

// MeshConfig selects where a mesh shape's triangles come from
type MeshConfig struct {
	Source   string      `json:"source"`             // ply, box, quad or solid
	File     string      `json:"file,omitempty"`     // PLY path, relative to the scene file
	Size     [3]float64  `json:"size,omitempty"`     // box and quad dimensions
	Solid    *solid.Node `json:"solid,omitempty"`    // CSG tree for the solid source
	Cells    int         `json:"cells,omitempty"`    // Marching cubes resolution
	Collider bool        `json:"collider,omitempty"` // Build a raycast collider for inside tests
	Layer    int         `json:"layer,omitempty"`
	NoBake   bool        `json:"noBake,omitempty"` // Skip the spatial index
}

// ShapeConfig describes one shape; which fields apply depends on Kind
type ShapeConfig struct {
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Hollow     *bool        `json:"hollow,omitempty"` // Meshes default to hollow, everything else to solid
	Margin     *float64     `json:"margin,omitempty"`
	Pose       PoseConfig   `json:"pose"`
	Center     [3]float64   `json:"center,omitempty"`
	Size       [3]float64   `json:"size,omitempty"`
	Radius     float64      `json:"radius,omitempty"`
	Height     float64      `json:"height,omitempty"`
	Direction  string       `json:"direction,omitempty"`
	Points     [][3]float64 `json:"points,omitempty"`
	Depth      float64      `json:"depth,omitempty"`
	Flatten    bool         `json:"flatten,omitempty"`
	CloneFrom  string       `json:"cloneFrom,omitempty"`
	Comparison string       `json:"comparison,omitempty"`
	Mesh       *MeshConfig  `json:"mesh,omitempty"`
}

// LoadScene reads, defaults and validates a scene file
func LoadScene(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	cfg, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return cfg, nil
}

// ParseScene decodes, defaults and validates scene JSON
func ParseScene(data []byte) (*SceneConfig, error) {
	var cfg SceneConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid scene JSON: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SceneConfig) applyDefaults() {
	if c.Budget <= 0 {
		c.Budget = culling.DefaultBudget
	}
	if c.Margin <= 0 {
		c.Margin = culling.DefaultMargin
	}
	for i := range c.Shapes {
		s := &c.Shapes[i]
		s.Kind = strings.ToLower(s.Kind)
		for axis := range s.Pose.Scale {
			if s.Pose.Scale[axis] == 0 {
				s.Pose.Scale[axis] = 1
			}
		}
		if s.Kind == "box" && s.Size == [3]float64{} {
			s.Size = [3]float64{1, 1, 1}
		}
		if s.Mesh != nil {
			if s.Mesh.Source == "" {
				s.Mesh.Source = "ply"
			}
			if s.Mesh.Size == [3]float64{} {
				s.Mesh.Size = [3]float64{1, 1, 1}
			}
		}
	}
}

// Validate rejects configurations no shape could be built from
func (c *SceneConfig) Validate() error {
	names := make(map[string]int, len(c.Shapes))
	for i, s := range c.Shapes {
		if s.Name == "" {
			return fmt.Errorf("shape %d: missing name", i)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("shape %q: duplicate name", s.Name)
		}
		names[s.Name] = i
		if err := s.validate(); err != nil {
			return fmt.Errorf("shape %q: %w", s.Name, err)
		}
	}

	for _, s := range c.Shapes {
		if s.CloneFrom == "" {
			continue
		}
		j, ok := names[s.CloneFrom]
		if !ok {
			return fmt.Errorf("shape %q: cloneFrom %q does not exist", s.Name, s.CloneFrom)
		}
		if src := c.Shapes[j]; !isPathKind(src.Kind) || src.CloneFrom != "" {
			return fmt.Errorf("shape %q: cloneFrom %q must be a path with its own points", s.Name, s.CloneFrom)
		}
	}
	return nil
}

func isPathKind(kind string) bool {
	return kind == shapes.KindPolyline.String() || kind == shapes.KindPolygonPrism.String()
}

func (s ShapeConfig) validate() error {
	kind, err := shapes.ParseKind(s.Kind)
	if err != nil {
		return err
	}
	if s.Margin != nil && *s.Margin < 0 {
		return fmt.Errorf("margin must be >= 0, got %g", *s.Margin)
	}

	switch kind {
	case shapes.KindBox:
		for _, v := range s.Size {
			if v < 0 {
				return fmt.Errorf("size must be >= 0, got %v", s.Size)
			}
		}
	case shapes.KindSphere:
		if s.Radius < 0 {
			return fmt.Errorf("radius must be >= 0, got %g", s.Radius)
		}
	case shapes.KindCapsule:
		if s.Radius < 0 || s.Height < 0 {
			return fmt.Errorf("radius and height must be >= 0, got %g and %g", s.Radius, s.Height)
		}
		if _, err := shapes.ParseAxis(s.Direction); err != nil {
			return err
		}
	case shapes.KindPolyline, shapes.KindPolygonPrism:
		if s.CloneFrom == "" && len(s.Points) < 2 {
			return fmt.Errorf("path needs at least 2 points, got %d", len(s.Points))
		}
		if kind == shapes.KindPolygonPrism && s.Depth <= 0 {
			return fmt.Errorf("depth must be > 0, got %g", s.Depth)
		}
	case shapes.KindHalfSpace:
		if _, err := shapes.ParseComparison(s.Comparison); err != nil {
			return err
		}
	case shapes.KindMesh:
		if s.Mesh == nil {
			return fmt.Errorf("mesh shape needs a mesh block")
		}
		return s.Mesh.validate()
	}
	return nil
}

func (m MeshConfig) validate() error {
	switch m.Source {
	case "ply":
		if m.File == "" {
			return fmt.Errorf("ply mesh needs a file")
		}
	case "box", "quad":
	case "solid":
		if m.Solid == nil {
			return fmt.Errorf("solid mesh needs a solid tree")
		}
	default:
		return fmt.Errorf("unknown mesh source %q", m.Source)
	}
	if m.Layer < 0 || m.Layer > 31 {
		return fmt.Errorf("layer must be in [0, 31], got %d", m.Layer)
	}
	return nil
}

// Pose converts the configured placement into a core.Pose
func (p PoseConfig) Pose() core.Pose {
	return core.NewPose(vec(p.Position), vec(p.RotationDeg), vec(p.Scale))
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func vecs(points [][3]float64) []core.Vec3 {
	out := make([]core.Vec3, len(points))
	for i, p := range points {
		out[i] = vec(p)
	}
	return out
}

// Build creates a system holding every configured shape. Mesh files resolve
// relative to baseDir.
func (c *SceneConfig) Build(baseDir string, logger core.Logger) (*system.System, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	var listener system.ListenerProvider = system.NoListener{}
	if c.Listener != nil {
		listener = system.NewStaticListener(vec(*c.Listener))
	}
	sys := system.New(listener, system.Config{Budget: c.Budget, Margin: c.Margin}, logger)

	paths := make(map[string]*shapes.Path)
	for _, sc := range c.Shapes {
		shape, err := sc.build(baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", sc.Name, err)
		}
		if p, ok := shape.(*shapes.Path); ok {
			paths[sc.Name] = p
		}

		margin := -1.0
		if sc.Margin != nil {
			margin = *sc.Margin
		}
		if err := sys.Add(sc.Name, shape, margin); err != nil {
			return nil, err
		}
	}

	for _, sc := range c.Shapes {
		if sc.CloneFrom != "" {
			paths[sc.Name].ClonePoints(paths[sc.CloneFrom])
		}
	}
	// Cloned paths take their extent from the source, so rectangles need a refresh
	sys.Resync()

	logger.Printf("Built scene: %d shapes (culling budget %d, margin %g)\n", sys.Len(), c.Budget, c.Margin)
	return sys, nil
}

func (s ShapeConfig) hollow(fallback bool) bool {
	if s.Hollow == nil {
		return fallback
	}
	return *s.Hollow
}

func (s ShapeConfig) build(baseDir string, logger core.Logger) (shapes.Shape, error) {
	pose := s.Pose.Pose()
	kind, err := shapes.ParseKind(s.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case shapes.KindBox:
		return shapes.NewBox(pose, vec(s.Center), vec(s.Size), s.hollow(false)), nil
	case shapes.KindSphere:
		return shapes.NewSphere(pose, vec(s.Center), s.Radius, s.hollow(false)), nil
	case shapes.KindCapsule:
		axis, err := shapes.ParseAxis(s.Direction)
		if err != nil {
			return nil, err
		}
		return shapes.NewCapsule(pose, vec(s.Center), s.Radius, s.Height, axis, s.hollow(false)), nil
	case shapes.KindPolyline, shapes.KindPolygonPrism:
		mode := shapes.Polyline
		if kind == shapes.KindPolygonPrism {
			mode = shapes.PolygonPrism
		}
		path := shapes.NewPath(pose, vecs(s.Points), mode, s.Depth, s.hollow(false))
		path.Flatten = s.Flatten
		return path, nil
	case shapes.KindHalfSpace:
		cmp, err := shapes.ParseComparison(s.Comparison)
		if err != nil {
			return nil, err
		}
		return shapes.NewHalfSpace(s.Height, cmp, s.hollow(false)), nil
	case shapes.KindMesh:
		return s.buildMesh(pose, baseDir, logger)
	}
	return nil, fmt.Errorf("unsupported kind %v", kind)
}

func (s ShapeConfig) buildMesh(pose core.Pose, baseDir string, logger core.Logger) (*shapes.Mesh, error) {
	cfg := s.Mesh
	var m *mesh.Mesh
	var err error

	switch cfg.Source {
	case "ply":
		file := cfg.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}
		m, err = LoadPLY(file, logger)
	case "box":
		m = mesh.NewBox(vec(cfg.Size))
	case "quad":
		m = mesh.NewQuad(cfg.Size[0])
	case "solid":
		m, err = solid.Build(*cfg.Solid, cfg.Cells)
	default:
		err = fmt.Errorf("unknown mesh source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}

	var collider mesh.Raycaster
	if cfg.Collider {
		c := mesh.NewCollider(m, pose)
		c.Layer = cfg.Layer
		collider = c
	}

	shape := shapes.NewMesh(pose, m, collider)
	shape.Hollow = s.hollow(true)
	if !cfg.NoBake {
		shape.Bake()
	}
	return shape, nil
}
