package server

import (
	"math"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
	"github.com/df07/volumetric-audio/pkg/shapes"
	"github.com/df07/volumetric-audio/pkg/system"
)

// PointResponse is the JSON form of one closest point result
type PointResponse struct {
	Set      bool       `json:"set"`
	Point    [3]float64 `json:"point"`
	Distance float64    `json:"distance"`
	Inside   bool       `json:"inside"`
}

// RectResponse is a culling rectangle on the XZ plane. Unbounded rectangles
// carry no corners since JSON has no infinity.
type RectResponse struct {
	Unbounded bool       `json:"unbounded"`
	Min       [2]float64 `json:"min"` // X, Z
	Max       [2]float64 `json:"max"`
}

// ShapeResponse describes one shape after the last tick
type ShapeResponse struct {
	Name     string        `json:"name"`
	Kind     string        `json:"kind"`
	Hollow   bool          `json:"hollow"`
	Enabled  bool          `json:"enabled"`
	CullRect RectResponse  `json:"cullRect"`
	Outer    PointResponse `json:"outer"`
	Inner    PointResponse `json:"inner"`
	Final    PointResponse `json:"final"`
}

// SnapshotResponse is the JSON form of system.Snapshot
type SnapshotResponse struct {
	Ticks         int             `json:"ticks"`
	Listener      *[3]float64     `json:"listener"` // Null when no listener was available
	MaxStaleTicks int             `json:"maxStaleTicks"`
	Shapes        []ShapeResponse `json:"shapes"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func pointResponse(p shapes.ClosestPoint) PointResponse {
	return PointResponse{
		Set:      p.Set,
		Point:    vecArray(p.Point),
		Distance: p.Distance,
		Inside:   p.Inside,
	}
}

func rectResponse(r culling.Rect) RectResponse {
	for _, v := range []float64{r.MinX, r.MinZ, r.MaxX, r.MaxZ} {
		if math.IsInf(v, 0) {
			return RectResponse{Unbounded: true}
		}
	}
	return RectResponse{
		Min: [2]float64{r.MinX, r.MinZ},
		Max: [2]float64{r.MaxX, r.MaxZ},
	}
}

func shapeResponse(state system.ShapeState) ShapeResponse {
	return ShapeResponse{
		Name:     state.Name,
		Kind:     state.Kind.String(),
		Hollow:   state.Hollow,
		Enabled:  state.Enabled,
		CullRect: rectResponse(state.CullRect),
		Outer:    pointResponse(state.Outer),
		Inner:    pointResponse(state.Inner),
		Final:    pointResponse(state.Final),
	}
}

func snapshotResponse(snap system.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Ticks:         snap.Ticks,
		MaxStaleTicks: snap.MaxStaleTicks,
		Shapes:        make([]ShapeResponse, len(snap.Shapes)),
	}
	if snap.ListenerAvailable {
		listener := vecArray(snap.Listener)
		resp.Listener = &listener
	}
	for i, state := range snap.Shapes {
		resp.Shapes[i] = shapeResponse(state)
	}
	return resp
}
