package shapes

import (
	"fmt"
	"strings"

	"github.com/df07/volumetric-audio/pkg/core"
	"github.com/df07/volumetric-audio/pkg/culling"
)

// Comparison selects which side of a HalfSpace is inside
type Comparison int

const (
	Below Comparison = iota // Inside when y < Height
	Above                   // Inside when y > Height
)

func (c Comparison) String() string {
	if c == Below {
		return "below"
	}
	return "above"
}

// ParseComparison accepts "below" or "above" in any case
func ParseComparison(name string) (Comparison, error) {
	switch strings.ToLower(name) {
	case "below", "lower", "":
		return Below, nil
	case "above", "higher":
		return Above, nil
	}
	return 0, fmt.Errorf("unknown half-space comparison %q", name)
}

// HalfSpace is everything below or above a world height. It ignores the pose.
type HalfSpace struct {
	Base
	Height     float64
	Comparison Comparison
}

// NewHalfSpace creates a half-space bounded by the plane y = height
func NewHalfSpace(height float64, comparison Comparison, hollow bool) *HalfSpace {
	return &HalfSpace{Base: Base{Hollow: hollow}, Height: height, Comparison: comparison}
}

func (h *HalfSpace) Kind() Kind {
	return KindHalfSpace
}

func (h *HalfSpace) Update(listener core.Vec3, available bool) {
	h.begin(listener)
	if !available {
		return
	}

	inside := listener.Y > h.Height
	if h.Comparison == Below {
		inside = listener.Y < h.Height
	}

	onPlane := core.NewVec3(listener.X, h.Height, listener.Z)
	if inside {
		h.setOuter(onPlane)
		h.setInner(listener, true)
	} else {
		h.setOuter(listener)
		h.setInner(onPlane, false)
	}
}

// CullRect is unbounded: the plane extends forever
func (h *HalfSpace) CullRect(margin float64) culling.Rect {
	return culling.Infinite()
}
