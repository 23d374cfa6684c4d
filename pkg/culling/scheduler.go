package culling

import (
	"github.com/dhconnelly/rtreego"

	"github.com/df07/volumetric-audio/pkg/core"
)

const (
	// DefaultBudget is the number of targets checked per tick
	DefaultBudget = 3
	// DefaultMargin pads each target's world extent before culling
	DefaultMargin = 50.0

	// indexPadding keeps zero-width rectangles valid for the R-tree
	indexPadding = 1e-6
)

// Target is anything the scheduler can switch on and off by listener proximity
type Target interface {
	CullRect(margin float64) Rect
	SetEnabled(enabled bool)
}

// entry pairs a target with its cached rectangle
type entry struct {
	target Target
	margin float64
	rect   Rect
	bounds rtreego.Rect
}

// Bounds lets entries live in the R-tree
func (e *entry) Bounds() rtreego.Rect {
	return e.bounds
}

func (e *entry) refresh() {
	e.rect = e.target.CullRect(e.margin)
	if e.rect.IsEmpty() || !e.rect.IsBounded() {
		return
	}
	bounds, err := rtreego.NewRectFromPoints(
		rtreego.Point{e.rect.MinX - indexPadding, e.rect.MinZ - indexPadding},
		rtreego.Point{e.rect.MaxX + indexPadding, e.rect.MaxZ + indexPadding},
	)
	if err == nil {
		e.bounds = bounds
	}
}

func (e *entry) indexable() bool {
	return !e.rect.IsEmpty() && e.rect.IsBounded()
}

// Scheduler amortizes culling checks over ticks. Each tick it checks up to
// Budget targets in round-robin order and enables exactly those whose
// rectangle contains the listener, so every target is re-evaluated at least
// once every MaxStaleTicks ticks.
type Scheduler struct {
	budget  int
	entries []*entry
	cursor  int

	index     *rtreego.Rtree
	unbounded []*entry // Rectangles the index cannot hold
	dirty     bool

	logger core.Logger
}

// NewScheduler creates a scheduler. A budget below 1 selects DefaultBudget
// and a nil logger discards output.
func NewScheduler(budget int, logger core.Logger) *Scheduler {
	if budget < 1 {
		budget = DefaultBudget
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Scheduler{budget: budget, logger: logger, dirty: true}
}

// Add registers a target and computes its rectangle immediately
func (s *Scheduler) Add(target Target, margin float64) {
	e := &entry{target: target, margin: margin}
	e.refresh()
	s.entries = append(s.entries, e)
	s.dirty = true
}

// Len returns the number of registered targets
func (s *Scheduler) Len() int {
	return len(s.entries)
}

// Budget returns the number of targets checked per tick
func (s *Scheduler) Budget() int {
	return s.budget
}

// Rect returns the cached rectangle of target i
func (s *Scheduler) Rect(i int) Rect {
	return s.entries[i].rect
}

// MaxStaleTicks is the longest a target can go between checks: ceil(n / budget)
func (s *Scheduler) MaxStaleTicks() int {
	return core.SafeDivisionInt(len(s.entries)+s.budget-1, s.budget)
}

// Init recomputes every rectangle from the targets' current placement
func (s *Scheduler) Init() {
	for _, e := range s.entries {
		e.refresh()
	}
	s.dirty = true
	s.logger.Printf("culling: initialized %d targets (budget %d, max staleness %d ticks)\n",
		len(s.entries), s.budget, s.MaxStaleTicks())
}

// Tick checks the next min(budget, n) targets against the listener position
func (s *Scheduler) Tick(listener core.Vec3) {
	count := len(s.entries)
	iterations := min(s.budget, count)
	for i := 0; i < iterations; i++ {
		if s.cursor >= count {
			s.cursor = 0
		}
		e := s.entries[s.cursor]
		e.target.SetEnabled(e.rect.Contains(listener))
		s.cursor++
	}
}

// Resync checks every target at once, using the R-tree to find the few whose
// rectangle can contain the listener. Use it after the listener teleports.
func (s *Scheduler) Resync(listener core.Vec3) {
	s.rebuildIndex()

	inside := make(map[*entry]bool)
	if s.index != nil {
		query := rtreego.Point{listener.X, listener.Z}.ToRect(indexPadding)
		for _, obj := range s.index.SearchIntersect(query) {
			e := obj.(*entry)
			if e.rect.Contains(listener) {
				inside[e] = true
			}
		}
	}
	for _, e := range s.unbounded {
		if e.rect.Contains(listener) {
			inside[e] = true
		}
	}

	for _, e := range s.entries {
		e.target.SetEnabled(inside[e])
	}
	s.logger.Printf("culling: resync enabled %d of %d targets\n", len(inside), len(s.entries))
}

func (s *Scheduler) rebuildIndex() {
	if !s.dirty {
		return
	}

	var indexed []rtreego.Spatial
	s.unbounded = s.unbounded[:0]
	for _, e := range s.entries {
		switch {
		case e.indexable():
			indexed = append(indexed, e)
		case !e.rect.IsEmpty():
			s.unbounded = append(s.unbounded, e)
		}
	}

	s.index = nil
	if len(indexed) > 0 {
		s.index = rtreego.NewTree(2, 2, 8, indexed...)
	}
	s.dirty = false
}
