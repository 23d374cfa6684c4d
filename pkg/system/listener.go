package system

import (
	"sync"

	"github.com/df07/volumetric-audio/pkg/core"
)

// ListenerProvider reports where the listener is, if there is one
type ListenerProvider interface {
	TryGetListenerPosition() (core.Vec3, bool)
}

// StaticListener is a listener position set by hand. It is safe to move from
// one goroutine while another ticks.
type StaticListener struct {
	mu       sync.RWMutex
	position core.Vec3
	present  bool
}

// NewStaticListener creates a listener at position
func NewStaticListener(position core.Vec3) *StaticListener {
	return &StaticListener{position: position, present: true}
}

// Set moves the listener, registering it if it was cleared
func (l *StaticListener) Set(position core.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = position
	l.present = true
}

// Clear unregisters the listener; the last position is kept
func (l *StaticListener) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.present = false
}

func (l *StaticListener) TryGetListenerPosition() (core.Vec3, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position, l.present
}

// NoListener never has a position
type NoListener struct{}

func (NoListener) TryGetListenerPosition() (core.Vec3, bool) {
	return core.Vec3{}, false
}
