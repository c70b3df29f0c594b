package spatial

import "sync"

// LockedProjector serializes access to a Projector that is not safe for
// concurrent use, such as a Transformer shared by HTTP handlers.
type LockedProjector struct {
	mu sync.Mutex
	p  Projector
}

// NewLockedProjector wraps p with a mutex.
func NewLockedProjector(p Projector) *LockedProjector {
	return &LockedProjector{p: p}
}

// Project converts coordinates while holding the lock.
func (l *LockedProjector) Project(lat, lon float64) (float64, float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Project(lat, lon)
}

// Target returns the projected CRS.
func (l *LockedProjector) Target() CRS {
	return l.p.Target()
}

// Describe reports on the wrapped projector.
func (l *LockedProjector) Describe() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Describe()
}
