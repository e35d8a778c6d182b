package extrude

import (
	"math/rand/v2"
	"time"
)

// expiry is the lifetime of a tile's geometry. Each regeneration starts a
// random lifetime between min and max. When the viewer moves much closer
// than the distance the geometry was built at, the remaining lifetime is
// halved, once per regeneration.
type expiry struct {
	min, max      time.Duration
	approachRatio float64

	expiresAt   time.Time
	eyeDistance float64
	adjusted    bool
	expired     bool
}

// restart begins a new lifetime at now.
func (e *expiry) restart(now time.Time, eyeDistance float64) {
	ttl := e.min
	if span := e.max - e.min; span > 0 {
		ttl += time.Duration(rand.Int64N(int64(span) + 1))
	}
	e.expiresAt = now.Add(ttl)
	e.eyeDistance = eyeDistance
	e.adjusted = false
	e.expired = false
}

// adjust halves the remaining lifetime when eyeDistance is below the
// approach ratio of the recorded distance. It fires at most once until the
// next restart.
func (e *expiry) adjust(now time.Time, eyeDistance float64) {
	if e.adjusted || e.expiresAt.IsZero() {
		return
	}
	if eyeDistance < e.eyeDistance*e.approachRatio {
		if remaining := e.expiresAt.Sub(now); remaining > 0 {
			e.expiresAt = now.Add(remaining / 2)
		}
		e.adjusted = true
	}
}

// isExpired reports whether the lifetime has ended at now, or the entry was
// marked expired, or it never started.
func (e *expiry) isExpired(now time.Time) bool {
	return e.expired || e.expiresAt.IsZero() || now.After(e.expiresAt)
}

// expire ends the lifetime immediately.
func (e *expiry) expire() {
	e.expired = true
}
