package extrude

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func TestExpiryLifetimeRange(t *testing.T) {
	e := expiry{min: 2 * time.Second, max: 4 * time.Second, approachRatio: 0.5}
	if !e.isExpired(t0) {
		t.Error("Expected unstarted expiry to be expired")
	}

	for i := 0; i < 100; i++ {
		e.restart(t0, 100)
		ttl := e.expiresAt.Sub(t0)
		if ttl < e.min || ttl > e.max {
			t.Fatalf("Expected lifetime in [%s, %s], got %s", e.min, e.max, ttl)
		}
		if e.isExpired(t0.Add(e.min)) {
			t.Fatalf("Expected expiry alive at min lifetime %s", ttl)
		}
		if !e.isExpired(t0.Add(e.max + time.Millisecond)) {
			t.Fatalf("Expected expiry over after max lifetime %s", ttl)
		}
	}
}

func TestExpiryApproachHalvesOnce(t *testing.T) {
	e := expiry{min: 4 * time.Second, max: 4 * time.Second, approachRatio: 0.5}
	e.restart(t0, 100)

	// Not close enough.
	e.adjust(t0.Add(time.Second), 60)
	if want := t0.Add(4 * time.Second); !e.expiresAt.Equal(want) {
		t.Errorf("Expected expiry at %v, got %v", want, e.expiresAt)
	}

	// 3s remain at t0+1s, so half is 1.5s.
	e.adjust(t0.Add(time.Second), 40)
	if want := t0.Add(2500 * time.Millisecond); !e.expiresAt.Equal(want) {
		t.Errorf("Expected expiry at %v, got %v", want, e.expiresAt)
	}

	// Only once per lifetime.
	e.adjust(t0.Add(2*time.Second), 1)
	if want := t0.Add(2500 * time.Millisecond); !e.expiresAt.Equal(want) {
		t.Errorf("Expected a single adjustment, got expiry at %v", e.expiresAt)
	}
	if !e.isExpired(t0.Add(2600 * time.Millisecond)) {
		t.Error("Expected expiry after the shortened lifetime")
	}

	e.restart(t0.Add(3*time.Second), 1)
	if e.adjusted {
		t.Error("Expected restart to allow a new adjustment")
	}
}

func TestExpiryExpire(t *testing.T) {
	e := expiry{min: time.Minute, max: time.Minute, approachRatio: 0.5}
	e.restart(t0, 10)
	if e.isExpired(t0) {
		t.Fatal("Expected fresh expiry to be alive")
	}

	e.expire()
	if !e.isExpired(t0) {
		t.Error("Expected expire to end the lifetime")
	}

	e.restart(t0, 10)
	if e.isExpired(t0) {
		t.Error("Expected restart to clear the expired mark")
	}
}

func TestApproachRegeneratesEarly(t *testing.T) {
	opts := DefaultOptions()
	opts.TileCapacity = 1
	opts.MinExpiryTime = 4 * time.Second
	opts.MaxExpiryTime = 4 * time.Second
	s := buildShape(t, opts, rect(0, 4.5, 10, 5.5, 10), rect(1, 1, 2, 2, 10), rect(8, 8, 9, 9, 10))
	f := quadFixture()

	f.frameAt(t, s, t0)
	regenerated := s.Stats().TilesRegenerated

	// Move well within half the eye distance: the remaining 3s become 1.5s.
	f.camera.Eye = mgl64.Vec3{5, 5, 400}
	f.frameAt(t, s, t0.Add(time.Second))
	if got := s.Stats().TilesRegenerated; got != regenerated {
		t.Fatalf("Expected no regeneration yet, got %d", got-regenerated)
	}

	f.frameAt(t, s, t0.Add(3*time.Second))
	if got := s.Stats().TilesRegenerated; got <= regenerated {
		t.Error("Expected approach to expire geometry before its 4s lifetime")
	}
}
