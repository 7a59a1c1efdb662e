package main

import (
	"math"
	"testing"

	"danmaku-server/collision"
)

func TestBulletPoolLimit(t *testing.T) {
	bp := NewBulletPool(2)
	a := bp.Orb(0, 0, 0, 100, 4, 1, 0)
	b := bp.Orb(0, 0, 0, 100, 4, 1, 0)
	if a == nil || b == nil {
		t.Fatal("pool should hand out two bullets")
	}
	if bp.Orb(0, 0, 0, 100, 4, 1, 0) != nil {
		t.Error("exhausted pool should return nil")
	}
	if a.ID == b.ID {
		t.Error("bullet IDs should be unique")
	}
}

func TestBulletPoolReuse(t *testing.T) {
	bp := NewBulletPool(4)
	a := bp.Orb(10, 10, 0, 100, 4, 1, 0)
	a.Grazed = true
	bp.Put(a)
	if bp.InUse() != 0 || bp.Free() != 1 {
		t.Fatalf("expected 0 in use and 1 free, got %d and %d", bp.InUse(), bp.Free())
	}

	b := bp.Laser(0, 0, 0, 0, 50, 1, 0)
	if b != a {
		t.Error("pool should reuse the returned bullet")
	}
	if b.Grazed || b.Kind != BulletLaser || b.DestroyOnHit {
		t.Errorf("reused bullet carries stale state: %+v", b)
	}
	if bp.Free() != 0 {
		t.Errorf("free list should be empty, got %d", bp.Free())
	}
}

func TestOrbMovesAndSyncs(t *testing.T) {
	bp := NewBulletPool(1)
	b := bp.Orb(100, 100, math.Pi/2, 60, 4, 5, collision.Tags(0))
	b.Update(0.5, 800, 600)

	if math.Abs(b.X-100) > 1e-9 || math.Abs(b.Y-130) > 1e-9 {
		t.Errorf("expected (100, 130), got (%f, %f)", b.X, b.Y)
	}
	if b.Position.X != b.X || b.Position.Y != b.Y {
		t.Errorf("collider at %v, bullet at (%f, %f)", b.Position, b.X, b.Y)
	}
	if !b.DestroyOnHit || len(b.Shapes) != 1 || b.Shapes[0].Kind != collision.ShapeCircle {
		t.Errorf("orb collider misconfigured: %+v", b.Projectile)
	}
}

func TestOrbLeavesArena(t *testing.T) {
	bp := NewBulletPool(1)
	b := bp.Orb(790, 300, 0, 500, 4, 5, 0)
	b.Update(0.1, 800, 600)
	if !b.Alive {
		t.Fatal("orb should still be inside the margin")
	}
	b.Update(0.1, 800, 600)
	if b.Alive {
		t.Error("orb past the margin should be retired")
	}
}

func TestLaserSweepsAndExpires(t *testing.T) {
	bp := NewBulletPool(1)
	b := bp.Laser(0, 0, 0, 1, 100, 1, 0)
	b.Update(0.5, 800, 600)

	if math.Abs(b.Angle-0.5) > 1e-9 {
		t.Errorf("expected angle 0.5, got %f", b.Angle)
	}
	if b.X != 0 || b.Y != 0 {
		t.Error("lasers should not move")
	}
	b.Update(0.6, 800, 600)
	if b.Alive {
		t.Error("laser should expire with its lifetime")
	}
}
