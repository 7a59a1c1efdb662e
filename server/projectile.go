package main

import (
	"math"

	"danmaku-server/collision"
)

// BulletKind distinguishes orb bullets from lasers
type BulletKind uint8

const (
	BulletOrb BulletKind = iota
	BulletLaser
)

const bulletMargin = 64.0 // bullets this far outside the arena are retired

// Bullet is an enemy projectile. The embedded collision.Projectile is the
// instance registered with the session's dispatcher.
type Bullet struct {
	collision.Projectile
	Handle   collision.Handle
	ID       uint32
	Kind     BulletKind
	X, Y     float64
	VX, VY   float64
	Angle    float64
	Spin     float64 // radians/s, lasers sweep
	Life     float64
	Radius   float64
	Length   float64
	Alive    bool
	Grazed   bool
	shapeBuf [1]collision.Shape
}

// Update moves the bullet one tick
func (b *Bullet) Update(dt float64, width, height float64) {
	if !b.Alive {
		return
	}
	b.X += b.VX * dt
	b.Y += b.VY * dt
	b.Angle += b.Spin * dt
	b.Life -= dt

	if b.Life <= 0 {
		b.Alive = false
		return
	}
	if b.Kind == BulletOrb &&
		(b.X < -bulletMargin || b.X > width+bulletMargin || b.Y < -bulletMargin || b.Y > height+bulletMargin) {
		b.Alive = false
		return
	}
	b.sync()
}

// sync copies the bullet's pose into its collider
func (b *Bullet) sync() {
	b.Transform = collision.At(collision.Vec2{X: b.X, Y: b.Y}, b.Angle)
}

// ToState converts to protocol state
func (b *Bullet) ToState() BulletState {
	return BulletState{
		ID:     b.ID,
		Kind:   uint8(b.Kind),
		X:      round1(b.X),
		Y:      round1(b.Y),
		Angle:  round1(b.Angle),
		Radius: b.Radius,
		Length: b.Length,
	}
}

// BulletPool hands out bullets from a free list so a dense pattern does not
// allocate every volley.
type BulletPool struct {
	free   []*Bullet
	inUse  int
	max    int
	nextID uint32
}

// NewBulletPool creates a pool holding at most max live bullets
func NewBulletPool(max int) *BulletPool {
	return &BulletPool{max: max}
}

// InUse returns the number of live bullets
func (bp *BulletPool) InUse() int { return bp.inUse }

// Free returns the number of bullets waiting for reuse
func (bp *BulletPool) Free() int { return len(bp.free) }

// Orb returns a circular bullet moving at speed along angle, or nil when
// the pool is exhausted.
func (bp *BulletPool) Orb(x, y, angle, speed, radius, life float64, tags collision.TagSet) *Bullet {
	b := bp.get()
	if b == nil {
		return nil
	}
	b.Kind = BulletOrb
	b.X, b.Y = x, y
	b.VX = math.Cos(angle) * speed
	b.VY = math.Sin(angle) * speed
	b.Angle = angle
	b.Life = life
	b.Radius = radius
	b.shapeBuf[0] = collision.Circle(collision.Vec2{}, radius)
	b.Shapes = b.shapeBuf[:]
	b.Tags = tags
	b.DestroyOnHit = true
	b.sync()
	return b
}

// Laser returns a stationary segment bullet starting at (x, y) along angle
// and sweeping at spin radians/s, or nil when the pool is exhausted.
// Lasers pierce: they are not destroyed on hit.
func (bp *BulletPool) Laser(x, y, angle, spin, length, life float64, tags collision.TagSet) *Bullet {
	b := bp.get()
	if b == nil {
		return nil
	}
	b.Kind = BulletLaser
	b.X, b.Y = x, y
	b.Angle = angle
	b.Spin = spin
	b.Life = life
	b.Length = length
	// Local x follows the heading's right vector, which points along angle.
	b.shapeBuf[0] = collision.Segment(collision.Vec2{}, collision.Vec2{X: length})
	b.Shapes = b.shapeBuf[:]
	b.Tags = tags
	b.DestroyOnHit = false
	b.sync()
	return b
}

func (bp *BulletPool) get() *Bullet {
	if bp.inUse >= bp.max {
		return nil
	}
	var b *Bullet
	if n := len(bp.free); n > 0 {
		b = bp.free[n-1]
		bp.free = bp.free[:n-1]
	} else {
		b = &Bullet{}
	}
	bp.nextID++
	*b = Bullet{ID: bp.nextID, Alive: true}
	bp.inUse++
	return b
}

// Put returns b to the free list. The caller must already have
// unregistered it from collision.
func (bp *BulletPool) Put(b *Bullet) {
	b.Alive = false
	b.Handle = 0
	bp.free = append(bp.free, b)
	bp.inUse--
}
