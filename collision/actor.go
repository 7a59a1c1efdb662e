package collision

// Handle identifies a registered actor. The zero Handle is never issued.
type Handle uint32

// Projectile is a moving collider that can strike receivers.
// The owner updates Transform between ticks; the engine only reads it.
type Projectile struct {
	Transform
	Shapes       []Shape
	Tags         TagSet
	DestroyOnHit bool
}

// Receiver is a hit target. MaxCollisionsPerTick caps how many
// projectiles it accepts per tick; 0 means unbounded.
type Receiver struct {
	Transform
	Shape                Shape
	Tags                 TagSet
	MaxCollisionsPerTick int
	AcceptsKills         bool
}

// Contact is a projectile/receiver pair delivered to event handlers.
type Contact struct {
	Projectile Handle
	Receiver   Handle
	Point      Vec2
}
