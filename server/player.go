package main

import (
	"math"
	"time"

	"danmaku-server/collision"
)

// Pilot is a player's ship. It owns two receivers: a tiny hitbox that
// accepts kills and a wide graze ring that only scores.
type Pilot struct {
	ID       string
	Name     string
	X, Y     float64
	TargetX  float64 // pointer position in arena coords
	TargetY  float64
	Focus    bool // slow movement for precise dodging
	Lives    int
	Score    int
	Grazes   int
	Hits     int
	Alive    bool
	Invuln   float64 // seconds of invulnerability left
	Detached time.Time

	Hitbox       collision.Receiver
	Graze        collision.Receiver
	HitboxHandle collision.Handle
	GrazeHandle  collision.Handle
}

// NewPilot creates a pilot at the bottom centre of the arena
func NewPilot(id, name string, cfg ArenaConfig, tags collision.TagSet) *Pilot {
	p := &Pilot{
		ID:    id,
		Name:  name,
		X:     cfg.Width / 2,
		Y:     cfg.Height * 0.85,
		Lives: cfg.Lives,
		Alive: true,
		Hitbox: collision.Receiver{
			Shape:                collision.Circle(collision.Vec2{}, cfg.HitboxRadius),
			Tags:                 tags,
			MaxCollisionsPerTick: 1,
			AcceptsKills:         true,
		},
		Graze: collision.Receiver{
			Shape: collision.Circle(collision.Vec2{}, cfg.GrazeRadius),
			Tags:  tags,
		},
	}
	p.TargetX, p.TargetY = p.X, p.Y
	p.sync()
	return p
}

// Update moves the pilot toward its target one tick (dt in seconds)
func (p *Pilot) Update(dt float64, cfg ArenaConfig) {
	if !p.Alive {
		return
	}
	if p.Invuln > 0 {
		p.Invuln = math.Max(0, p.Invuln-dt)
	}

	speed := cfg.Speed
	if p.Focus {
		speed = cfg.FocusSpeed
	}
	dx := p.TargetX - p.X
	dy := p.TargetY - p.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	step := speed * dt
	if dist <= step {
		p.X, p.Y = p.TargetX, p.TargetY
	} else if dist > 0 {
		p.X += dx / dist * step
		p.Y += dy / dist * step
	}

	p.X = Clamp(p.X, 0, cfg.Width)
	p.Y = Clamp(p.Y, 0, cfg.Height)
	p.sync()
}

// sync moves both receivers to the pilot's position
func (p *Pilot) sync() {
	t := collision.At(collision.Vec2{X: p.X, Y: p.Y}, 0)
	p.Hitbox.Transform = t
	p.Graze.Transform = t
}

// Hit costs a life and starts invulnerability. Returns true when the
// pilot has no lives left.
func (p *Pilot) Hit(invuln float64) bool {
	if !p.Alive || p.Invuln > 0 {
		return false
	}
	p.Hits++
	p.Lives--
	if p.Lives <= 0 {
		p.Lives = 0
		p.Alive = false
		return true
	}
	p.Invuln = invuln
	return false
}

// Vulnerable reports whether the hitbox should be in collision
func (p *Pilot) Vulnerable() bool {
	return p.Alive && p.Invuln <= 0
}

// ToState converts to protocol state
func (p *Pilot) ToState() PilotState {
	return PilotState{
		ID:     p.ID,
		Name:   p.Name,
		X:      round1(p.X),
		Y:      round1(p.Y),
		Lives:  p.Lives,
		Score:  p.Score,
		Grazes: p.Grazes,
		Alive:  p.Alive,
		Invuln: p.Invuln > 0,
		Focus:  p.Focus,
	}
}
