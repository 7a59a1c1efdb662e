package main

import "math"

// Emitter fires bullet volleys on a fixed interval
type Emitter struct {
	ID string
	EmitterConfig
	Angle   float64 // base angle, advanced by Spin for rings
	CD      float64 // seconds until the next volley
	Volleys int
}

// NewEmitter creates an emitter from config
func NewEmitter(id string, cfg EmitterConfig) *Emitter {
	e := &Emitter{ID: id, EmitterConfig: cfg, CD: cfg.Interval}
	switch cfg.Pattern {
	case PatternLaser:
		// Sweep symmetrically around straight down
		e.Angle = math.Pi/2 - cfg.Spin*cfg.Lifetime/2
	default:
		e.Angle = math.Pi / 2
	}
	return e
}

// Update advances timers and reports whether a volley is due
func (e *Emitter) Update(dt float64) bool {
	if e.Pattern == PatternRing {
		e.Angle = NormalizeAngle(e.Angle + e.Spin*dt)
	}
	e.CD -= dt
	if e.CD > 0 {
		return false
	}
	e.CD += e.Interval
	if e.CD < 0 {
		e.CD = e.Interval
	}
	e.Volleys++
	return true
}

// Volley appends the firing angles of one volley to dst. For aimed fans
// (tx, ty) is the target and hasTarget reports whether there is one.
func (e *Emitter) Volley(dst []float64, tx, ty float64, hasTarget bool) []float64 {
	n := e.Count
	switch e.Pattern {
	case PatternRing:
		step := 2 * math.Pi / float64(n)
		for i := 0; i < n; i++ {
			dst = append(dst, e.Angle+step*float64(i))
		}
	case PatternAimedFan:
		centre := math.Pi / 2
		if hasTarget {
			centre = math.Atan2(ty-e.Y, tx-e.X)
		}
		if n == 1 {
			return append(dst, centre)
		}
		for i := 0; i < n; i++ {
			off := e.Spread * (float64(i)/float64(n-1) - 0.5)
			dst = append(dst, centre+off)
		}
	case PatternLaser:
		for i := 0; i < n; i++ {
			dst = append(dst, e.Angle)
		}
	}
	return dst
}

// ToState converts to protocol state
func (e *Emitter) ToState() EmitterState {
	return EmitterState{
		ID:      e.ID,
		Pattern: string(e.Pattern),
		X:       e.X,
		Y:       e.Y,
		Angle:   round1(e.Angle),
	}
}
