package collision

import "math"

// worldShape is a collider resolved into world space.
type worldShape struct {
	segment bool
	center  Vec2 // circle
	radius  float64
	a, b    Vec2 // segment
}

func resolve(segment bool, params [4]float64, pos, forward, right Vec2, scale float64) worldShape {
	if segment {
		return worldShape{
			segment: true,
			a:       toWorld(pos, forward, right, scale, Vec2{X: params[0], Y: params[1]}),
			b:       toWorld(pos, forward, right, scale, Vec2{X: params[2], Y: params[3]}),
		}
	}
	return worldShape{
		center: toWorld(pos, forward, right, scale, Vec2{X: params[0], Y: params[1]}),
		radius: math.Abs(scale) * params[2],
	}
}

// overlap tests two world shapes and returns the contact point.
func overlap(p, r worldShape) (Vec2, bool) {
	switch {
	case !p.segment && !r.segment:
		return circleCircle(p.center, p.radius, r.center, r.radius)
	case !p.segment && r.segment:
		return circleSegment(p.center, p.radius, r.a, r.b)
	case p.segment && !r.segment:
		return circleSegment(r.center, r.radius, p.a, p.b)
	default:
		return segmentSegment(p.a, p.b, r.a, r.b)
	}
}

// circleCircle accepts when the centre distance is at most ra+rb, so a
// negative sum never matches. The contact divides the centre line in the
// ratio ra:rb.
func circleCircle(ca Vec2, ra float64, cb Vec2, rb float64) (Vec2, bool) {
	sum := ra + rb
	if sum < 0 || ca.DistanceSq(cb) > sum*sum {
		return Vec2{}, false
	}
	if sum <= 0 {
		return ca, true
	}
	return ca.Add(cb.Sub(ca).Mult(ra / sum)), true
}

// closestOnSegment projects p onto ab, clamped to the segment.
func closestOnSegment(p, a, b Vec2) Vec2 {
	ab := b.Sub(a)
	lenSq := ab.LengthSq()
	if lenSq == 0 {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Mult(t))
}

// circleSegment accepts when the closest point of ab lies within r of c.
func circleSegment(c Vec2, r float64, a, b Vec2) (Vec2, bool) {
	if r < 0 {
		return Vec2{}, false
	}
	q := closestOnSegment(c, a, b)
	if c.DistanceSq(q) > r*r {
		return Vec2{}, false
	}
	return q, true
}

// orient returns the sign of the turn a→b→c.
func orient(a, b, c Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// onSegment reports whether c, known to be collinear with ab, lies on it.
func onSegment(a, b, c Vec2) bool {
	return math.Min(a.X, b.X) <= c.X && c.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= c.Y && c.Y <= math.Max(a.Y, b.Y)
}

// segmentSegment is the standard orientation-based intersection test.
// Collinear overlaps count; their contact is the first overlapping endpoint.
func segmentSegment(p1, p2, q1, q2 Vec2) (Vec2, bool) {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		t := d1 / (d1 - d2)
		return p1.Add(p2.Sub(p1).Mult(t)), true
	}

	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return p1, true
	case d2 == 0 && onSegment(q1, q2, p2):
		return p2, true
	case d3 == 0 && onSegment(p1, p2, q1):
		return q1, true
	case d4 == 0 && onSegment(p1, p2, q2):
		return q2, true
	}
	return Vec2{}, false
}

// testPair runs the tag filter and every shape of projectile slot pi
// against receiver ri. The first hitting shape wins.
func testPair(fb *FrameBuffers, pi, ri int) (Vec2, bool) {
	p := &fb.Projectiles[pi]
	r := &fb.Receivers[ri]
	if p.Slot == 0 || r.Slot == 0 || !Compatible(p.Tags, r.Tags) {
		return Vec2{}, false
	}
	rs := resolve(r.Slot < 0, r.Params, r.Position, r.Forward, r.Right, r.Scale)
	end := p.FirstShape + p.ShapeCount
	for k := p.FirstShape; k < end; k++ {
		s := &fb.Shapes[k]
		ps := resolve(s.Code < 0, s.Params, p.Position, p.Forward, p.Right, p.Scale)
		if pt, ok := overlap(ps, rs); ok {
			return pt, true
		}
	}
	return Vec2{}, false
}
