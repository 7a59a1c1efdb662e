package collision

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vec2 is the engine's 2D vector type.
type Vec2 = cp.Vector

// ShapeKind distinguishes the collider variants.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota + 1
	ShapeSegment
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeSegment:
		return "segment"
	}
	return "unknown"
}

// Shape is a collider defined in the owner's local frame.
// Circles use Offset and Radius, segments use Start and End.
type Shape struct {
	Kind   ShapeKind
	Offset Vec2
	Radius float64
	Start  Vec2
	End    Vec2
}

// Circle returns a circle collider centred at offset.
func Circle(offset Vec2, radius float64) Shape {
	return Shape{Kind: ShapeCircle, Offset: offset, Radius: radius}
}

// Segment returns a line segment collider from start to end.
func Segment(start, end Vec2) Shape {
	return Shape{Kind: ShapeSegment, Start: start, End: end}
}

// params packs the shape parameters the way the frame buffers store them.
func (s Shape) params() [4]float64 {
	if s.Kind == ShapeSegment {
		return [4]float64{s.Start.X, s.Start.Y, s.End.X, s.End.Y}
	}
	return [4]float64{s.Offset.X, s.Offset.Y, s.Radius, 0}
}

// Transform places an actor in the world. Local x runs along Right and
// local y along Forward; both are multiplied by Scale.
type Transform struct {
	Position Vec2
	Forward  Vec2
	Right    Vec2
	Scale    float64
}

// Orientation returns the forward and right vectors for a heading in
// radians, where 0 means forward points along +Y.
func Orientation(angle float64) (forward, right Vec2) {
	sin, cos := math.Sincos(angle)
	right = Vec2{X: cos, Y: sin}
	forward = Vec2{X: -sin, Y: cos}
	return forward, right
}

// At returns a transform at pos with the given heading and scale 1.
func At(pos Vec2, angle float64) Transform {
	f, r := Orientation(angle)
	return Transform{Position: pos, Forward: f, Right: r, Scale: 1}
}

// normalized fills degenerate fields with identity values.
func (t Transform) normalized() Transform {
	if t.Forward.X == 0 && t.Forward.Y == 0 {
		t.Forward = Vec2{X: 0, Y: 1}
	}
	if t.Right.X == 0 && t.Right.Y == 0 {
		t.Right = Vec2{X: 1, Y: 0}
	}
	if t.Scale == 0 {
		t.Scale = 1
	}
	return t
}

// toWorld maps a local point into world space.
func toWorld(pos, forward, right Vec2, scale float64, local Vec2) Vec2 {
	return pos.Add(right.Mult(local.X * scale)).Add(forward.Mult(local.Y * scale))
}
