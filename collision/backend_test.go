package collision

import (
	"cmp"
	"slices"
	"testing"

	"pgregory.net/rapid"
)

func sortMatches(ms []Match) []Match {
	out := slices.Clone(ms)
	slices.SortFunc(out, func(a, b Match) int {
		if c := cmp.Compare(abs32(a.Receiver), abs32(b.Receiver)); c != 0 {
			return c
		}
		return cmp.Compare(a.Projectile, b.Projectile)
	})
	return out
}

func drawVec(t *rapid.T, label string) Vec2 {
	return Vec2{
		X: rapid.Float64Range(-50, 50).Draw(t, label+".x"),
		Y: rapid.Float64Range(-50, 50).Draw(t, label+".y"),
	}
}

func drawShape(t *rapid.T, label string) Shape {
	if rapid.Bool().Draw(t, label+".segment") {
		return Segment(drawVec(t, label+".a"), drawVec(t, label+".b"))
	}
	return Circle(drawVec(t, label+".o"), rapid.Float64Range(0, 10).Draw(t, label+".r"))
}

func drawTransform(t *rapid.T, label string) Transform {
	tr := At(drawVec(t, label+".pos"), rapid.Float64Range(-4, 4).Draw(t, label+".angle"))
	tr.Scale = rapid.Float64Range(0.25, 3).Draw(t, label+".scale")
	return tr
}

// randomRegistry fills a registry with tag-mixed actors in a small arena.
func randomRegistry(t *rapid.T, withCaps bool) *Registry {
	reg := NewRegistry()
	np := rapid.IntRange(0, 60).Draw(t, "projectiles")
	for i := 0; i < np; i++ {
		n := rapid.IntRange(1, 3).Draw(t, "shapes")
		shapes := make([]Shape, n)
		for k := range shapes {
			shapes[k] = drawShape(t, "ps")
		}
		reg.AddProjectile(&Projectile{
			Transform:    drawTransform(t, "pt"),
			Shapes:       shapes,
			Tags:         TagSet(rapid.Uint32Range(0, 7).Draw(t, "ptags")),
			DestroyOnHit: rapid.Bool().Draw(t, "doh"),
		})
	}
	nr := rapid.IntRange(0, 10).Draw(t, "receivers")
	for i := 0; i < nr; i++ {
		limit := 0
		if withCaps {
			limit = rapid.IntRange(0, 3).Draw(t, "cap")
		}
		reg.AddReceiver(&Receiver{
			Transform:            drawTransform(t, "rt"),
			Shape:                drawShape(t, "rs"),
			Tags:                 TagSet(rapid.Uint32Range(0, 7).Draw(t, "rtags")),
			MaxCollisionsPerTick: limit,
		})
	}
	return reg
}

func TestBackendsAgree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := randomRegistry(t, false)
		fb := NewFrameBuffers(64, 16, 3)
		fb.Build(reg)

		seq := NewMatchBuffer(64*16, 16)
		seq.Reset(fb.ReceiverCount)
		SequentialBackend{}.Test(fb, seq)

		par := NewMatchBuffer(64*16, 16)
		par.Reset(fb.ReceiverCount)
		b := NewBatchBackend(4)
		b.Test(fb, par)

		a, c := sortMatches(seq.Matches()), sortMatches(par.Matches())
		if !slices.Equal(a, c) {
			t.Fatalf("backends disagree:\nsequential %v\nbatch      %v", a, c)
		}
		if seq.PairsTested() != par.PairsTested() {
			t.Fatalf("pairs tested %d vs %d", seq.PairsTested(), par.PairsTested())
		}
	})
}

func TestBackendsAgreeOnCapCounts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := randomRegistry(t, true)
		fb := NewFrameBuffers(64, 16, 3)
		fb.Build(reg)
		global := rapid.IntRange(1, 20).Draw(t, "global")

		seq := NewMatchBuffer(global, 16)
		seq.Reset(fb.ReceiverCount)
		SequentialBackend{}.Test(fb, seq)

		par := NewMatchBuffer(global, 16)
		par.Reset(fb.ReceiverCount)
		NewBatchBackend(3).Test(fb, par)

		// Which pairs survive a cap may differ; how many must not.
		if seq.Len() != par.Len() {
			t.Fatalf("kept %d vs %d matches", seq.Len(), par.Len())
		}
		if seq.Len() > global {
			t.Fatalf("kept %d matches over global cap %d", seq.Len(), global)
		}
	})
}

func TestMatchBufferGlobalCap(t *testing.T) {
	reg := NewRegistry()
	for i := 0; i < 10; i++ {
		reg.AddProjectile(&Projectile{Shapes: []Shape{Circle(Vec2{}, 1)}, Tags: Tags(0)})
	}
	reg.AddReceiver(&Receiver{Shape: Circle(Vec2{}, 1), Tags: Tags(0)})

	fb := NewFrameBuffers(16, 4, 1)
	fb.Build(reg)
	out := NewMatchBuffer(4, 4)
	out.Reset(fb.ReceiverCount)
	SequentialBackend{}.Test(fb, out)

	if out.Len() != 4 {
		t.Errorf("len = %d, want 4", out.Len())
	}
	if out.DroppedGlobal() != 6 {
		t.Errorf("dropped = %d, want 6", out.DroppedGlobal())
	}
}

func TestMatchBufferReceiverCap(t *testing.T) {
	reg := NewRegistry()
	for i := 0; i < 5; i++ {
		reg.AddProjectile(&Projectile{Shapes: []Shape{Circle(Vec2{}, 1)}, Tags: Tags(0)})
	}
	reg.AddReceiver(&Receiver{Shape: Circle(Vec2{}, 1), Tags: Tags(0), MaxCollisionsPerTick: 2})
	reg.AddReceiver(&Receiver{Shape: Circle(Vec2{}, 1), Tags: Tags(0)})

	fb := NewFrameBuffers(8, 4, 1)
	fb.Build(reg)
	out := NewMatchBuffer(64, 4)
	out.Reset(fb.ReceiverCount)
	NewBatchBackend(2).Test(fb, out)

	perReceiver := map[int32]int{}
	for _, m := range out.Matches() {
		perReceiver[m.Receiver]++
	}
	if perReceiver[1] != 2 || perReceiver[2] != 5 {
		t.Errorf("per receiver = %v, want 1:2 2:5", perReceiver)
	}
	if out.DroppedReceiver() != 3 {
		t.Errorf("dropped by receiver cap = %d, want 3", out.DroppedReceiver())
	}
}

func TestIncompatibleTagsNeverTested(t *testing.T) {
	reg := NewRegistry()
	reg.AddProjectile(&Projectile{Shapes: []Shape{Circle(Vec2{}, 5)}, Tags: Tags(1)})
	reg.AddReceiver(&Receiver{Shape: Circle(Vec2{}, 5), Tags: Tags(0)})

	fb := NewFrameBuffers(4, 4, 1)
	fb.Build(reg)
	out := NewMatchBuffer(4, 4)
	out.Reset(fb.ReceiverCount)
	SequentialBackend{}.Test(fb, out)
	if out.Len() != 0 || out.PairsTested() != 0 {
		t.Errorf("incompatible pair produced %d matches, %d tests", out.Len(), out.PairsTested())
	}
}
