package collision

import (
	"runtime"
	"sync/atomic"
)

// Match is one accepted projectile/receiver overlap. Slots are 1-based
// buffer slots; Receiver carries the shape-kind sign of its record.
type Match struct {
	Projectile int32
	Receiver   int32
	Point      Vec2
}

// MatchBuffer is the bounded result buffer the backends append into.
// Commits are lock-free: a per-receiver counter and a global counter are
// incremented atomically and a lane whose increment overflows a cap drops
// its result.
type MatchBuffer struct {
	matches     []Match
	count       atomic.Int64
	perReceiver []atomic.Int32

	droppedGlobal   atomic.Int64
	droppedReceiver atomic.Int64
	pairsTested     atomic.Int64
}

// NewMatchBuffer allocates a buffer holding at most maxMatches results.
func NewMatchBuffer(maxMatches, maxReceivers int) *MatchBuffer {
	return &MatchBuffer{
		matches:     make([]Match, maxMatches),
		perReceiver: make([]atomic.Int32, maxReceivers),
	}
}

// Reset clears the counters for the first n receivers.
func (m *MatchBuffer) Reset(receivers int) {
	m.count.Store(0)
	m.droppedGlobal.Store(0)
	m.droppedReceiver.Store(0)
	m.pairsTested.Store(0)
	for i := 0; i < receivers && i < len(m.perReceiver); i++ {
		m.perReceiver[i].Store(0)
	}
}

// Cap returns the global capacity.
func (m *MatchBuffer) Cap() int { return len(m.matches) }

// Len returns the number of committed matches.
func (m *MatchBuffer) Len() int {
	n := m.count.Load()
	if n > int64(len(m.matches)) {
		return len(m.matches)
	}
	return int(n)
}

// Matches returns the committed matches. Only valid once the backend has
// returned.
func (m *MatchBuffer) Matches() []Match {
	return m.matches[:m.Len()]
}

// DroppedGlobal returns how many overlaps the global cap rejected.
func (m *MatchBuffer) DroppedGlobal() int { return int(m.droppedGlobal.Load()) }

// DroppedReceiver returns how many overlaps receiver caps rejected.
func (m *MatchBuffer) DroppedReceiver() int { return int(m.droppedReceiver.Load()) }

// PairsTested returns how many tag-compatible pairs reached the geometry test.
func (m *MatchBuffer) PairsTested() int { return int(m.pairsTested.Load()) }

// commit reserves a receiver slot then a global slot and stores the match.
// The receiver is reserved first so a full global buffer never burns a
// receiver's budget for a result that is still written.
func (m *MatchBuffer) commit(fb *FrameBuffers, pi, ri int, pt Vec2) bool {
	r := &fb.Receivers[ri]
	if r.Cap > 0 && m.perReceiver[ri].Add(1) > r.Cap {
		m.droppedReceiver.Add(1)
		return false
	}
	n := m.count.Add(1)
	if n > int64(len(m.matches)) {
		m.droppedGlobal.Add(1)
		return false
	}
	m.matches[n-1] = Match{
		Projectile: fb.Projectiles[pi].Slot,
		Receiver:   r.Slot,
		Point:      pt,
	}
	return true
}

// lane evaluates one projectile/receiver pair and commits a hit.
func lane(fb *FrameBuffers, out *MatchBuffer, pi, ri int) {
	if !Compatible(fb.Projectiles[pi].Tags, fb.Receivers[ri].Tags) {
		return
	}
	out.pairsTested.Add(1)
	if pt, ok := testPair(fb, pi, ri); ok {
		out.commit(fb, pi, ri, pt)
	}
}

// Backend is a broad-phase strategy. Test evaluates every live
// projectile/receiver pair in fb and commits overlaps into out.
type Backend interface {
	Name() string
	Test(fb *FrameBuffers, out *MatchBuffer)
}

// SequentialBackend tests the cross product on the calling goroutine.
type SequentialBackend struct{}

// Name implements Backend
func (SequentialBackend) Name() string { return "sequential" }

// Test implements Backend
func (SequentialBackend) Test(fb *FrameBuffers, out *MatchBuffer) {
	for pi := 0; pi < fb.ProjectileCount; pi++ {
		for ri := 0; ri < fb.ReceiverCount; ri++ {
			lane(fb, out, pi, ri)
		}
	}
}

// parallelLanes returns the worker count the batch backend would use.
func parallelLanes(workers int) int {
	if workers > 0 {
		return workers
	}
	return runtime.GOMAXPROCS(0)
}
