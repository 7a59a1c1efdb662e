package collision

import (
	"slices"
)

//go:generate go tool mockgen -destination=./mocks/sink_mock.go -package=mocks . EventHandler,Lifecycle

// EventHandler receives collision notifications. Calls happen on the
// goroutine running Dispatcher.Tick.
type EventHandler interface {
	// OnEnter fires on the first tick a pair overlaps.
	OnEnter(c Contact)
	// OnStay fires on every following tick the pair still overlaps.
	OnStay(c Contact)
	// OnExit fires on the first tick the pair no longer overlaps.
	OnExit(projectile, receiver Handle)
	// OnHit fires once per accepted match, after OnEnter or OnStay.
	OnHit(c Contact)
}

// Lifecycle is the collaborator that owns projectile instances.
type Lifecycle interface {
	// DestroyProjectile is called at the end of a tick for every
	// destroy-on-hit projectile that struck a receiver accepting kills.
	DestroyProjectile(h Handle)
}

// HandlerFuncs adapts plain functions to EventHandler. Nil fields are skipped.
type HandlerFuncs struct {
	Enter func(Contact)
	Stay  func(Contact)
	Exit  func(projectile, receiver Handle)
	Hit   func(Contact)
}

// OnEnter implements EventHandler
func (h HandlerFuncs) OnEnter(c Contact) {
	if h.Enter != nil {
		h.Enter(c)
	}
}

// OnStay implements EventHandler
func (h HandlerFuncs) OnStay(c Contact) {
	if h.Stay != nil {
		h.Stay(c)
	}
}

// OnExit implements EventHandler
func (h HandlerFuncs) OnExit(p, r Handle) {
	if h.Exit != nil {
		h.Exit(p, r)
	}
}

// OnHit implements EventHandler
func (h HandlerFuncs) OnHit(c Contact) {
	if h.Hit != nil {
		h.Hit(c)
	}
}

// receiverState holds a receiver's rolling hit sets.
type receiverState struct {
	hitThisFrame map[Handle]struct{}
	hitLastFrame map[Handle]struct{}
	seen         bool // present in this tick's buffers
}

// SinkReport summarises one tick of event derivation.
type SinkReport struct {
	Accepted        int
	DroppedReceiver int
	Enters          int
	Stays           int
	Exits           int
	Destroyed       []Handle
}

// EventSink turns raw matches into enter/stay/exit/hit notifications.
type EventSink struct {
	handler   EventHandler
	receivers map[Handle]*receiverState
	destroy   []Handle
	destroyed map[Handle]struct{}
	exitBuf   []Handle
}

// NewEventSink creates a sink delivering to h, which may be nil.
func NewEventSink(h EventHandler) *EventSink {
	return &EventSink{
		handler:   h,
		receivers: make(map[Handle]*receiverState),
		destroyed: make(map[Handle]struct{}),
	}
}

// SetHandler replaces the event handler.
func (s *EventSink) SetHandler(h EventHandler) { s.handler = h }

// Tracked returns the number of receivers with rolling state.
func (s *EventSink) Tracked() int { return len(s.receivers) }

// HitThisFrame reports whether projectile p was accepted by receiver r on
// the last processed tick.
func (s *EventSink) HitThisFrame(r, p Handle) bool {
	st, ok := s.receivers[r]
	if !ok {
		return false
	}
	_, hit := st.hitThisFrame[p]
	return hit
}

// Process derives events for one tick. matches must be sorted by receiver
// slot then projectile slot; live reports whether a receiver handle is
// still registered.
func (s *EventSink) Process(fb *FrameBuffers, matches []Match, live func(Handle) bool) SinkReport {
	var rep SinkReport

	for _, st := range s.receivers {
		st.hitLastFrame, st.hitThisFrame = st.hitThisFrame, st.hitLastFrame
		clear(st.hitThisFrame)
		st.seen = false
	}
	for i := 0; i < fb.ReceiverCount; i++ {
		h := fb.receiverHandles[i]
		st, ok := s.receivers[h]
		if !ok {
			st = &receiverState{
				hitThisFrame: make(map[Handle]struct{}),
				hitLastFrame: make(map[Handle]struct{}),
			}
			s.receivers[h] = st
		}
		st.seen = true
	}

	var (
		cur      Handle
		st       *receiverState
		accepted int32
		limit    int32
		kills    bool
	)
	for _, m := range matches {
		ri := abs32(m.Receiver) - 1
		rh := fb.receiverHandles[ri]
		if rh != cur || st == nil {
			cur = rh
			st = s.receivers[rh]
			accepted = 0
			limit = fb.Receivers[ri].Cap
			kills = fb.acceptsKills[ri]
		}
		if limit > 0 && accepted >= limit {
			rep.DroppedReceiver++
			continue
		}
		pi := m.Projectile - 1
		ph := fb.projectileHandles[pi]
		if _, dup := st.hitThisFrame[ph]; dup {
			continue
		}
		accepted++
		rep.Accepted++
		st.hitThisFrame[ph] = struct{}{}

		c := Contact{Projectile: ph, Receiver: rh, Point: m.Point}
		if _, stay := st.hitLastFrame[ph]; stay {
			rep.Stays++
			if s.handler != nil {
				s.handler.OnStay(c)
			}
		} else {
			rep.Enters++
			if s.handler != nil {
				s.handler.OnEnter(c)
			}
		}
		if s.handler != nil {
			s.handler.OnHit(c)
		}

		if kills && fb.destroyOnHit[pi] {
			if _, queued := s.destroyed[ph]; !queued {
				s.destroyed[ph] = struct{}{}
				s.destroy = append(s.destroy, ph)
			}
		}
	}

	rep.Exits = s.flushExits(live)

	rep.Destroyed = append(rep.Destroyed, s.destroy...)
	s.destroy = s.destroy[:0]
	clear(s.destroyed)
	return rep
}

// flushExits fires OnExit for pairs that were present last tick and are
// gone now, then forgets receivers that left the registry.
func (s *EventSink) flushExits(live func(Handle) bool) int {
	keys := make([]Handle, 0, len(s.receivers))
	for h := range s.receivers {
		keys = append(keys, h)
	}
	slices.Sort(keys)

	exits := 0
	for _, rh := range keys {
		st := s.receivers[rh]
		s.exitBuf = s.exitBuf[:0]
		for ph := range st.hitLastFrame {
			if _, still := st.hitThisFrame[ph]; !still {
				s.exitBuf = append(s.exitBuf, ph)
			}
		}
		slices.Sort(s.exitBuf)
		for _, ph := range s.exitBuf {
			exits++
			if s.handler != nil {
				s.handler.OnExit(ph, rh)
			}
		}
		if !st.seen && (live == nil || !live(rh)) {
			delete(s.receivers, rh)
		}
	}
	return exits
}

// Reset drops every receiver's rolling state without firing events.
func (s *EventSink) Reset() {
	clear(s.receivers)
	s.destroy = s.destroy[:0]
	clear(s.destroyed)
}
