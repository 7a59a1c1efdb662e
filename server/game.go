package main

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"danmaku-server/collision"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	maxEventsPerBroadcast = 256
	maxNameLen            = 16
)

// ResumeGrace is how long a disconnected pilot waits for a resume
var ResumeGrace = 15 * time.Second

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// runStats accumulates what a session's run summary reports
type runStats struct {
	started      time.Time
	peakPilots   int
	bulletsFired int
	hits         int
	grazes       int
	bestPilot    string
	bestScore    int
}

// Game holds the state for one session: pilots, emitters, bullets and
// the collision dispatcher that connects them. All fields are guarded by
// mu; the dispatcher runs inside update with mu held.
type Game struct {
	mu         sync.RWMutex
	arena      ArenaConfig
	maxPilots  int
	log        *slog.Logger
	coll       *collision.Dispatcher
	playerTags collision.TagSet
	pilots     map[string]*Pilot
	byReceiver map[collision.Handle]*Pilot
	bullets    *BulletPool
	live       map[collision.Handle]*Bullet
	emitters   []*Emitter
	clients    map[string]Broadcaster // pilotID -> client
	tick       uint64
	running    bool
	stop       chan struct{}
	lastActive time.Time

	events []EventState
	hits   []*Pilot // hitbox hits this tick, applied after collision
	angles []float64
	last   collision.TickStats
	stats  runStats
}

// NewGame creates a Game from cfg
func NewGame(cfg Config, log *slog.Logger) (*Game, error) {
	if log == nil {
		log = slog.Default()
	}
	now := time.Now()
	g := &Game{
		arena:      cfg.Arena,
		maxPilots:  cfg.MaxPilots,
		log:        log,
		pilots:     make(map[string]*Pilot),
		byReceiver: make(map[collision.Handle]*Pilot),
		bullets:    NewBulletPool(cfg.MaxBullets),
		live:       make(map[collision.Handle]*Bullet),
		clients:    make(map[string]Broadcaster),
		stop:       make(chan struct{}),
		lastActive: now,
		stats:      runStats{started: now},
	}
	coll, err := collision.NewDispatcher(cfg.Collision,
		collision.WithLogger(log),
		collision.WithHandler(g),
		collision.WithLifecycle(g),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collision dispatcher: %w", err)
	}
	g.coll = coll
	tags := coll.Tags()
	g.playerTags = tags.Mask(TagPlayer)

	for i, ec := range cfg.Arena.Emitters {
		g.emitters = append(g.emitters, NewEmitter(fmt.Sprintf("e%d", i), ec))
	}
	return g, nil
}

// Run starts the game loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stop != nil {
		select {
		case <-g.stop:
		default:
			close(g.stop)
		}
	}
	g.running = false
}

// Configure applies a new collision config between ticks. The player tag
// must keep its index since live actors carry the old masks.
func (g *Game) Configure(cc collision.Config) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := cc.TagNames()
	if names.Mask(TagPlayer) != g.playerTags {
		return fmt.Errorf("%w: tag %q cannot move while a session runs", errInvalidConfig, TagPlayer)
	}
	return g.coll.Configure(cc)
}

// AddPilot adds a new pilot to the game. Returns nil when the session is full.
func (g *Game) AddPilot(name string) *Pilot {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.pilots) >= g.maxPilots {
		return nil
	}
	p := NewPilot(GenerateID(), name, g.arena, g.playerTags)
	g.pilots[p.ID] = p
	g.syncReceivers(p)
	g.stats.peakPilots = max(g.stats.peakPilots, len(g.pilots))
	return p
}

// RemovePilot removes a pilot and its receivers
func (g *Game) RemovePilot(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removePilot(id)
}

func (g *Game) removePilot(id string) {
	p, ok := g.pilots[id]
	if !ok {
		return
	}
	g.noteBest(p)
	g.setReceiver(p, &p.HitboxHandle, &p.Hitbox, false)
	g.setReceiver(p, &p.GrazeHandle, &p.Graze, false)
	delete(g.pilots, id)
	delete(g.clients, id)
}

// Detach keeps a disconnected pilot in play for ResumeGrace
func (g *Game) Detach(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.pilots[id]; ok {
		p.Detached = time.Now()
		delete(g.clients, id)
	}
}

// Reattach binds a client to a detached pilot. Returns false if the
// pilot is gone.
func (g *Game) Reattach(id string, client Broadcaster) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pilots[id]
	if !ok {
		return false
	}
	p.Detached = time.Time{}
	g.clients[id] = client
	return true
}

// SetClient associates a broadcaster with a pilot
func (g *Game) SetClient(pilotID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[pilotID] = client
}

// HandleInput processes input from a pilot
func (g *Game) HandleInput(pilotID string, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pilots[pilotID]
	if !ok {
		return
	}
	p.TargetX = Clamp(input.MX, 0, g.arena.Width)
	p.TargetY = Clamp(input.MY, 0, g.arena.Height)
	p.Focus = input.Focus
}

// HasPilot reports whether the pilot is in the game
func (g *Game) HasPilot(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.pilots[id]
	return ok
}

// PlayerCount returns the number of pilots, attached or not
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.pilots)
}

// LastActive returns when the game last had a pilot
func (g *Game) LastActive() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastActive
}

// CollisionStats returns the stats of the last collision tick
func (g *Game) CollisionStats() collision.TickStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	dt := 1.0 / float64(TickRate)
	g.tick++

	for id, p := range g.pilots {
		if !p.Detached.IsZero() && now.Sub(p.Detached) > ResumeGrace {
			g.log.Info("pilot resume window expired", "pilot", id)
			g.removePilot(id)
		}
	}
	if len(g.pilots) > 0 {
		g.lastActive = now
	}

	for _, p := range g.pilots {
		p.Update(dt, g.arena)
		g.syncReceivers(p)
	}

	for _, b := range g.live {
		b.Update(dt, g.arena.Width, g.arena.Height)
		if !b.Alive {
			g.retire(b)
		}
	}

	for _, e := range g.emitters {
		if e.Update(dt) {
			g.fire(e)
		}
	}

	g.last = g.coll.Tick()
	g.applyHits()

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

// syncReceivers registers or unregisters a pilot's receivers to match
// its state: the hitbox only while vulnerable, the graze ring while alive.
func (g *Game) syncReceivers(p *Pilot) {
	g.setReceiver(p, &p.HitboxHandle, &p.Hitbox, p.Vulnerable())
	g.setReceiver(p, &p.GrazeHandle, &p.Graze, p.Alive)
}

func (g *Game) setReceiver(p *Pilot, h *collision.Handle, r *collision.Receiver, want bool) {
	switch {
	case want && *h == 0:
		handle, err := g.coll.RegisterReceiver(r)
		if err != nil {
			g.log.Warn("receiver registration failed", "pilot", p.ID, "err", err)
			return
		}
		*h = handle
		g.byReceiver[handle] = p
	case !want && *h != 0:
		g.coll.UnregisterReceiver(*h)
		delete(g.byReceiver, *h)
		*h = 0
	}
}

// fire spawns one volley from e
func (g *Game) fire(e *Emitter) {
	var tx, ty float64
	var hasTarget bool
	if e.Pattern == PatternAimedFan {
		tx, ty, hasTarget = g.nearestPilot(e.X, e.Y)
	}
	g.angles = e.Volley(g.angles[:0], tx, ty, hasTarget)
	for _, a := range g.angles {
		var b *Bullet
		if e.Pattern == PatternLaser {
			b = g.bullets.Laser(e.X, e.Y, a, e.Spin, e.Length, e.Lifetime, g.playerTags)
		} else {
			b = g.bullets.Orb(e.X, e.Y, a, e.Speed, e.Radius, e.Lifetime, g.playerTags)
		}
		if b == nil {
			return // pool exhausted
		}
		h, err := g.coll.RegisterProjectile(&b.Projectile)
		if err != nil {
			g.log.Warn("bullet registration failed", "emitter", e.ID, "err", err)
			g.bullets.Put(b)
			return
		}
		b.Handle = h
		g.live[h] = b
		g.stats.bulletsFired++
	}
}

// nearestPilot returns the closest pilot any bullet could target
func (g *Game) nearestPilot(x, y float64) (float64, float64, bool) {
	best := math.Inf(1)
	var tx, ty float64
	found := false
	for _, h := range g.coll.FindReceiversMatching(g.playerTags) {
		p, ok := g.byReceiver[h]
		if !ok {
			continue
		}
		if d := Distance(x, y, p.X, p.Y); d < best {
			best, tx, ty, found = d, p.X, p.Y, true
		}
	}
	return tx, ty, found
}

// retire unregisters a bullet and returns it to the pool
func (g *Game) retire(b *Bullet) {
	if b.Handle != 0 {
		g.coll.UnregisterProjectile(b.Handle)
		delete(g.live, b.Handle)
	}
	g.bullets.Put(b)
}

// DestroyProjectile implements collision.Lifecycle
func (g *Game) DestroyProjectile(h collision.Handle) {
	if b, ok := g.live[h]; ok {
		g.retire(b)
	}
}

// OnEnter implements collision.EventHandler. Entering a graze ring scores
// once per bullet.
func (g *Game) OnEnter(c collision.Contact) {
	p, ok := g.byReceiver[c.Receiver]
	if !ok || c.Receiver != p.GrazeHandle {
		return
	}
	b, ok := g.live[c.Projectile]
	if !ok || b.Grazed {
		return
	}
	b.Grazed = true
	p.Grazes++
	p.Score += g.arena.GrazeScore
	g.stats.grazes++
	g.addEvent(EventGraze, p, b.ID, c.Point)
}

// OnStay implements collision.EventHandler
func (g *Game) OnStay(collision.Contact) {}

// OnExit implements collision.EventHandler
func (g *Game) OnExit(projectile, receiver collision.Handle) {
	p, ok := g.byReceiver[receiver]
	if !ok || receiver != p.GrazeHandle {
		return
	}
	var id uint32
	if b, ok := g.live[projectile]; ok {
		id = b.ID
	}
	g.addEvent(EventExit, p, id, collision.Vec2{X: p.X, Y: p.Y})
}

// OnHit implements collision.EventHandler. Hitbox hits are queued and
// applied once the tick's events are delivered.
func (g *Game) OnHit(c collision.Contact) {
	p, ok := g.byReceiver[c.Receiver]
	if !ok || c.Receiver != p.HitboxHandle {
		return
	}
	var id uint32
	if b, ok := g.live[c.Projectile]; ok {
		id = b.ID
	}
	g.hits = append(g.hits, p)
	g.addEvent(EventHit, p, id, c.Point)
}

func (g *Game) addEvent(kind string, p *Pilot, bullet uint32, at collision.Vec2) {
	if len(g.events) >= maxEventsPerBroadcast {
		return
	}
	g.events = append(g.events, EventState{
		Kind:   kind,
		Pilot:  p.ID,
		Bullet: bullet,
		X:      round1(at.X),
		Y:      round1(at.Y),
	})
}

// applyHits costs lives for this tick's hits
func (g *Game) applyHits() {
	for _, p := range g.hits {
		if !p.Vulnerable() {
			continue
		}
		g.stats.hits++
		died := p.Hit(g.arena.InvulnSeconds)
		g.syncReceivers(p)
		if died {
			g.noteBest(p)
			if client, ok := g.clients[p.ID]; ok {
				client.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{Score: p.Score, Grazes: p.Grazes}})
			}
		}
	}
	g.hits = g.hits[:0]
}

func (g *Game) noteBest(p *Pilot) {
	if p.Score > g.stats.bestScore || g.stats.bestPilot == "" {
		g.stats.bestPilot = p.Name
		g.stats.bestScore = p.Score
	}
}

// broadcastState sends the current game state to all clients
func (g *Game) broadcastState() {
	state := GameState{
		Pilots:   make([]PilotState, 0, len(g.pilots)),
		Bullets:  make([]BulletState, 0, len(g.live)),
		Emitters: make([]EmitterState, 0, len(g.emitters)),
		Events:   g.events,
		Tick:     g.tick,
		Collision: CollisionStats{
			Backend:     g.last.Backend,
			Projectiles: g.last.Projectiles,
			Receivers:   g.last.Receivers,
			PairsTested: g.last.PairsTested,
			Accepted:    g.last.Accepted,
			Dropped:     g.last.DroppedGlobal + g.last.DroppedReceiverCap,
		},
	}
	for _, p := range g.pilots {
		state.Pilots = append(state.Pilots, p.ToState())
	}
	for _, b := range g.live {
		state.Bullets = append(state.Bullets, b.ToState())
	}
	for _, e := range g.emitters {
		state.Emitters = append(state.Emitters, e.ToState())
	}

	data, err := msgpack.Marshal(&state)
	g.events = g.events[:0]
	if err != nil {
		g.log.Error("state marshal failed", "err", err)
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// Summary returns the run summary recorded when the session closes
func (g *Game) Summary() RunSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st := g.stats
	for _, p := range g.pilots {
		if p.Score > st.bestScore || st.bestPilot == "" {
			st.bestPilot, st.bestScore = p.Name, p.Score
		}
	}
	return RunSummary{
		StartedAt:    st.started,
		EndedAt:      time.Now(),
		Ticks:        g.tick,
		PeakPilots:   st.peakPilots,
		BulletsFired: st.bulletsFired,
		Hits:         st.hits,
		Grazes:       st.grazes,
		BestPilot:    st.bestPilot,
		BestScore:    st.bestScore,
	}
}
