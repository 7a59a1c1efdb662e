package main

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	frames   [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, data)
}

// quietGame returns a game with no emitters so tests place every bullet
func quietGame(t *testing.T) *Game {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Arena.Emitters = nil
	g, err := NewGame(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

// addOrb registers a motionless orb at (x, y)
func addOrb(t *testing.T, g *Game, x, y float64) *Bullet {
	t.Helper()
	b := g.bullets.Orb(x, y, 0, 0, 6, 10, g.playerTags)
	return register(t, g, b)
}

func register(t *testing.T, g *Game, b *Bullet) *Bullet {
	t.Helper()
	h, err := g.coll.RegisterProjectile(&b.Projectile)
	if err != nil {
		t.Fatalf("RegisterProjectile: %v", err)
	}
	b.Handle = h
	g.live[h] = b
	return b
}

func TestGameAddRemovePilot(t *testing.T) {
	g := quietGame(t)
	p := g.AddPilot("TestPilot")
	if p.Name != "TestPilot" {
		t.Errorf("expected name TestPilot, got %s", p.Name)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("expected 1 pilot, got %d", g.PlayerCount())
	}
	if n := g.coll.Registry().ReceiverCount(); n != 2 {
		t.Errorf("expected hitbox and graze receivers, got %d", n)
	}

	g.RemovePilot(p.ID)
	if g.PlayerCount() != 0 {
		t.Errorf("expected 0 pilots, got %d", g.PlayerCount())
	}
	if n := g.coll.Registry().ReceiverCount(); n != 0 {
		t.Errorf("expected receivers unregistered, got %d", n)
	}
}

func TestGameFull(t *testing.T) {
	g := quietGame(t)
	for i := 0; i < g.maxPilots; i++ {
		if g.AddPilot("P") == nil {
			t.Fatalf("pilot %d rejected", i)
		}
	}
	if g.AddPilot("Extra") != nil {
		t.Error("full session should reject a pilot")
	}
}

func TestGameHandleInputClamps(t *testing.T) {
	g := quietGame(t)
	p := g.AddPilot("Test")
	g.HandleInput(p.ID, ClientInput{MX: -50, MY: 5000, Focus: true})

	if p.TargetX != 0 || p.TargetY != g.arena.Height {
		t.Errorf("target not clamped: (%f, %f)", p.TargetX, p.TargetY)
	}
	if !p.Focus {
		t.Error("pilot should be focused")
	}
}

func TestOrbHitCostsLifeAndIsDestroyed(t *testing.T) {
	g := quietGame(t)
	p := g.AddPilot("Target")
	addOrb(t, g, p.X, p.Y)

	g.update()

	if p.Lives != g.arena.Lives-1 {
		t.Errorf("expected %d lives, got %d", g.arena.Lives-1, p.Lives)
	}
	if p.Invuln <= 0 {
		t.Error("pilot should be invulnerable after a hit")
	}
	if p.HitboxHandle != 0 {
		t.Error("hitbox should leave collision while invulnerable")
	}
	if len(g.live) != 0 || g.bullets.InUse() != 0 {
		t.Errorf("orb should be destroyed: live=%d inUse=%d", len(g.live), g.bullets.InUse())
	}
	if g.stats.hits != 1 {
		t.Errorf("expected 1 recorded hit, got %d", g.stats.hits)
	}
}

func TestGrazeScoresOncePerBullet(t *testing.T) {
	g := quietGame(t)
	p := g.AddPilot("Grazer")
	// Inside the graze ring, clear of the hitbox
	b := addOrb(t, g, p.X+12, p.Y)

	g.update()
	g.update()

	if p.Lives != g.arena.Lives {
		t.Errorf("graze should not cost a life, lives=%d", p.Lives)
	}
	if p.Grazes != 1 || p.Score != g.arena.GrazeScore {
		t.Errorf("expected one graze worth %d, got grazes=%d score=%d", g.arena.GrazeScore, p.Grazes, p.Score)
	}
	if !b.Alive || !b.Grazed {
		t.Error("grazing orb should survive and be marked")
	}
}

func TestLaserPierces(t *testing.T) {
	g := quietGame(t)
	p := g.AddPilot("Dodger")
	b := g.bullets.Laser(p.X-100, p.Y, 0, 0, 200, 10, g.playerTags)
	register(t, g, b)

	g.update()

	if p.Lives != g.arena.Lives-1 {
		t.Errorf("laser should cost a life, lives=%d", p.Lives)
	}
	if _, ok := g.live[b.Handle]; !ok {
		t.Error("laser should not be destroyed on hit")
	}
}

func TestDeathNotifiesClient(t *testing.T) {
	g := quietGame(t)
	p := g.AddPilot("Doomed")
	mock := &mockBroadcaster{}
	g.SetClient(p.ID, mock)
	p.Lives = 1
	addOrb(t, g, p.X, p.Y)

	g.update()

	if p.Alive {
		t.Fatal("pilot should be dead")
	}
	if p.HitboxHandle != 0 || p.GrazeHandle != 0 {
		t.Error("dead pilot should have no receivers")
	}
	mock.mu.Lock()
	defer mock.mu.Unlock()
	found := false
	for _, m := range mock.messages {
		if env, ok := m.(Envelope); ok && env.T == MsgDeath {
			found = true
		}
	}
	if !found {
		t.Error("client should receive a death message")
	}
}

func TestGameBroadcastsState(t *testing.T) {
	g := quietGame(t)
	p1 := g.AddPilot("Player1")
	p2 := g.AddPilot("Player2")
	mock1 := &mockBroadcaster{}
	mock2 := &mockBroadcaster{}
	g.SetClient(p1.ID, mock1)
	g.SetClient(p2.ID, mock2)
	addOrb(t, g, p1.X+12, p1.Y)

	for i := 0; i < BroadcastEvery; i++ {
		g.update()
	}

	mock1.mu.Lock()
	defer mock1.mu.Unlock()
	if len(mock1.frames) != 1 || len(mock2.frames) != 1 {
		t.Fatalf("expected one frame each, got %d and %d", len(mock1.frames), len(mock2.frames))
	}
	var state GameState
	if err := msgpack.Unmarshal(mock1.frames[0], &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(state.Pilots) != 2 || len(state.Bullets) != 1 {
		t.Errorf("expected 2 pilots and 1 bullet, got %d and %d", len(state.Pilots), len(state.Bullets))
	}
	if len(state.Events) == 0 || state.Events[0].Kind != EventGraze {
		t.Errorf("expected a graze event, got %+v", state.Events)
	}
	if state.Collision.Receivers != 4 || state.Collision.Projectiles != 1 {
		t.Errorf("unexpected collision stats %+v", state.Collision)
	}
}

func TestDetachedPilotExpires(t *testing.T) {
	g := quietGame(t)
	p := g.AddPilot("Ghost")
	g.Detach(p.ID)
	if !g.HasPilot(p.ID) {
		t.Fatal("detached pilot should stay in play")
	}
	if !g.Reattach(p.ID, &mockBroadcaster{}) {
		t.Fatal("reattach should find the pilot")
	}

	g.Detach(p.ID)
	p.Detached = p.Detached.Add(-2 * ResumeGrace)
	g.update()

	if g.HasPilot(p.ID) {
		t.Error("pilot should be removed after the resume window")
	}
	if g.Reattach(p.ID, &mockBroadcaster{}) {
		t.Error("reattach should fail for a removed pilot")
	}
}

func TestAimedFanTargetsNearestPilot(t *testing.T) {
	g := quietGame(t)
	p := g.AddPilot("Aim")
	e := NewEmitter("fan", EmitterConfig{
		Pattern: PatternAimedFan, X: p.X - 300, Y: p.Y, Interval: 1, Count: 1,
		Speed: 100, Radius: 4, Lifetime: 5,
	})

	g.fire(e)

	if len(g.live) != 1 {
		t.Fatalf("expected one bullet, got %d", len(g.live))
	}
	for _, b := range g.live {
		if b.VX <= 0 || b.VY > 1e-9 || b.VY < -1e-9 {
			t.Errorf("bullet should fly straight at the pilot, v=(%f, %f)", b.VX, b.VY)
		}
	}
	if g.stats.bulletsFired != 1 {
		t.Errorf("expected 1 bullet fired, got %d", g.stats.bulletsFired)
	}
}

func TestConfigureKeepsPlayerTag(t *testing.T) {
	g := quietGame(t)
	cc := g.coll.Config()
	cc.MaxGlobalCollisionsPerTick = 16
	if err := g.Configure(cc); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := g.coll.Config().MaxGlobalCollisionsPerTick; got != 16 {
		t.Errorf("expected new cap applied, got %d", got)
	}

	cc.Tags = []string{TagEnemy, TagPlayer}
	if err := g.Configure(cc); err == nil {
		t.Error("moving the player tag should be rejected")
	}
}

func TestSummaryTracksBest(t *testing.T) {
	g := quietGame(t)
	a := g.AddPilot("A")
	b := g.AddPilot("B")
	a.Score = 50
	b.Score = 120
	g.RemovePilot(b.ID)

	sum := g.Summary()
	if sum.BestPilot != "B" || sum.BestScore != 120 {
		t.Errorf("expected B with 120, got %s with %d", sum.BestPilot, sum.BestScore)
	}
	if sum.PeakPilots != 2 {
		t.Errorf("expected peak 2, got %d", sum.PeakPilots)
	}
}
