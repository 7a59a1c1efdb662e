package main

import (
	"testing"
	"time"
)

func testManager(t *testing.T, db *DB) *SessionManager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxSessions = 2
	sm := NewSessionManager(cfg, db, discardLogger())
	t.Cleanup(sm.CloseAll)
	return sm
}

func TestSessionManagerLimit(t *testing.T) {
	sm := testManager(t, nil)
	if sm.CreateSession("a") == nil || sm.CreateSession("b") == nil {
		t.Fatal("two sessions should fit")
	}
	if sm.CreateSession("c") != nil {
		t.Error("third session should be refused")
	}
	if sm.Count() != 2 || len(sm.ListSessions()) != 2 {
		t.Errorf("expected 2 sessions, got %d", sm.Count())
	}
}

func TestSessionManagerRemovePlayer(t *testing.T) {
	sm := testManager(t, nil)
	sess := sm.CreateSession("Garden")
	p := sess.Game.AddPilot("Alice")

	sm.DetachPlayer(sess.ID, p.ID)
	if !sess.Game.HasPilot(p.ID) {
		t.Error("detached pilot should stay")
	}
	sm.RemovePlayer(sess.ID, p.ID)
	if sess.Game.HasPilot(p.ID) {
		t.Error("removed pilot should be gone")
	}
	// Unknown sessions are ignored
	sm.RemovePlayer(GenerateUUID(), p.ID)
}

func TestSessionManagerReap(t *testing.T) {
	db := openTestDB(t)
	sm := testManager(t, db)
	idle := sm.CreateSession("idle")
	busy := sm.CreateSession("busy")
	busy.Game.AddPilot("Bob")

	if n := sm.Reap(time.Now()); n != 0 {
		t.Errorf("fresh sessions should not be reaped, got %d", n)
	}
	if n := sm.Reap(time.Now().Add(2 * SessionIdleTimeout)); n != 1 {
		t.Fatalf("expected the empty session reaped, got %d", n)
	}
	if sm.GetSession(idle.ID) != nil || sm.GetSession(busy.ID) == nil {
		t.Error("wrong session reaped")
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].SessionID != idle.ID || runs[0].Name != "idle" {
		t.Errorf("expected a run for the reaped session, got %+v", runs)
	}
}

func TestSessionManagerReconfigure(t *testing.T) {
	sm := testManager(t, nil)
	sess := sm.CreateSession("a")

	cc := DefaultConfig().Collision
	cc.MaxGlobalCollisionsPerTick = 32
	sm.Reconfigure(cc)

	sess.Game.mu.RLock()
	got := sess.Game.coll.Config().MaxGlobalCollisionsPerTick
	sess.Game.mu.RUnlock()
	if got != 32 {
		t.Errorf("running session not reconfigured, cap=%d", got)
	}

	later := sm.CreateSession("b")
	if later.Game.coll.Config().MaxGlobalCollisionsPerTick != 32 {
		t.Error("new sessions should use the reloaded config")
	}
}
