package main

import (
	"log/slog"
	"sync"
	"time"

	"danmaku-server/collision"
)

// SessionIdleTimeout is how long an empty session lingers before it is
// closed and its run summary written
var SessionIdleTimeout = 30 * time.Second

// Session represents a game session that players can join
type Session struct {
	ID   string
	Name string
	Game *Game
}

// SessionManager handles creation, lookup and reaping of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
	db       *DB
	log      *slog.Logger
}

// NewSessionManager creates a new SessionManager. db may be nil.
func NewSessionManager(cfg Config, db *DB, log *slog.Logger) *SessionManager {
	if log == nil {
		log = slog.Default()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		db:       db,
		log:      log,
	}
}

// CreateSession creates a new game session. Returns nil if limit reached.
func (sm *SessionManager) CreateSession(name string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= sm.cfg.MaxSessions {
		return nil
	}

	id := GenerateUUID()
	game, err := NewGame(sm.cfg, sm.log.With("session", id))
	if err != nil {
		sm.log.Error("session create failed", "err", err)
		return nil
	}
	sess := &Session{
		ID:   id,
		Name: name,
		Game: game,
	}
	sm.sessions[id] = sess
	go game.Run()
	sm.log.Info("session created", "session", id, "name", name)
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemovePlayer removes a pilot that left on purpose
func (sm *SessionManager) RemovePlayer(sessionID, pilotID string) {
	if sess := sm.GetSession(sessionID); sess != nil {
		sess.Game.RemovePilot(pilotID)
	}
}

// DetachPlayer keeps a disconnected pilot resumable
func (sm *SessionManager) DetachPlayer(sessionID, pilotID string) {
	if sess := sm.GetSession(sessionID); sess != nil {
		sess.Game.Detach(pilotID)
	}
}

// Reap closes sessions that have been empty for SessionIdleTimeout and
// records their run summaries. Returns the number closed.
func (sm *SessionManager) Reap(now time.Time) int {
	sm.mu.Lock()
	var idle []*Session
	for id, sess := range sm.sessions {
		if sess.Game.PlayerCount() == 0 && now.Sub(sess.Game.LastActive()) > SessionIdleTimeout {
			idle = append(idle, sess)
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	for _, sess := range idle {
		sm.close(sess)
	}
	return len(idle)
}

// CloseAll stops every session, recording summaries
func (sm *SessionManager) CloseAll() {
	sm.mu.Lock()
	all := make([]*Session, 0, len(sm.sessions))
	for id, sess := range sm.sessions {
		all = append(all, sess)
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	for _, sess := range all {
		sm.close(sess)
	}
}

func (sm *SessionManager) close(sess *Session) {
	sess.Game.Stop()
	sum := sess.Game.Summary()
	sum.SessionID = sess.ID
	sum.Name = sess.Name
	sm.log.Info("session closed", "session", sess.ID, "ticks", sum.Ticks,
		"bullets", sum.BulletsFired, "hits", sum.Hits, "grazes", sum.Grazes)
	if sm.db == nil {
		return
	}
	if _, err := sm.db.SaveRun(sum); err != nil {
		sm.log.Error("run summary not saved", "session", sess.ID, "err", err)
	}
}

// Reconfigure pushes a new collision config to every running session
// and to sessions created later.
func (sm *SessionManager) Reconfigure(cc collision.Config) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cfg.Collision = cc
	for id, sess := range sm.sessions {
		if err := sess.Game.Configure(cc); err != nil {
			sm.log.Warn("collision reconfigure rejected", "session", id, "err", err)
		}
	}
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Players: sess.Game.PlayerCount(),
		})
	}
	return list
}

// Count returns the number of active sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
