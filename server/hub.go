package main

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// ReapInterval is how often idle sessions are looked for
var ReapInterval = time.Second

// Hub manages all connected clients and routes them to sessions
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	auth       *Auth
	db         *DB
	log        *slog.Logger
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a new Hub. db may be nil, which disables run history.
func NewHub(cfg Config, db *DB, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		sessions:   NewSessionManager(cfg, db, log),
		auth:       NewAuth(db),
		db:         db,
		log:        log,
		ipConns:    make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events and reaps idle sessions until
// ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) error {
	reap := time.NewTicker(ReapInterval)
	defer reap.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			// Keep the pilot around so the client can resume
			if client.sessionID != "" {
				h.sessions.DetachPlayer(client.sessionID, client.pilotID)
			}

		case now := <-reap.C:
			if n := h.sessions.Reap(now); n > 0 {
				h.log.Debug("reaped idle sessions", "count", n)
			}

		case <-ctx.Done():
			h.sessions.CloseAll()
			return nil
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
