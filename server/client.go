package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120
	maxSessionNameLen = 30
)

// binaryInputLen is the size of a compact input frame:
// [0x01, mx_hi, mx_lo, my_hi, my_lo, flags]
const binaryInputLen = 6

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	pilotID    string
	sessionID  string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("ws read failed", "addr", c.remoteAddr, "err", err)
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.hub.log.Warn("rate limit exceeded, disconnecting", "addr", c.remoteAddr)
			break
		}

		if msgType == websocket.BinaryMessage && len(message) == binaryInputLen && message[0] == 0x01 {
			c.handleBinaryInput(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame queued by SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.Error("marshal failed", "err", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }() // send on closed channel after unregister
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.hub.log.Debug("bad client message", "addr", c.remoteAddr, "err", err)
		return
	}

	switch env.T {
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgInput:
		c.handleInput(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgCheck:
		c.handleCheck(env.D)
	case MsgResume:
		c.handleResume(env.D)
	}
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgSessions, Data: c.hub.sessions.ListSessions()})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sname := msg.SessionName
	if sname == "" {
		sname = "Bullet Garden"
	}
	if len(sname) > maxSessionNameLen {
		sname = sname[:maxSessionNameLen]
	}

	sess := c.hub.sessions.CreateSession(sname)
	if sess == nil {
		c.sendError("too many active sessions")
		return
	}
	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"sid": sess.ID}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := msg.Name
	if name == "" {
		name = "Pilot"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	sess := c.hub.sessions.GetSession(msg.SessionID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	if c.sessionID != "" {
		c.handleLeave()
	}

	pilot := sess.Game.AddPilot(name)
	if pilot == nil {
		c.sendError("session full")
		return
	}
	c.pilotID = pilot.ID
	c.sessionID = sess.ID
	sess.Game.SetClient(pilot.ID, c)
	c.welcome(sess)
}

// welcome confirms a join or resume and hands out a fresh resume token
func (c *Client) welcome(sess *Session) {
	token, err := c.hub.auth.IssueResume(c.pilotID, sess.ID)
	if err != nil {
		c.hub.log.Error("resume token not issued", "pilot", c.pilotID, "err", err)
	}
	c.SendJSON(Envelope{T: MsgJoined, Data: map[string]string{"sid": sess.ID}})
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		ID:     c.pilotID,
		Token:  token,
		Width:  sess.Game.arena.Width,
		Height: sess.Game.arena.Height,
	}})
}

func (c *Client) handleResume(data json.RawMessage) {
	var msg ResumeMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	pid, sid, err := c.hub.auth.ValidateResume(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	sess := c.hub.sessions.GetSession(sid)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	if !sess.Game.Reattach(pid, c) {
		c.sendError("pilot not found")
		return
	}
	c.pilotID = pid
	c.sessionID = sid
	c.welcome(sess)
}

// handleBinaryInput decodes a compact binary input frame
func (c *Client) handleBinaryInput(msg []byte) {
	if c.sessionID == "" || c.pilotID == "" {
		return
	}
	input := ClientInput{
		MX:    float64(int16(uint16(msg[1])<<8 | uint16(msg[2]))),
		MY:    float64(int16(uint16(msg[3])<<8 | uint16(msg[4]))),
		Focus: msg[5]&0x01 != 0,
	}
	if sess := c.hub.sessions.GetSession(c.sessionID); sess != nil {
		sess.Game.HandleInput(c.pilotID, input)
	}
}

func (c *Client) handleInput(data json.RawMessage) {
	if c.sessionID == "" || c.pilotID == "" {
		return
	}
	var input ClientInput
	if err := json.Unmarshal(data, &input); err != nil {
		return
	}
	if sess := c.hub.sessions.GetSession(c.sessionID); sess != nil {
		sess.Game.HandleInput(c.pilotID, input)
	}
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{SID: msg.SID, Exists: false}})
		return
	}
	c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{
		SID:     msg.SID,
		Exists:  true,
		Name:    sess.Name,
		Players: sess.Game.PlayerCount(),
	}})
}

func (c *Client) handleLeave() {
	if c.sessionID == "" {
		return
	}
	c.hub.sessions.RemovePlayer(c.sessionID, c.pilotID)
	c.sessionID = ""
	c.pilotID = ""
}
