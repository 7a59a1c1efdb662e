package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin   = "join"
	MsgLeave  = "leave"
	MsgInput  = "input"
	MsgCreate = "create" // create session
	MsgList   = "list"   // list sessions
	MsgCheck  = "check"  // check if session exists
	MsgResume = "resume" // re-attach to a pilot with a resume token
)

// Server -> Client message types
const (
	MsgState    = "state"
	MsgWelcome  = "welcome"
	MsgDeath    = "death"
	MsgSessions = "sessions"
	MsgJoined   = "joined"
	MsgCreated  = "created" // session created, client should navigate
	MsgError    = "error"
	MsgChecked  = "checked" // session check response
)

// Collision event kinds carried in GameState
const (
	EventEnter = "enter"
	EventExit  = "exit"
	EventHit   = "hit"
	EventGraze = "graze"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is sent by the client every frame it changes
type ClientInput struct {
	MX    float64 `json:"mx"`    // pointer X (arena coords)
	MY    float64 `json:"my"`    // pointer Y (arena coords)
	Focus bool    `json:"focus"` // slow movement held
}

// JoinMsg is sent when a player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
}

// ResumeMsg carries a token from an earlier welcome
type ResumeMsg struct {
	Token string `json:"token"`
}

// PilotState is broadcast per pilot
type PilotState struct {
	ID     string  `json:"id" msgpack:"id"`
	Name   string  `json:"n" msgpack:"n"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Lives  int     `json:"l" msgpack:"l"`
	Score  int     `json:"sc" msgpack:"sc"`
	Grazes int     `json:"g" msgpack:"g"`
	Alive  bool    `json:"a" msgpack:"a"`
	Invuln bool    `json:"iv,omitempty" msgpack:"iv,omitempty"`
	Focus  bool    `json:"f,omitempty" msgpack:"f,omitempty"`
}

// BulletState is broadcast per bullet
type BulletState struct {
	ID     uint32  `json:"id" msgpack:"id"`
	Kind   uint8   `json:"k" msgpack:"k"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Angle  float64 `json:"r" msgpack:"r"`
	Radius float64 `json:"rad,omitempty" msgpack:"rad,omitempty"`
	Length float64 `json:"len,omitempty" msgpack:"len,omitempty"`
}

// EmitterState is broadcast per emitter
type EmitterState struct {
	ID      string  `json:"id" msgpack:"id"`
	Pattern string  `json:"p" msgpack:"p"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Angle   float64 `json:"r" msgpack:"r"`
}

// EventState is one collision event since the previous broadcast
type EventState struct {
	Kind   string  `json:"k" msgpack:"k"`
	Pilot  string  `json:"pid" msgpack:"pid"`
	Bullet uint32  `json:"b" msgpack:"b"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
}

// CollisionStats summarises the last collision tick
type CollisionStats struct {
	Backend     string `json:"be" msgpack:"be"`
	Projectiles int    `json:"np" msgpack:"np"`
	Receivers   int    `json:"nr" msgpack:"nr"`
	PairsTested int    `json:"pt" msgpack:"pt"`
	Accepted    int    `json:"ac" msgpack:"ac"`
	Dropped     int    `json:"dr" msgpack:"dr"`
}

// GameState is the full state broadcast as a msgpack binary frame
type GameState struct {
	Pilots    []PilotState   `json:"p" msgpack:"p"`
	Bullets   []BulletState  `json:"b" msgpack:"b"`
	Emitters  []EmitterState `json:"e" msgpack:"e"`
	Events    []EventState   `json:"ev" msgpack:"ev"`
	Collision CollisionStats `json:"c" msgpack:"c"`
	Tick      uint64         `json:"tick" msgpack:"tick"`
}

// WelcomeMsg is sent to a player when they join or resume
type WelcomeMsg struct {
	ID     string  `json:"id"`
	Token  string  `json:"token"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// DeathMsg notifies a pilot they are out of lives
type DeathMsg struct {
	Score  int `json:"sc"`
	Grazes int `json:"g"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// CheckMsg is sent by client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}
