package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	resumeExpiry     = 30 * time.Minute
	secretSettingKey = "resume_secret"
)

var errInvalidToken = errors.New("invalid resume token")

// Auth issues and checks resume tokens. A token lets a reconnecting
// client re-attach to its pilot without rejoining the session.
type Auth struct {
	secret []byte
}

// NewAuth creates an Auth whose secret persists in db. db may be nil,
// in which case tokens only survive the process.
func NewAuth(db *DB) *Auth {
	return &Auth{secret: loadOrCreateSecret(db)}
}

// loadOrCreateSecret loads the signing secret from the database, or
// generates and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting(secretSettingKey); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate resume secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting(secretSettingKey, hex.EncodeToString(secret)); err != nil {
			slog.Warn("could not persist resume secret", "err", err)
		}
	}
	return secret
}

// IssueResume returns a token for pilotID in sessionID
func (a *Auth) IssueResume(pilotID, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"pid": pilotID,
		"sid": sessionID,
		"exp": now.Add(resumeExpiry).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateResume checks a token and returns (pilotID, sessionID)
func (a *Auth) ValidateResume(tokenStr string) (string, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", errInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errInvalidToken
	}
	pid, ok := claims["pid"].(string)
	if !ok || pid == "" {
		return "", "", fmt.Errorf("%w: missing pilot", errInvalidToken)
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", "", fmt.Errorf("%w: missing session", errInvalidToken)
	}
	return pid, sid, nil
}
