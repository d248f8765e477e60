// Package notice holds the announcement model and the admin session token.
package notice

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TokenTTL is how long an admin token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Item is one announcement.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Payload is the signed part of a token. Exp is in milliseconds since the epoch.
type Payload struct {
	Exp int64 `json:"exp"`
}

// NewPayload returns a payload expiring TokenTTL after now.
func NewPayload(now time.Time) Payload {
	return Payload{Exp: now.Add(TokenTTL).UnixMilli()}
}

// MakeToken signs p with secret as "<b64url(json)>.<b64url(hmac)>".
func MakeToken(secret string, p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode token payload: %w", err)
	}
	b64 := base64.RawURLEncoding.EncodeToString(data)
	return b64 + "." + sign(secret, b64), nil
}

// VerifyToken checks the signature and expiry of token.
func VerifyToken(secret, token string, now time.Time) (Payload, bool) {
	b64, sig, ok := strings.Cut(token, ".")
	if !ok || strings.Contains(sig, ".") {
		return Payload{}, false
	}
	if !hmac.Equal([]byte(sig), []byte(sign(secret, b64))) {
		return Payload{}, false
	}

	data, err := base64.RawURLEncoding.DecodeString(b64)
	if err != nil {
		return Payload{}, false
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, false
	}
	if p.Exp < now.UnixMilli() {
		return Payload{}, false
	}
	return p, true
}

func sign(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
