package adminauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DefaultTTL is how long an issued admin session token stays valid.
const DefaultTTL = 24 * time.Hour

var (
	ErrSecretRequired = errors.New("admin security code is not configured")
	ErrInvalidToken   = errors.New("invalid admin session token")
	ErrExpiredToken   = errors.New("admin session token expired")
)

// tokenPayload is the signed token body. Timestamps are unix milliseconds.
type tokenPayload struct {
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Nonce     string `json:"nonce"`
}

// IssueToken mints a signed admin session token valid for ttl from now.
// The token is two base64url segments: the JSON payload and an
// HMAC-SHA256 signature computed over the encoded payload.
func IssueToken(secret string, now time.Time, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	payload := tokenPayload{
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
		Nonce:     hex.EncodeToString(nonce),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + sign(secret, encoded), nil
}

// VerifyToken checks the token signature and expiry against now.
func VerifyToken(secret, token string, now time.Time) error {
	if secret == "" {
		return ErrSecretRequired
	}

	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ErrInvalidToken
	}

	expected := sign(secret, parts[0])
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[1])) != 1 {
		return ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}

	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ErrInvalidToken
	}
	if payload.ExpiresAt == 0 {
		return ErrInvalidToken
	}
	if now.UnixMilli() >= payload.ExpiresAt {
		return ErrExpiredToken
	}

	return nil
}

// CheckPassword compares the submitted code against the configured secret
// in constant time. An empty configured secret always fails.
func CheckPassword(secret, submitted string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(submitted)) == 1
}

func sign(secret, encodedPayload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
