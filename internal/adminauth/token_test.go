package adminauth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerifyToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	token, err := IssueToken("secret-code", now, 24*time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		t.Fatalf("expected two token segments, got %d", len(parts))
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var payload struct {
		IssuedAt  int64  `json:"iat"`
		ExpiresAt int64  `json:"exp"`
		Nonce     string `json:"nonce"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.IssuedAt != now.UnixMilli() {
		t.Fatalf("expected iat %d, got %d", now.UnixMilli(), payload.IssuedAt)
	}
	if payload.ExpiresAt != now.Add(24*time.Hour).UnixMilli() {
		t.Fatalf("unexpected exp %d", payload.ExpiresAt)
	}
	if len(payload.Nonce) != 32 {
		t.Fatalf("expected 32 hex chars of nonce, got %q", payload.Nonce)
	}

	if err := VerifyToken("secret-code", token, now.Add(time.Hour)); err != nil {
		t.Fatalf("verify token: %v", err)
	}
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	now := time.Now()
	token, err := IssueToken("secret-code", now, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	parts := strings.Split(token, ".")

	forged := tokenPayload{
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(100 * time.Hour).UnixMilli(),
		Nonce:     strings.Repeat("a", 32),
	}
	raw, _ := json.Marshal(forged)
	tampered := base64.RawURLEncoding.EncodeToString(raw) + "." + parts[1]

	if err := VerifyToken("secret-code", tampered, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered payload, got %v", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	now := time.Now()
	token, err := IssueToken("secret-code", now, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if err := VerifyToken("other-code", token, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	now := time.Now()
	token, err := IssueToken("secret-code", now, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if err := VerifyToken("secret-code", token, now.Add(2*time.Hour)); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyTokenMalformed(t *testing.T) {
	now := time.Now()
	cases := []string{"", "justonepart", ".sig", "payload.", "a.b.c"}
	for _, token := range cases {
		if err := VerifyToken("secret-code", token, now); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestIssueTokenEmptySecretFailsClosed(t *testing.T) {
	if _, err := IssueToken("", time.Now(), time.Hour); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
	if err := VerifyToken("", "a.b", time.Now()); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired on verify, got %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	if !CheckPassword("code", "code") {
		t.Fatal("expected matching password to pass")
	}
	if CheckPassword("code", "wrong") {
		t.Fatal("expected mismatched password to fail")
	}
	if CheckPassword("", "") {
		t.Fatal("empty configured secret must fail closed")
	}
}
