package services

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestClerkVerifierHS256(t *testing.T) {
	v := NewClerkVerifier(logger.Nop(), ClerkVerifierConfig{HMACSecret: "dev-secret"})
	tok := signHS256(t, "dev-secret", jwt.MapClaims{
		"sub": "user_123",
		"sid": "sess_1",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	claims, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user_123" || claims.SessionID != "sess_1" {
		t.Fatalf("claims: got %+v", claims)
	}
}

func TestClerkVerifierRejects(t *testing.T) {
	v := NewClerkVerifier(logger.Nop(), ClerkVerifierConfig{
		HMACSecret:        "dev-secret",
		Issuer:            "https://clerk.example.com",
		AuthorizedParties: []string{"http://localhost:3000"},
	})
	exp := time.Now().Add(time.Minute).Unix()
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", signHS256(t, "other", jwt.MapClaims{"sub": "u", "exp": exp, "iss": "https://clerk.example.com"})},
		{"expired", signHS256(t, "dev-secret", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix(), "iss": "https://clerk.example.com"})},
		{"no exp", signHS256(t, "dev-secret", jwt.MapClaims{"sub": "u", "iss": "https://clerk.example.com"})},
		{"no sub", signHS256(t, "dev-secret", jwt.MapClaims{"exp": exp, "iss": "https://clerk.example.com"})},
		{"wrong issuer", signHS256(t, "dev-secret", jwt.MapClaims{"sub": "u", "exp": exp, "iss": "https://evil.example.com"})},
		{"wrong azp", signHS256(t, "dev-secret", jwt.MapClaims{"sub": "u", "exp": exp, "iss": "https://clerk.example.com", "azp": "https://evil.example.com"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tt.token); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestClerkVerifierRejectsES256(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Minute).Unix()})
	tok.Header["kid"] = "ec-1"
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	v := NewClerkVerifier(logger.Nop(), ClerkVerifierConfig{HMACSecret: "dev-secret"})
	_, err = v.Verify(context.Background(), signed)
	if err == nil {
		t.Fatalf("expected ES256 to be rejected")
	}
	if !strings.Contains(err.Error(), "signing method ES256 is invalid") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClerkVerifierHS256DisabledWithoutSecret(t *testing.T) {
	v := NewClerkVerifier(logger.Nop(), ClerkVerifierConfig{})
	tok := signHS256(t, "dev-secret", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Minute).Unix()})
	if _, err := v.Verify(context.Background(), tok); err == nil {
		t.Fatalf("expected HS256 to be rejected when no secret is configured")
	}
}

func TestClerkVerifierRS256FromJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	var fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		_ = json.NewEncoder(w).Encode(jwkSet{Keys: []jwk{{
			Kty: "RSA",
			Kid: "kid-1",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	defer srv.Close()

	v := NewClerkVerifier(logger.Nop(), ClerkVerifierConfig{JWKSURL: srv.URL})
	sign := func(kid string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "user_rs",
			"exp": time.Now().Add(time.Minute).Unix(),
		})
		tok.Header["kid"] = kid
		s, err := tok.SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	for i := 0; i < 2; i++ {
		claims, err := v.Verify(context.Background(), sign("kid-1"))
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if claims.UserID != "user_rs" {
			t.Fatalf("sub: want=user_rs got=%s", claims.UserID)
		}
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("jwks fetches: want=1 got=%d", got)
	}

	if _, err := v.Verify(context.Background(), sign("unknown")); err == nil {
		t.Fatalf("expected unknown kid to fail")
	}
}
