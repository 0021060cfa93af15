package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rayz-store/tienda-backend/pkg/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret: "secret",
		Issuer:    "https://auth.example.test/auth/v1",
		Audience:  "authenticated",
	}
}

func TestMintAndVerifyAccessToken(t *testing.T) {
	cfg := testAuthConfig()
	verifier, err := NewVerifier(cfg)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token, err := MintAccessToken(cfg, time.Now(), 30*time.Minute, AccessTokenPayload{
		Subject: "auth-uid-1",
		Email:   "Ana@Example.com",
		Name:    "Ana",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "auth-uid-1" {
		t.Fatalf("unexpected subject %s", claims.Subject)
	}
	if claims.Email != "Ana@Example.com" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
	if claims.DisplayName() != "Ana" {
		t.Fatalf("unexpected display name %q", claims.DisplayName())
	}
}

func TestVerifyRejectsTamperedAndExpired(t *testing.T) {
	cfg := testAuthConfig()
	verifier, _ := NewVerifier(cfg)

	token, err := MintAccessToken(cfg, time.Now(), time.Minute, AccessTokenPayload{Subject: "u"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := verifier.Verify(token + "x"); err == nil {
		t.Fatal("expected invalid signature error")
	}

	expired, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), time.Minute, AccessTokenPayload{Subject: "u"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = verifier.Verify(expired)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiration error, got %v", err)
	}
}

func TestVerifyChecksIssuerAndAudience(t *testing.T) {
	cfg := testAuthConfig()
	verifier, _ := NewVerifier(cfg)

	other := cfg
	other.Issuer = "https://someone-else.test"
	token, err := MintAccessToken(other, time.Now(), time.Minute, AccessTokenPayload{Subject: "u"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected issuer mismatch")
	}

	other = cfg
	other.Audience = "anon"
	token, _ = MintAccessToken(other, time.Now(), time.Minute, AccessTokenPayload{Subject: "u"})
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected audience mismatch")
	}
}

func TestVerifyRejectsOtherAlgorithmsAndMissingSubject(t *testing.T) {
	cfg := testAuthConfig()
	verifier, _ := NewVerifier(cfg)

	claims := HostedClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u",
		Issuer:    cfg.Issuer,
		Audience:  jwt.ClaimStrings{cfg.Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.Verify(hs512); err == nil {
		t.Fatal("expected HS512 to be rejected")
	}

	claims.Subject = ""
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if _, err := verifier.Verify(noSub); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier(config.AuthConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	var nilVerifier *Verifier
	if _, err := nilVerifier.Verify("x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured from nil verifier, got %v", err)
	}
}
