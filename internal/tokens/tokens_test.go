package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelodel80/cadmus-api/internal/config"
	"github.com/angelodel80/cadmus-api/internal/models"
)

func TestGenerateAccessToken_ValidAndClaims(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-32-bytes-should-be-long-enough"

	u := &models.User{UserName: "zeus", Email: "zeus@example.com", Roles: []string{"admin"}}
	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("token should be valid")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type assertion failed")
	}
	if claims["preferred_username"] != u.UserName {
		t.Fatalf("unexpected preferred_username claim: got=%v want=%v", claims["preferred_username"], u.UserName)
	}
}

func TestGenerateAccessToken_NoSecret(t *testing.T) {
	if _, err := GenerateAccessToken(&config.Config{}, &models.User{UserName: "x"}, time.Minute); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestHMACVerifier_Accepts(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "verifier-secret-32-bytes-xxxxxxxxxx"
	tokenStr, err := GenerateAccessToken(cfg, &models.User{UserName: "hera"}, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	tok, err := NewHMACVerifier(cfg.JWT.Secret).Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if claims["preferred_username"] != "hera" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestHMACVerifier_Expired(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "another-secret-32-bytes-longgggg"
	tokenStr, err := GenerateAccessToken(cfg, &models.User{UserName: "u2"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if _, err := NewHMACVerifier(cfg.JWT.Secret).Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestHMACVerifier_WrongSecretFails(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "secret-one-32-bytes-xxxxxxxxxxxxxxxx"
	tokenStr, err := GenerateAccessToken(cfg, &models.User{UserName: "u3"}, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if _, err := NewHMACVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected verify to fail with wrong secret")
	}
}

func TestHMACVerifier_Malformed(t *testing.T) {
	if _, err := NewHMACVerifier("x").Verify(context.Background(), "not.a.jwt"); err == nil {
		t.Fatalf("expected verify to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestHMACVerifier_AlgNoneRejected(t *testing.T) {
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u-none","exp":9999999999}`))
	tok := headerEnc + "." + payloadEnc + "."
	if _, err := NewHMACVerifier("x").Verify(context.Background(), tok); err == nil {
		t.Fatalf("expected verify to reject alg=none token")
	}
}

// Tampering with payload must fail signature verification
func TestHMACVerifier_TamperedPayload(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "tamper-test-secret-32-bytes-xxxxxxx"
	tokenStr, err := GenerateAccessToken(cfg, &models.User{UserName: "user-t"}, 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, _ := base64.RawURLEncoding.DecodeString(parts[1])
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(payloadBytes), "user-t", "attacker", -1)))
	if _, err := NewHMACVerifier(cfg.JWT.Secret).Verify(context.Background(), strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}
