package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelodel80/cadmus-api/internal/config"
	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/pkg/middleware"
)

// GenerateAccessToken creates a signed HS256 access token for the user.
// The user name travels as preferred_username, which is what the API uses
// as the caller identity.
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":                u.UserName,
		"preferred_username": u.UserName,
		"email":              u.Email,
		"iat":                now.Unix(),
		"exp":                now.Add(ttl).Unix(),
	}
	if len(u.Roles) > 0 {
		claims["roles"] = u.Roles
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// mapToken exposes verified JWT claims through middleware.Token.
type mapToken struct {
	claims jwt.MapClaims
}

func (t *mapToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// HMACVerifier verifies tokens minted by GenerateAccessToken.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return &mapToken{claims: claims}, nil
}
