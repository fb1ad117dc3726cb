package oidc

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelodel80/cadmus-api/internal/config"
	"github.com/angelodel80/cadmus-api/pkg/middleware"
)

func unsigned(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." + enc.EncodeToString([]byte(payload)) + "."
}

func TestInsecureVerifier(t *testing.T) {
	tok, err := NewInsecureVerifier().Verify(context.Background(), unsigned(`{"preferred_username":"zeus"}`))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "zeus", claims["preferred_username"])

	_, err = NewInsecureVerifier().Verify(context.Background(), "garbage")
	require.Error(t, err)
}

type failing struct{}

func (failing) Verify(context.Context, string) (middleware.Token, error) {
	return nil, errors.New("nope")
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	raw := unsigned(`{"sub":"1"}`)

	_, err := Chain{failing{}}.Verify(ctx, raw)
	require.Error(t, err)

	tok, err := Chain{failing{}, NewInsecureVerifier()}.Verify(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, tok)

	_, err = Chain{}.Verify(ctx, raw)
	require.Error(t, err)
}

func TestNewKeycloakVerifier_RequiresRealm(t *testing.T) {
	_, err := NewKeycloakVerifier(context.Background(), config.KeycloakConfig{URL: "http://kc"})
	require.Error(t, err)
}
