package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/angelodel80/cadmus-api/internal/users"
	"github.com/angelodel80/cadmus-api/pkg/middleware"
)

type fakeToken struct{ claims map[string]interface{} }

func (t *fakeToken) Claims(v interface{}) error {
	p, ok := v.(*map[string]interface{})
	if !ok {
		return errors.New("unsupported claims target")
	}
	*p = t.claims
	return nil
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	if raw != "goodtoken" {
		return nil, errors.New("invalid token")
	}
	return &fakeToken{claims: map[string]interface{}{
		"preferred_username": "zeus",
		"email":              "zeus@olympus.org",
		"roles":              []interface{}{"admin"},
	}}, nil
}

func userInfoRouter(svc *users.Service) *gin.Engine {
	g := gin.New()
	api := g.Group("/api", middleware.AuthMiddleware(fakeVerifier{}))
	RegisterUserInfo(api, svc)
	return g
}

func getUserInfo(g *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/api/user-info", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestUserInfo_UpsertsUser(t *testing.T) {
	repo := users.NewMemoryUserRepository()
	w := getUserInfo(userInfoRouter(users.NewService(repo)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "zeus", gjson.Get(w.Body.String(), "user.userName").String())

	u, err := repo.GetByUserName(context.Background(), "zeus")
	require.NoError(t, err)
	require.Equal(t, "zeus@olympus.org", u.Email)
}

func TestUserInfo_ClaimsWithoutStore(t *testing.T) {
	w := getUserInfo(userInfoRouter(nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "zeus", gjson.Get(w.Body.String(), "claims.preferred_username").String())
}

func TestUserInfo_Unauthenticated(t *testing.T) {
	g := userInfoRouter(nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest("GET", "/api/user-info", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
