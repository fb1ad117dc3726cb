package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelodel80/cadmus-api/internal/models"
)

type fakeRepo struct {
	lastUpsert *models.User
	upsertErr  error
}

func (f *fakeRepo) UpsertByUserName(ctx context.Context, u *models.User) (*models.User, error) {
	f.lastUpsert = u
	// simulate repository behavior: ensure timestamps are set
	now := time.Now().UTC()
	if f.lastUpsert.CreatedAt.IsZero() {
		f.lastUpsert.CreatedAt = now
	}
	f.lastUpsert.UpdatedAt = now
	ret := *f.lastUpsert
	ret.ID = "abcd1234"
	return &ret, f.upsertErr
}

func (f *fakeRepo) InsertIfMissing(ctx context.Context, u *models.User) (bool, error) {
	return true, nil
}

func (f *fakeRepo) AddRole(ctx context.Context, userName, role string) error { return nil }

func (f *fakeRepo) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return nil, nil
}

func TestUpsertFromClaims(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	claims := map[string]interface{}{
		"sub":                "sub-123",
		"preferred_username": "zeus",
		"email":              "x@example.com",
		"given_name":         "Daniele",
		"realm_access":       map[string]interface{}{"roles": []interface{}{"admin", "editor"}},
	}

	u, err := svc.UpsertFromClaims(ctx, claims)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "zeus", u.UserName)
	require.Equal(t, "x@example.com", u.Email)
	require.Equal(t, "Daniele", u.FirstName)
	require.Equal(t, []string{"admin", "editor"}, u.Roles)
	require.NotEmpty(t, u.ID)
	require.False(t, repo.lastUpsert.CreatedAt.After(repo.lastUpsert.UpdatedAt))

	// no user name => nil
	u2, err := svc.UpsertFromClaims(ctx, map[string]interface{}{"email": "y@e.com"})
	require.NoError(t, err)
	require.Nil(t, u2)
}

func TestMemoryRepository_UpsertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryUserRepository())

	first, err := svc.UpsertFromClaims(ctx, map[string]interface{}{"preferred_username": "hera", "email": "a@b"})
	require.NoError(t, err)
	second, err := svc.UpsertFromClaims(ctx, map[string]interface{}{"preferred_username": "hera", "email": "c@d"})
	require.NoError(t, err)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.Equal(t, "c@d", second.Email)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	svc := NewService(repo)

	require.NoError(t, svc.EnsureAdmin(ctx, "zeus", "fake@nowhere.com"))
	u, err := svc.GetByUserName(ctx, "zeus")
	require.NoError(t, err)
	require.Equal(t, []string{AdminRole}, u.Roles)

	// an existing account without the role gets it, and keeps its profile
	_, err = repo.UpsertByUserName(ctx, &models.User{UserName: "hermes", Email: "h@olympus"})
	require.NoError(t, err)
	require.NoError(t, svc.EnsureAdmin(ctx, "hermes", "other@nowhere.com"))
	u, err = svc.GetByUserName(ctx, "hermes")
	require.NoError(t, err)
	require.Equal(t, "h@olympus", u.Email)
	require.Equal(t, []string{AdminRole}, u.Roles)

	// idempotent
	require.NoError(t, svc.EnsureAdmin(ctx, "zeus", "fake@nowhere.com"))
	u, err = svc.GetByUserName(ctx, "zeus")
	require.NoError(t, err)
	require.Equal(t, []string{AdminRole}, u.Roles)

	missing, err := svc.GetByUserName(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, missing)
}
