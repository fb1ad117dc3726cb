package users

import (
	"context"

	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/pkg/logger"
	"github.com/angelodel80/cadmus-api/pkg/middleware"
)

// AdminRole is granted to the account created by EnsureAdmin.
const AdminRole = "admin"

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a user from verified token claims.
// It returns nil when the claims carry no user name.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	userName := middleware.UserName(claims)
	if userName == "" {
		return nil, nil
	}
	email, _ := claims["email"].(string)
	first, _ := claims["given_name"].(string)
	last, _ := claims["family_name"].(string)
	u := &models.User{
		UserName:  userName,
		Email:     email,
		FirstName: first,
		LastName:  last,
		Roles:     rolesFromClaims(claims),
	}
	return s.repo.UpsertByUserName(ctx, u)
}

// rolesFromClaims reads "roles", or Keycloak's realm_access.roles.
func rolesFromClaims(claims map[string]interface{}) []string {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		if ra, ok := claims["realm_access"].(map[string]interface{}); ok {
			raw, _ = ra["roles"].([]interface{})
		}
	}
	var roles []string
	for _, r := range raw {
		if s, ok := r.(string); ok && s != "" {
			roles = append(roles, s)
		}
	}
	return roles
}

func (s *Service) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return s.repo.GetByUserName(ctx, userName)
}

// EnsureAdmin creates the admin account when missing and makes sure it has
// the admin role. Existing profile fields are left alone.
func (s *Service) EnsureAdmin(ctx context.Context, userName, email string) error {
	created, err := s.repo.InsertIfMissing(ctx, &models.User{
		UserName:  userName,
		Email:     email,
		FirstName: "Daniele",
		LastName:  "Fusi",
		Roles:     []string{AdminRole},
	})
	if err != nil {
		return err
	}
	if created {
		logger.Infof("seeded admin user %s", userName)
		return nil
	}
	return s.repo.AddRole(ctx, userName, AdminRole)
}
