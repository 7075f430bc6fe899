package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/core/port"
)

// UpdateUserInput captures the payload for updating a user record. Role
// changes take effect on the next issued credential; outstanding credentials
// keep their issuance-time snapshot.
type UpdateUserInput struct {
	ID       string
	FullName *string
	Roles    []domain.Role
}

// UserService manages the user registry. The user resource has no ownership
// concept: users do not "own" themselves, so every decision is role-based.
type UserService struct {
	users port.UserRepository
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetUser retrieves a user by id with the password hash stripped.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

// ListUsers returns every user record with password hashes stripped.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateUser modifies a user's profile and role assignments.
func (s *UserService) UpdateUser(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Roles != nil {
		if len(input.Roles) == 0 {
			return nil, fmt.Errorf("user must keep at least one role")
		}
		user.Roles = input.Roles
	}

	if err := s.users.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

// DeleteUser removes a user record. Outstanding credentials for the deleted
// user stay cryptographically valid until expiry; see the denylist for the
// revocation path.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
