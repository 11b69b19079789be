package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/jwt_auth/internal/events"
	"github.com/Skotchmaster/jwt_auth/internal/models"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

type RoleService struct {
	Users  UserRepository
	Roles  RoleRepository
	Events *events.Emitter
}

// List returns roles ordered by id.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	return s.Roles.ListRoles(ctx)
}

func (s *RoleService) Create(ctx context.Context, name string) (*models.Role, error) {
	exists, err := s.Roles.RoleExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check role: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: role %q already exists", ErrConflict, name)
	}

	role := &models.Role{Name: name}
	if err := s.Roles.CreateRole(ctx, role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: role %q already exists", ErrConflict, name)
		}
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// AddToUser grants a role. Granting a role the user already has is a no-op.
func (s *RoleService) AddToUser(ctx context.Context, username, roleName string) error {
	l := logging.FromContext(ctx).With("svc", "role.add_to_user", "username", username, "role", roleName)

	user, err := s.Users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	role, err := s.Roles.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("find role: %w", err)
	}

	if user.HasRole(role.Name) {
		return nil
	}
	if err := s.Roles.AddRoleToUser(ctx, user, role); err != nil {
		l.Error("grant_error", "status", 500, "error", err)
		return fmt.Errorf("grant role: %w", err)
	}

	l.Info("role_granted")
	s.Events.Emit(ctx, events.Event{Type: events.TypeRoleGranted, UserID: user.ID, Username: user.UserName, Role: role.Name})
	return nil
}
