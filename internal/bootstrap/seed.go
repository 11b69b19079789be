// Package bootstrap creates the records a fresh database needs.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/jwt_auth/internal/models"
	"github.com/Skotchmaster/jwt_auth/internal/service"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

type defaultUser struct {
	input service.UserInput
	roles []string
}

var defaultRoles = []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleUser}

var defaultUsers = []defaultUser{
	{
		input: service.UserInput{UserName: "root", FullName: "Super Admin", Email: "superadmin@testuser.com", Password: "root@1234"},
		roles: []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleUser},
	},
	{
		input: service.UserInput{UserName: "admin", FullName: "Admin", Email: "admin@testuser.com", Password: "admin@1234"},
		roles: []string{models.RoleAdmin, models.RoleUser},
	},
	{
		input: service.UserInput{UserName: "user", FullName: "User", Email: "user@testuser.com", Password: "user@1234"},
		roles: []string{models.RoleUser},
	},
}

// Seed ensures the built-in roles exist. With withUsers it also creates
// the root, admin and user accounts. Running it again changes nothing.
func Seed(ctx context.Context, users *service.UserService, roles *service.RoleService, withUsers bool) error {
	l := logging.FromContext(ctx).With("svc", "bootstrap.seed")

	for _, name := range defaultRoles {
		if _, err := roles.Create(ctx, name); err != nil {
			if errors.Is(err, service.ErrConflict) {
				continue
			}
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		l.Info("role_seeded", "role", name)
	}

	if !withUsers {
		return nil
	}

	for _, du := range defaultUsers {
		if _, err := users.Create(ctx, du.input); err != nil {
			if !errors.Is(err, service.ErrConflict) {
				return fmt.Errorf("seed user %s: %w", du.input.UserName, err)
			}
		} else {
			l.Info("user_seeded", "username", du.input.UserName)
		}

		for _, role := range du.roles {
			if err := roles.AddToUser(ctx, du.input.UserName, role); err != nil {
				return fmt.Errorf("seed grant %s to %s: %w", role, du.input.UserName, err)
			}
		}
	}
	return nil
}
