package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/jwt_auth/internal/events"
	"github.com/Skotchmaster/jwt_auth/internal/hash"
	"github.com/Skotchmaster/jwt_auth/internal/models"
	"github.com/Skotchmaster/jwt_auth/internal/policy"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

type UserInput struct {
	ID       uint
	UserName string
	FullName string
	Email    string
	Password string
}

type UserService struct {
	Users  UserRepository
	Roles  RoleRepository
	Events *events.Emitter
}

// VerifyCredentials returns the user when the password matches. Unknown
// users and wrong passwords are indistinguishable to the caller.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrBadCredentials
	}
	user, err := s.Users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// Create registers a user with ROLE_USER.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create", "username", in.UserName)

	exists, err := s.Users.UserExistsByUsername(ctx, in.UserName)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		l.Warn("register_error", "status", 400, "reason", "user already exist")
		return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, in.UserName)
	}

	role, err := s.Roles.FindRoleByName(ctx, models.RoleUser)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, models.RoleUser)
		}
		return nil, fmt.Errorf("find default role: %w", err)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, hash.ErrEmptyPassword) {
			return nil, NewValidationError("password", "must not be empty")
		}
		return nil, NewValidationError("password", err.Error())
	}

	user := &models.User{
		UserName:     in.UserName,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: pwHash,
		Roles:        []models.Role{*role},
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, in.UserName)
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	s.Events.Emit(ctx, events.Event{Type: events.TypeUserRegistered, UserID: user.ID, Username: user.UserName})
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Users.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, username, actorName string) (*models.User, error) {
	target, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "user.get", actorName, target); err != nil {
		return nil, err
	}
	return target, nil
}

// Update overwrites profile fields and the password. Role membership is
// left untouched.
func (s *UserService) Update(ctx context.Context, in UserInput, actorName string) (*models.User, error) {
	if in.ID == 0 {
		return nil, NewValidationError("id", "user id must not be empty")
	}

	target, err := s.Users.FindUserByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.authorize(ctx, "user.update", actorName, target); err != nil {
		return nil, err
	}

	if in.UserName != target.UserName {
		taken, err := s.Users.UserExistsByUsername(ctx, in.UserName)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, in.UserName)
		}
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, NewValidationError("password", "must not be empty")
	}

	target.UserName = in.UserName
	target.FullName = in.FullName
	target.Email = in.Email
	target.PasswordHash = pwHash

	if err := s.Users.UpdateUser(ctx, target); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, in.UserName)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.Events.Emit(ctx, events.Event{Type: events.TypeUserUpdated, UserID: target.ID, Username: target.UserName})
	return target, nil
}

func (s *UserService) Delete(ctx context.Context, username, actorName string) error {
	target, err := s.findByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, "user.delete", actorName, target); err != nil {
		return err
	}

	if err := s.Users.DeleteUser(ctx, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.Events.Emit(ctx, events.Event{Type: events.TypeUserDeleted, UserID: target.ID, Username: target.UserName})
	return nil
}

func (s *UserService) findByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.Users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *UserService) authorize(ctx context.Context, op, actorName string, target *models.User) error {
	l := logging.FromContext(ctx).With("svc", op, "actor", actorName, "target", target.UserName)

	actor, err := s.Users.FindUserByUsername(ctx, actorName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("ownership_denied", "status", 400, "reason", "actor no longer exists")
			return ErrNotAuthorized
		}
		return fmt.Errorf("find actor: %w", err)
	}
	if !policy.IsOwnerOrAdmin(actor, target) {
		l.Warn("ownership_denied", "status", 400, "reason", "not owner or admin")
		return ErrNotAuthorized
	}
	return nil
}
