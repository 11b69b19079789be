package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/jwt_auth/internal/models"
)

// Repository methods report a miss with gorm.ErrRecordNotFound and a
// unique-index clash with gorm.ErrDuplicatedKey.

type RefreshRepository interface {
	RefreshTokenExists(ctx context.Context, token string) (bool, error)
	CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error
	ConsumeRefreshToken(ctx context.Context, token string) (*models.User, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensExpiredBefore(ctx context.Context, day time.Time) (int64, error)
}

type UserRepository interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UserExistsByUsername(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, u *models.User) error
}

type RoleRepository interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
	RoleExistsByName(ctx context.Context, name string) (bool, error)
	CreateRole(ctx context.Context, role *models.Role) error
	AddRoleToUser(ctx context.Context, user *models.User, role *models.Role) error
}
