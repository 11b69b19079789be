package repo

import (
	"context"

	"github.com/Skotchmaster/jwt_auth/internal/models"
)

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *GormRepo) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) RoleExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateRole(ctx context.Context, role *models.Role) error {
	return r.DB.WithContext(ctx).Create(role).Error
}

// AddRoleToUser links the role; linking an already granted role is a no-op.
func (r *GormRepo) AddRoleToUser(ctx context.Context, user *models.User, role *models.Role) error {
	return r.DB.WithContext(ctx).Model(user).Association("Roles").Append(role)
}
