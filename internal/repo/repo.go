package repo

import (
	"context"

	"github.com/Skotchmaster/jwt_auth/internal/models"
	"gorm.io/gorm"
)

// GormRepo is the directory store: users, roles and refresh tokens.
// Lookups that miss return gorm.ErrRecordNotFound.
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}
