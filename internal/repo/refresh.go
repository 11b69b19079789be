package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/jwt_auth/internal/models"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func (r *GormRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *GormRepo) RefreshTokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateRefreshToken relies on the unique index on token; a clash
// surfaces as gorm.ErrDuplicatedKey when error translation is enabled.
func (r *GormRepo) CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Omit("User").Create(rt).Error
}

// ConsumeRefreshToken deletes the row and returns its owner. Only the
// caller whose delete removed the row wins; a concurrent consumer sees
// gorm.ErrRecordNotFound.
func (r *GormRepo) ConsumeRefreshToken(ctx context.Context, token string) (*models.User, error) {
	var owner models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt models.RefreshToken
		if err := tx.Where("token = ?", token).First(&rt).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.RefreshToken{}, rt.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return gorm.ErrRecordNotFound
		}

		return tx.Preload("Roles").First(&owner, rt.UserID).Error
	})
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *GormRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	res := r.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRefreshTokensExpiredBefore removes rows with expiry_date strictly
// before day. The bound is passed as a plain date so the comparison is
// done at date granularity on every dialect.
func (r *GormRepo) DeleteRefreshTokensExpiredBefore(ctx context.Context, day time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expiry_date < ?", day.Format(dateLayout)).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
