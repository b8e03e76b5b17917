package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_admin/internal/models"
)

func (r *GormRepo) CountAdmins(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Admin{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormRepo) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// CreateAdminIfAbsent inserts a in one statement and relies on the unique email
// index; a concurrent insert of the same email yields ErrAlreadyExists.
func (r *GormRepo) CreateAdminIfAbsent(ctx context.Context, a *models.Admin) error {
	tx := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(a)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *GormRepo) ResetAdmins(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Admin{})
	return res.RowsAffected, res.Error
}
