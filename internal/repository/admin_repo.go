package repository

import (
	"context"

	"github.com/likbrus/likbrus.github.io/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminRepository answers privilege questions against the admin_users marker table.
type AdminRepository interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	Grant(ctx context.Context, userID uuid.UUID) error
	Revoke(ctx context.Context, userID uuid.UUID) error
}

type adminRepo struct{ db *gorm.DB }

func NewAdminRepository(db *gorm.DB) AdminRepository { return &adminRepo{db: db} }

func (r *adminRepo) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.AdminUser{}).Where("user_id = ?", userID).Count(&n).Error
	return n > 0, err
}

func (r *adminRepo) Grant(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.AdminUser{UserID: userID}).Error
}

func (r *adminRepo) Revoke(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.AdminUser{}, "user_id = ?", userID).Error
}
