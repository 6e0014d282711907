package repository

import (
	"github.com/likbrus/likbrus.github.io/internal/model"

	"gorm.io/gorm"
)

// PurchaseRepository is write-only: purchases are never read back individually.
type PurchaseRepository interface {
	CreateTx(tx *gorm.DB, p *model.Purchase) error
	DeleteAllTx(tx *gorm.DB) (int64, error)
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) CreateTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Create(p).Error
}

func (r *purchaseRepo) DeleteAllTx(tx *gorm.DB) (int64, error) {
	res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Purchase{})
	return res.RowsAffected, res.Error
}
