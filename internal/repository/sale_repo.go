package repository

import (
	"context"

	"github.com/likbrus/likbrus.github.io/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	TotalProfit(ctx context.Context) (decimal.Decimal, error)
	TotalProfitTx(tx *gorm.DB) (decimal.Decimal, error)
	// Recent returns the newest sales joined with the product name in one query.
	Recent(ctx context.Context, limit int) ([]model.SaleWithProduct, error)
	DeleteAllTx(tx *gorm.DB) (int64, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) TotalProfit(ctx context.Context) (decimal.Decimal, error) {
	return sumProfit(r.db.WithContext(ctx))
}

func (r *saleRepo) TotalProfitTx(tx *gorm.DB) (decimal.Decimal, error) {
	return sumProfit(tx)
}

func sumProfit(db *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Model(&model.Sale{}).Select("COALESCE(SUM(profit), 0)").Row().Scan(&total)
	return total, err
}

func (r *saleRepo) Recent(ctx context.Context, limit int) ([]model.SaleWithProduct, error) {
	var rows []model.SaleWithProduct
	err := r.db.WithContext(ctx).
		Table("sales AS s").
		Select("s.id, s.product_id, s.quantity, s.profit, s.created_at, p.name AS product_name").
		Joins("LEFT JOIN products p ON p.id = s.product_id").
		Order("s.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) DeleteAllTx(tx *gorm.DB) (int64, error) {
	res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Sale{})
	return res.RowsAffected, res.Error
}
