package service

import (
	"context"
	"errors"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseService interface {
	RecordPurchase(ctx context.Context, req dto.RecordPurchaseRequest) (*dto.PurchaseResponse, error)
}

type purchaseService struct {
	products  repository.ProductRepository
	purchases repository.PurchaseRepository
	notifier  ChangeNotifier
}

func NewPurchaseService(products repository.ProductRepository, purchases repository.PurchaseRepository, notifier ChangeNotifier) PurchaseService {
	return &purchaseService{products: products, purchases: purchases, notifier: notifier}
}

// RecordPurchase inserts the purchase row and raises stock in one
// transaction; either both happen or neither does.
func (s *purchaseService) RecordPurchase(ctx context.Context, req dto.RecordPurchaseRequest) (*dto.PurchaseResponse, error) {
	missing := map[string]string{}
	if req.ProductID.Empty() {
		missing["product_id"] = "required"
	}
	if req.Quantity.Empty() {
		missing["quantity"] = "required"
	}
	if req.PricePerUnit.Empty() {
		missing["price_per_unit"] = "required"
	}
	if len(missing) > 0 {
		return nil, missingFields(missing)
	}

	productID, err := uuid.Parse(req.ProductID.String())
	if err != nil {
		return nil, ErrProductNotFound
	}
	qty, ok := parseInt(req.Quantity)
	if !ok || qty < 1 {
		return nil, invalidField("Antall må være et positivt heltall", "quantity", "invalid")
	}
	price, ok := parseAmount(req.PricePerUnit)
	if !ok {
		return nil, invalidField("Ugyldig pris per enhet", "price_per_unit", "invalid")
	}

	purchase := &model.Purchase{
		ID:           uuid.New(),
		ProductID:    &productID,
		Quantity:     qty,
		PricePerUnit: price,
		CreatedAt:    time.Now(),
	}
	var newStock int

	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		p, err := s.products.LockByIDTx(tx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return backendErr("kunne ikke hente produkt", err)
		}
		if err := s.purchases.CreateTx(tx, purchase); err != nil {
			return backendErr("kunne ikke lagre innkjøp", err)
		}
		if err := s.products.IncrementStockTx(tx, productID, qty); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return backendErr("kunne ikke oppdatere lager", err)
		}
		newStock = p.Stock + qty
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.notifier, model.ChangeEvent{Table: model.TablePurchases, Op: model.OpInsert, RowID: purchase.ID.String()})
	publish(ctx, s.notifier, model.ChangeEvent{Table: model.TableProducts, Op: model.OpUpdate, RowID: productID.String()})

	return &dto.PurchaseResponse{
		ID:           purchase.ID.String(),
		ProductID:    productID.String(),
		Quantity:     qty,
		PricePerUnit: price,
		NewStock:     newStock,
		CreatedAt:    purchase.CreatedAt.Format(time.RFC3339),
	}, nil
}
