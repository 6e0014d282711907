package service

import (
	"context"
	"errors"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	// RecordQuickSale sells exactly one unit of the product.
	RecordQuickSale(ctx context.Context, productID uuid.UUID) (*dto.SaleResultResponse, error)
	RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResultResponse, error)
}

type saleService struct {
	products repository.ProductRepository
	sales    repository.SaleRepository
	notifier ChangeNotifier
}

func NewSaleService(products repository.ProductRepository, sales repository.SaleRepository, notifier ChangeNotifier) SaleService {
	return &saleService{products: products, sales: sales, notifier: notifier}
}

func (s *saleService) RecordQuickSale(ctx context.Context, productID uuid.UUID) (*dto.SaleResultResponse, error) {
	return s.sell(ctx, productID, 1)
}

func (s *saleService) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResultResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if req.Quantity < 1 {
		return nil, invalidField("Antall må være et positivt heltall", "quantity", "invalid")
	}
	return s.sell(ctx, productID, req.Quantity)
}

// sell locks the product row, decrements stock only if enough is left and
// stores the sale with profit computed from the stored prices. The running
// total is read inside the same transaction.
func (s *saleService) sell(ctx context.Context, productID uuid.UUID, qty int) (*dto.SaleResultResponse, error) {
	var (
		product *model.Product
		sale    *model.Sale
		total   decimal.Decimal
	)

	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		p, err := s.products.LockByIDTx(tx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return backendErr("kunne ikke hente produkt", err)
		}

		ok, err := s.products.DecrementStockTx(tx, productID, qty)
		if err != nil {
			return backendErr("kunne ikke oppdatere lager", err)
		}
		if !ok {
			return ErrOutOfStock
		}

		sale = &model.Sale{
			ID:        uuid.New(),
			ProductID: &productID,
			Quantity:  qty,
			Profit:    p.UnitProfit().Mul(decimal.NewFromInt(int64(qty))),
			CreatedAt: time.Now(),
		}
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return backendErr("kunne ikke lagre salg", err)
		}

		total, err = s.sales.TotalProfitTx(tx)
		if err != nil {
			return backendErr("kunne ikke beregne fortjeneste", err)
		}

		p.Stock -= qty
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("product", product.Name).
		Int("quantity", qty).
		Str("profit", sale.Profit.StringFixed(2)).
		Int("stock", product.Stock).
		Msg("sale recorded")

	publish(ctx, s.notifier, model.ChangeEvent{Table: model.TableProducts, Op: model.OpUpdate, RowID: productID.String()})
	version := publish(ctx, s.notifier, model.ChangeEvent{Table: model.TableSales, Op: model.OpInsert, RowID: sale.ID.String()})

	name := product.Name
	return &dto.SaleResultResponse{
		Sale:        toSaleResponse(sale, &name),
		ProductID:   productID.String(),
		NewStock:    product.Stock,
		TotalProfit: total,
		Version:     version,
	}, nil
}

const unknownProductName = "Unknown"

func toSaleResponse(sale *model.Sale, productName *string) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:          sale.ID.String(),
		ProductName: unknownProductName,
		Quantity:    sale.Quantity,
		Profit:      sale.Profit,
		CreatedAt:   sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.ProductID != nil {
		id := sale.ProductID.String()
		resp.ProductID = &id
	}
	if productName != nil && *productName != "" {
		resp.ProductName = *productName
	}
	return resp
}
