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
	"gorm.io/gorm"
)

type CatalogService interface {
	ListProducts(ctx context.Context) ([]dto.ProductResponse, error)
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, confirmed bool) error
}

type catalogService struct {
	repo     repository.ProductRepository
	notifier ChangeNotifier
}

func NewCatalogService(repo repository.ProductRepository, notifier ChangeNotifier) CatalogService {
	return &catalogService{repo: repo, notifier: notifier}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, backendErr("kunne ikke hente produkter", err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out, nil
}

// CreateProduct parses the admin form. Name and both prices are required;
// an absent or unparseable initial stock counts as 0.
func (s *catalogService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	missing := map[string]string{}
	if req.Name.Empty() {
		missing["name"] = "required"
	}
	if req.BuyPrice.Empty() {
		missing["buy_price"] = "required"
	}
	if req.SellPrice.Empty() {
		missing["sell_price"] = "required"
	}
	if len(missing) > 0 {
		return nil, missingFields(missing)
	}

	buy, ok := parseAmount(req.BuyPrice)
	if !ok {
		return nil, invalidField("Ugyldig innkjøpspris", "buy_price", "invalid")
	}
	sell, ok := parseAmount(req.SellPrice)
	if !ok {
		return nil, invalidField("Ugyldig salgspris", "sell_price", "invalid")
	}

	stock := 0
	if !req.InitialStock.Empty() {
		if n, ok := parseInt(req.InitialStock); ok {
			stock = n
		}
	}
	if stock < 0 {
		return nil, invalidField("Lagerbeholdning kan ikke være negativ", "initial_stock", "negative")
	}

	p := &model.Product{
		ID:        uuid.New(),
		Name:      req.Name.String(),
		BuyPrice:  buy,
		SellPrice: sell,
		Stock:     stock,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, backendErr("kunne ikke lagre produkt", err)
	}
	if sell.LessThan(buy) {
		log.Warn().Str("product", p.Name).Msg("sell price below buy price")
	}

	publish(ctx, s.notifier, model.ChangeEvent{Table: model.TableProducts, Op: model.OpInsert, RowID: p.ID.String()})
	resp := toProductResponse(p)
	return &resp, nil
}

// DeleteProduct removes a product after explicit confirmation. Purchase and
// sale rows keep their history with product_id set to NULL.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return invalidField("Bekreft sletting av produktet", "confirm", "required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return backendErr("kunne ikke slette produkt", err)
	}
	publish(ctx, s.notifier, model.ChangeEvent{Table: model.TableProducts, Op: model.OpDelete, RowID: id.String()})
	return nil
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		BuyPrice:  p.BuyPrice,
		SellPrice: p.SellPrice,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
