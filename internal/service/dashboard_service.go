package service

import (
	"context"
	"errors"

	"github.com/likbrus/likbrus.github.io/internal/dto"

	"golang.org/x/sync/errgroup"
)

// Parts of a dashboard snapshot, as named in DashboardResponse.Stale.
const (
	PartProducts    = "products"
	PartTotalProfit = "total_profit"
)

type DashboardService interface {
	Load(ctx context.Context, isAdmin bool) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	catalog  CatalogService
	reports  ReportService
	notifier ChangeNotifier
}

func NewDashboardService(catalog CatalogService, reports ReportService, notifier ChangeNotifier) DashboardService {
	return &dashboardService{catalog: catalog, reports: reports, notifier: notifier}
}

// Load fetches the product list and the profit total concurrently. The
// version is read first; any change after it bumps the feed past it.
// A part that fails is left empty and named in Stale, so the snapshot is
// returned even when err, which joins the part failures, is non-nil.
func (s *dashboardService) Load(ctx context.Context, isAdmin bool) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{
		Products: []dto.ProductResponse{},
		Version:  currentVersion(ctx, s.notifier),
		IsAdmin:  isAdmin,
	}

	var productsErr, totalErr error
	var g errgroup.Group
	g.Go(func() error {
		products, err := s.catalog.ListProducts(ctx)
		if err != nil {
			productsErr = err
			return nil
		}
		resp.Products = products
		return nil
	})
	g.Go(func() error {
		total, err := s.reports.TotalProfit(ctx)
		if err != nil {
			totalErr = err
			return nil
		}
		resp.TotalProfit = total.TotalProfit
		return nil
	})
	_ = g.Wait()

	if productsErr != nil {
		resp.Stale = append(resp.Stale, PartProducts)
	}
	if totalErr != nil {
		resp.Stale = append(resp.Stale, PartTotalProfit)
	}
	return resp, errors.Join(productsErr, totalErr)
}
