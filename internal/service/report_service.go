package service

import (
	"context"
	"io"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/repository"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

const (
	DefaultSalesLimit = 100
	maxSalesLimit     = 100
	exportSalesLimit  = 10000
)

// ReportService is the read side: running profit total and the sales log.
type ReportService interface {
	TotalProfit(ctx context.Context) (*dto.TotalProfitResponse, error)
	RecentSales(ctx context.Context, limit int) ([]dto.SaleResponse, error)
	ExportSalesCSV(ctx context.Context, w io.Writer) error
	SalesReport(ctx context.Context) (*SalesReport, error)
}

// SalesReport is the data behind the printable report.
type SalesReport struct {
	GeneratedAt time.Time
	Sales       []dto.SaleResponse
	TotalProfit decimal.Decimal
}

type reportService struct {
	sales    repository.SaleRepository
	notifier ChangeNotifier
}

func NewReportService(sales repository.SaleRepository, notifier ChangeNotifier) ReportService {
	return &reportService{sales: sales, notifier: notifier}
}

// TotalProfit reports the feed version read before the sum, so a client
// that already saw a newer version knows this answer is stale.
func (s *reportService) TotalProfit(ctx context.Context) (*dto.TotalProfitResponse, error) {
	version := currentVersion(ctx, s.notifier)
	total, err := s.sales.TotalProfit(ctx)
	if err != nil {
		return nil, backendErr("kunne ikke beregne fortjeneste", err)
	}
	return &dto.TotalProfitResponse{TotalProfit: total, Version: version}, nil
}

// RecentSales returns sales newest first. Limits outside 1..100 fall back
// to 100.
func (s *reportService) RecentSales(ctx context.Context, limit int) ([]dto.SaleResponse, error) {
	return s.recent(ctx, ClampSalesLimit(limit))
}

func ClampSalesLimit(limit int) int {
	if limit < 1 || limit > maxSalesLimit {
		return DefaultSalesLimit
	}
	return limit
}

func (s *reportService) recent(ctx context.Context, limit int) ([]dto.SaleResponse, error) {
	rows, err := s.sales.Recent(ctx, limit)
	if err != nil {
		return nil, backendErr("kunne ikke hente salg", err)
	}
	out := make([]dto.SaleResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toSaleResponse(&rows[i].Sale, rows[i].ProductName))
	}
	return out, nil
}

func (s *reportService) ExportSalesCSV(ctx context.Context, w io.Writer) error {
	sales, err := s.recent(ctx, exportSalesLimit)
	if err != nil {
		return err
	}
	rows := make([]*dto.SaleExportRow, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, &dto.SaleExportRow{
			CreatedAt:   sale.CreatedAt,
			ProductName: sale.ProductName,
			Quantity:    sale.Quantity,
			Profit:      sale.Profit.StringFixed(2),
		})
	}
	return gocsv.Marshal(rows, w)
}

func (s *reportService) SalesReport(ctx context.Context) (*SalesReport, error) {
	sales, err := s.recent(ctx, exportSalesLimit)
	if err != nil {
		return nil, err
	}
	total, err := s.sales.TotalProfit(ctx)
	if err != nil {
		return nil, backendErr("kunne ikke beregne fortjeneste", err)
	}
	return &SalesReport{GeneratedAt: time.Now(), Sales: sales, TotalProfit: total}, nil
}
