package service_test

import (
	"context"
	"testing"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickSale_DecrementsStockAndRecordsProfit(t *testing.T) {
	products := newStubProductRepo()
	p := products.add("Cola", 10, 20, 5)
	sales := &stubSaleRepo{}
	notifier := &stubNotifier{}
	svc := service.NewSaleService(products, sales, notifier)

	resp, err := svc.RecordQuickSale(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.NewStock)
	assert.Equal(t, "10", resp.Sale.Profit.String())
	assert.Equal(t, "10", resp.TotalProfit.String())
	assert.Equal(t, "Cola", resp.Sale.ProductName)
	assert.Equal(t, int64(2), resp.Version)
	assert.Equal(t, 4, products.products[p.ID].Stock)
	assert.Len(t, sales.sales, 1)
}

func TestQuickSale_OutOfStock(t *testing.T) {
	products := newStubProductRepo()
	p := products.add("Cola", 10, 20, 0)
	sales := &stubSaleRepo{}
	notifier := &stubNotifier{}
	svc := service.NewSaleService(products, sales, notifier)

	_, err := svc.RecordQuickSale(context.Background(), p.ID)
	assert.ErrorIs(t, err, service.ErrOutOfStock)
	assert.Equal(t, 0, products.products[p.ID].Stock)
	assert.Empty(t, sales.sales)
	assert.Empty(t, notifier.tables())
}

func TestQuickSale_UnknownProduct(t *testing.T) {
	svc := service.NewSaleService(newStubProductRepo(), &stubSaleRepo{}, nil)

	_, err := svc.RecordQuickSale(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestQuickSale_NegativeMarginAllowed(t *testing.T) {
	products := newStubProductRepo()
	p := products.add("Vann", 12, 10, 3)
	svc := service.NewSaleService(products, &stubSaleRepo{}, nil)

	resp, err := svc.RecordQuickSale(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "-2", resp.Sale.Profit.String())
}

func TestRecordSale_Quantity(t *testing.T) {
	products := newStubProductRepo()
	p := products.add("Cola", 10, 20, 5)
	sales := &stubSaleRepo{}
	svc := service.NewSaleService(products, sales, nil)

	resp, err := svc.RecordSale(context.Background(), dto.RecordSaleRequest{ProductID: p.ID.String(), Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.NewStock)
	assert.Equal(t, "30", resp.Sale.Profit.String())

	_, err = svc.RecordSale(context.Background(), dto.RecordSaleRequest{ProductID: p.ID.String(), Quantity: 3})
	assert.ErrorIs(t, err, service.ErrOutOfStock)
	assert.Equal(t, 2, products.products[p.ID].Stock)
}

// Sequential quick sales never drive stock below zero; exactly the
// available units are sold.
func TestQuickSale_NeverOversells(t *testing.T) {
	products := newStubProductRepo()
	p := products.add("Cola", 10, 20, 3)
	sales := &stubSaleRepo{}
	svc := service.NewSaleService(products, sales, nil)

	sold, rejected := 0, 0
	for i := 0; i < 5; i++ {
		if _, err := svc.RecordQuickSale(context.Background(), p.ID); err == nil {
			sold++
		} else {
			assert.ErrorIs(t, err, service.ErrOutOfStock)
			rejected++
		}
	}
	assert.Equal(t, 3, sold)
	assert.Equal(t, 2, rejected)
	assert.Equal(t, 0, products.products[p.ID].Stock)
	assert.Equal(t, "30", mustTotal(t, sales))
}

func mustTotal(t *testing.T, sales *stubSaleRepo) string {
	t.Helper()
	total, err := sales.TotalProfit(context.Background())
	require.NoError(t, err)
	return total.String()
}
