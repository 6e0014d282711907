package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Service stubs ────────────────────────────────────────────────────────────

type stubCatalog struct {
	products  []dto.ProductResponse
	created   []dto.CreateProductRequest
	deleted   []uuid.UUID
	createErr error
	deleteErr error
}

func (s *stubCatalog) ListProducts(context.Context) ([]dto.ProductResponse, error) {
	return s.products, nil
}

func (s *stubCatalog) CreateProduct(_ context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, req)
	return &dto.ProductResponse{ID: uuid.NewString(), Name: req.Name.String()}, nil
}

func (s *stubCatalog) DeleteProduct(_ context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return &service.ValidationError{Message: "Bekreft sletting", Fields: map[string]string{"confirm": "required"}}
	}
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubSales struct {
	sold []uuid.UUID
	err  error
}

func (s *stubSales) RecordQuickSale(_ context.Context, id uuid.UUID) (*dto.SaleResultResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sold = append(s.sold, id)
	return &dto.SaleResultResponse{
		ProductID:   id.String(),
		NewStock:    4,
		TotalProfit: decimal.RequireFromString("12.50"),
		Version:     7,
	}, nil
}

func (s *stubSales) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResultResponse, error) {
	return s.RecordQuickSale(ctx, uuid.MustParse(req.ProductID))
}

type stubReports struct {
	sales     []dto.SaleResponse
	lastLimit int
	err       error
}

func (s *stubReports) TotalProfit(context.Context) (*dto.TotalProfitResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.TotalProfitResponse{TotalProfit: decimal.RequireFromString("12.50"), Version: 7}, nil
}

func (s *stubReports) RecentSales(_ context.Context, limit int) ([]dto.SaleResponse, error) {
	s.lastLimit = limit
	return s.sales, s.err
}

func (s *stubReports) ExportSalesCSV(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, "tidspunkt,produkt,antall,fortjeneste\n")
	return err
}

func (s *stubReports) SalesReport(context.Context) (*service.SalesReport, error) {
	return &service.SalesReport{GeneratedAt: time.Now(), Sales: s.sales}, s.err
}

type stubPurchases struct {
	recorded []dto.RecordPurchaseRequest
	err      error
}

func (s *stubPurchases) RecordPurchase(_ context.Context, req dto.RecordPurchaseRequest) (*dto.PurchaseResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.recorded = append(s.recorded, req)
	return &dto.PurchaseResponse{ProductID: req.ProductID.String(), NewStock: 10}, nil
}

// stubDashboard fails the parts named in stale with err.
type stubDashboard struct {
	catalog *stubCatalog
	stale   []string
	err     error
}

func (s *stubDashboard) Load(ctx context.Context, isAdmin bool) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{Products: []dto.ProductResponse{}, Version: 7, IsAdmin: isAdmin, Stale: s.stale}
	failed := map[string]bool{}
	for _, part := range s.stale {
		failed[part] = true
	}
	if !failed[service.PartProducts] {
		resp.Products, _ = s.catalog.ListProducts(ctx)
	}
	if !failed[service.PartTotalProfit] {
		resp.TotalProfit = decimal.RequireFromString("12.50")
	}
	if len(s.stale) > 0 {
		return resp, s.err
	}
	return resp, nil
}

type stubReset struct {
	actor        *service.Identity
	confirmation string
	err          error
}

func (s *stubReset) ResetAll(_ context.Context, actor *service.Identity, confirmation string) error {
	s.actor, s.confirmation = actor, confirmation
	return s.err
}

// stubAuth knows one user per email; the password is always "hemmelig".
type stubAuth struct {
	users     map[string]*service.Identity // email -> identity
	access    map[string]*service.Identity // token -> identity
	refresh   map[string]*service.Identity
	loggedOut []uuid.UUID
	backend   error
}

func newStubAuth() *stubAuth {
	return &stubAuth{
		users: map[string]*service.Identity{
			"medlem@klubb.no": {UserID: uuid.New(), Email: "medlem@klubb.no"},
			"leder@klubb.no":  {UserID: uuid.New(), Email: "leder@klubb.no", Privileged: true},
		},
		access:  map[string]*service.Identity{},
		refresh: map[string]*service.Identity{},
	}
}

func (s *stubAuth) issue(id *service.Identity) *dto.LoginResponse {
	withSession := *id
	withSession.SessionID = uuid.New()
	acc, ref := "acc-"+uuid.NewString(), "ref-"+uuid.NewString()
	s.access[acc] = &withSession
	s.refresh[ref] = &withSession
	return &dto.LoginResponse{AccessToken: acc, RefreshToken: ref, TokenType: "Bearer"}
}

func (s *stubAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.backend != nil {
		return nil, s.backend
	}
	id, ok := s.users[req.Email]
	if !ok || req.Password != "hemmelig" {
		return nil, service.ErrInvalidCredentials
	}
	return s.issue(id), nil
}

func (s *stubAuth) Refresh(_ context.Context, token string) (*dto.LoginResponse, error) {
	id, ok := s.refresh[token]
	if !ok {
		return nil, service.ErrSessionExpired
	}
	delete(s.refresh, token)
	return s.issue(id), nil
}

func (s *stubAuth) Logout(_ context.Context, sid uuid.UUID) error {
	s.loggedOut = append(s.loggedOut, sid)
	for tok, id := range s.access {
		if id.SessionID == sid {
			delete(s.access, tok)
		}
	}
	return nil
}

func (s *stubAuth) Resolve(_ context.Context, token string) (*service.Identity, error) {
	if s.backend != nil {
		return nil, s.backend
	}
	if token == "" {
		return nil, service.ErrUnauthenticated
	}
	id, ok := s.access[token]
	if !ok {
		return nil, service.ErrSessionExpired
	}
	return id, nil
}

// expireAccess drops every access token, as if they all timed out.
func (s *stubAuth) expireAccess() { s.access = map[string]*service.Identity{} }

// ── Helpers ──────────────────────────────────────────────────────────────────

func serve(r http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonHeader() http.Header {
	return http.Header{"Content-Type": {"application/json"}}
}
