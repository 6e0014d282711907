package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory ProductRepository stub ─────────────────────────────────────────

type stubProductRepo struct {
	products  map[uuid.UUID]*model.Product
	failList  error
	failStage error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(name string, buy, sell float64, stock int) *model.Product {
	p := &model.Product{
		ID:        uuid.New(),
		Name:      name,
		BuyPrice:  decimal.NewFromFloat(buy),
		SellPrice: decimal.NewFromFloat(sell),
		Stock:     stock,
		CreatedAt: time.Now(),
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(_ context.Context) ([]model.Product, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context, threshold int) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Stock <= threshold {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) IncrementStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (r *stubProductRepo) DeleteAllTx(_ *gorm.DB) (int64, error) {
	if r.failStage != nil {
		return 0, r.failStage
	}
	n := int64(len(r.products))
	r.products = make(map[uuid.UUID]*model.Product)
	return n, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── PurchaseRepository stub ──────────────────────────────────────────────────

type stubPurchaseRepo struct {
	purchases []model.Purchase
	failStage error
}

func (r *stubPurchaseRepo) CreateTx(_ *gorm.DB, p *model.Purchase) error {
	r.purchases = append(r.purchases, *p)
	return nil
}

func (r *stubPurchaseRepo) DeleteAllTx(_ *gorm.DB) (int64, error) {
	if r.failStage != nil {
		return 0, r.failStage
	}
	n := int64(len(r.purchases))
	r.purchases = nil
	return n, nil
}

// ── SaleRepository stub ──────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales     []model.Sale
	names     func(id uuid.UUID) *string
	failStage error
	failTotal error
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	r.sales = append(r.sales, *s)
	return nil
}

func (r *stubSaleRepo) TotalProfit(_ context.Context) (decimal.Decimal, error) {
	if r.failTotal != nil {
		return decimal.Zero, r.failTotal
	}
	return r.TotalProfitTx(nil)
}

func (r *stubSaleRepo) TotalProfitTx(_ *gorm.DB) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, s := range r.sales {
		total = total.Add(s.Profit)
	}
	return total, nil
}

func (r *stubSaleRepo) Recent(_ context.Context, limit int) ([]model.SaleWithProduct, error) {
	sorted := append([]model.Sale(nil), r.sales...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]model.SaleWithProduct, 0, len(sorted))
	for _, s := range sorted {
		row := model.SaleWithProduct{Sale: s}
		if s.ProductID != nil && r.names != nil {
			row.ProductName = r.names(*s.ProductID)
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *stubSaleRepo) DeleteAllTx(_ *gorm.DB) (int64, error) {
	if r.failStage != nil {
		return 0, r.failStage
	}
	n := int64(len(r.sales))
	r.sales = nil
	return n, nil
}

// namesFrom resolves product names the way the LEFT JOIN does.
func namesFrom(products *stubProductRepo) func(uuid.UUID) *string {
	return func(id uuid.UUID) *string {
		if p, ok := products.products[id]; ok {
			name := p.Name
			return &name
		}
		return nil
	}
}

// ── Auth stubs ───────────────────────────────────────────────────────────────

type stubUserRepo struct{ users map[uuid.UUID]*model.User }

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) Upsert(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

type stubAdminRepo struct {
	admins map[uuid.UUID]bool
	fail   error
}

func newStubAdminRepo() *stubAdminRepo { return &stubAdminRepo{admins: make(map[uuid.UUID]bool)} }

func (r *stubAdminRepo) IsAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	if r.fail != nil {
		return false, r.fail
	}
	return r.admins[id], nil
}

func (r *stubAdminRepo) Grant(_ context.Context, id uuid.UUID) error {
	r.admins[id] = true
	return nil
}

func (r *stubAdminRepo) Revoke(_ context.Context, id uuid.UUID) error {
	delete(r.admins, id)
	return nil
}

type stubSessionStore struct {
	sessions map[uuid.UUID]*repository.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[uuid.UUID]*repository.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, sess *repository.Session, _ time.Duration) error {
	s.sessions[sess.ID] = sess
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id uuid.UUID) (*repository.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubSessionStore) Touch(_ context.Context, id uuid.UUID, _ time.Duration) error {
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.sessions, id)
	return nil
}

// ── Change feed and mail stubs ───────────────────────────────────────────────

type stubNotifier struct {
	mu     sync.Mutex
	seq    int64
	events []model.ChangeEvent
	fail   error
}

func (n *stubNotifier) Publish(_ context.Context, ev model.ChangeEvent) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return 0, n.fail
	}
	n.seq++
	ev.Seq = n.seq
	n.events = append(n.events, ev)
	return n.seq, nil
}

func (n *stubNotifier) Version(_ context.Context) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq, nil
}

func (n *stubNotifier) tables() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Table+":"+ev.Op)
	}
	return out
}

type stubEmailQueue struct{ payloads []map[string]interface{} }

func (q *stubEmailQueue) EnqueueEmail(_ context.Context, payload interface{}) error {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return errors.New("unexpected payload")
	}
	q.payloads = append(q.payloads, m)
	return nil
}
