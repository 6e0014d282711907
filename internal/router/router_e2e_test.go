//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/likbrus/likbrus.github.io/internal/config"
	"github.com/likbrus/likbrus.github.io/internal/infra"
	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/repository"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	admin  string // access tokens
	member string
}

func seedUser(t *testing.T, ctx context.Context, users repository.UserRepository, admins repository.AdminRepository, email string, admin bool) {
	t.Helper()
	hash, err := service.HashPassword("hemmelig")
	require.NoError(t, err)
	require.NoError(t, users.Upsert(ctx, &model.User{Email: email, PasswordHash: hash}))
	if admin {
		u, err := users.FindByEmail(ctx, email)
		require.NoError(t, err)
		require.NoError(t, admins.Grant(ctx, u.ID))
	}
}

func login(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": email, "password": "hemmelig"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("bruslager_test"),
		tcPostgres.WithUsername("bruslager"),
		tcPostgres.WithPassword("bruslager"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		ClubName:           "Brus Lager",
		CORSOrigin:         "*",
		JWTSecret:          "test-secret-key-32-characters-long",
		SessionSecret:      "test-session-secret-32-characters",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	users := repository.NewUserRepository(db)
	admins := repository.NewAdminRepository(db)
	seedUser(t, ctx, users, admins, "leder@klubb.no", true)
	seedUser(t, ctx, users, admins, "medlem@klubb.no", false)

	r, err := New(cfg, db, rdb, Deps{})
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server: srv,
		admin:  login(t, srv, "leder@klubb.no"),
		member: login(t, srv, "medlem@klubb.no"),
	}
}

func createProduct(t *testing.T, env *testEnv, name, buy, sell string, stock any) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{"name": name, "buy_price": buy, "sell_price": sell, "initial_stock": stock}),
		env.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_QuickSaleUntilEmpty(t *testing.T) {
	env := setupTestEnv(t)
	id := createProduct(t, env, "Cola", "10,00", "25", 2)

	for want := 1; want >= 0; want-- {
		resp := do(t, env.server, "POST", "/v1/products/"+id+"/quick-sale", nil, env.member)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var sale struct {
			NewStock    int    `json:"new_stock"`
			TotalProfit string `json:"total_profit"`
		}
		decodeJSON(t, resp, &sale)
		assert.Equal(t, want, sale.NewStock)
	}

	resp := do(t, env.server, "POST", "/v1/products/"+id+"/quick-sale", nil, env.member)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/v1/sales/total-profit", nil, env.member)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var total struct {
		TotalProfit string `json:"total_profit"`
	}
	decodeJSON(t, resp, &total)
	assert.Equal(t, "30", total.TotalProfit)
}

func TestE2E_ConcurrentQuickSalesNeverOversell(t *testing.T) {
	env := setupTestEnv(t)
	const stock, clients = 5, 20
	id := createProduct(t, env, "Cola", "10", "25", stock)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		status = map[int]int{}
	)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest("POST", env.server.URL+"/v1/products/"+id+"/quick-sale", nil)
			if err != nil {
				return
			}
			req.Header.Set("Authorization", "Bearer "+env.member)
			resp, err := env.server.Client().Do(req)
			if err != nil {
				return
			}
			resp.Body.Close()
			mu.Lock()
			status[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, status[http.StatusCreated])
	assert.Equal(t, clients-stock, status[http.StatusConflict])

	resp := do(t, env.server, "GET", "/v1/products", nil, env.member)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var products struct {
		Data []struct {
			ID    string `json:"id"`
			Stock int    `json:"stock"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &products)
	require.Len(t, products.Data, 1)
	assert.Equal(t, 0, products.Data[0].Stock)

	resp = do(t, env.server, "GET", "/v1/sales", nil, env.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sales struct {
		Data []any `json:"data"`
	}
	decodeJSON(t, resp, &sales)
	assert.Len(t, sales.Data, stock)

	resp = do(t, env.server, "GET", "/v1/sales/total-profit", nil, env.member)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var total struct {
		TotalProfit string `json:"total_profit"`
	}
	decodeJSON(t, resp, &total)
	assert.Equal(t, "75", total.TotalProfit)
}

func TestE2E_DeletedProductKeepsHistory(t *testing.T) {
	env := setupTestEnv(t)
	id := createProduct(t, env, "Solo", "10", "25", 3)

	resp := do(t, env.server, "POST", "/v1/products/"+id+"/quick-sale", nil, env.member)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "DELETE", "/v1/products/"+id, nil, env.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "delete needs confirm=true")
	resp.Body.Close()

	resp = do(t, env.server, "DELETE", "/v1/products/"+id+"?confirm=true", nil, env.admin)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/v1/sales", nil, env.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sales struct {
		Data []struct {
			ProductID   *string `json:"product_id"`
			ProductName string  `json:"product_name"`
			Profit      string  `json:"profit"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &sales)
	require.Len(t, sales.Data, 1)
	assert.Nil(t, sales.Data[0].ProductID)
	assert.Equal(t, "Unknown", sales.Data[0].ProductName)
	assert.Equal(t, "15", sales.Data[0].Profit)

	resp = do(t, env.server, "GET", "/v1/sales/total-profit", nil, env.member)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var total struct {
		TotalProfit string `json:"total_profit"`
	}
	decodeJSON(t, resp, &total)
	assert.Equal(t, "15", total.TotalProfit)
}

func TestE2E_PurchaseRestocks(t *testing.T) {
	env := setupTestEnv(t)
	id := createProduct(t, env, "Solo", "8", "20", nil)

	resp := do(t, env.server, "POST", "/v1/purchases",
		jsonBody(t, map[string]any{"product_id": id, "quantity": "24", "price_per_unit": "8,5"}),
		env.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var purchase struct {
		NewStock int `json:"new_stock"`
	}
	decodeJSON(t, resp, &purchase)
	assert.Equal(t, 24, purchase.NewStock)
}

func TestE2E_MemberCannotAdminister(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{"name": "Cola", "buy_price": "10", "sell_price": "20"}), env.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/admin/reset",
		jsonBody(t, map[string]string{"confirmation": "SLETT ALT"}), env.member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/v1/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_ResetClearsEverything(t *testing.T) {
	env := setupTestEnv(t)
	id := createProduct(t, env, "Cola", "10", "25", 5)
	resp := do(t, env.server, "POST", "/v1/products/"+id+"/quick-sale", nil, env.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/admin/reset",
		jsonBody(t, map[string]string{"confirmation": "slett"}), env.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/admin/reset",
		jsonBody(t, map[string]string{"confirmation": " slett alt "}), env.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/v1/dashboard", nil, env.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash struct {
		Products    []any  `json:"products"`
		TotalProfit string `json:"total_profit"`
		IsAdmin     bool   `json:"is_admin"`
	}
	decodeJSON(t, resp, &dash)
	assert.Empty(t, dash.Products)
	assert.Equal(t, "0", dash.TotalProfit)
	assert.True(t, dash.IsAdmin)
}

func TestE2E_LogoutEndsSession(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/auth/logout", nil, env.member)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/v1/auth/session", nil, env.member)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
