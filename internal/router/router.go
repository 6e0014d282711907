package router

import (
	"time"

	"github.com/likbrus/likbrus.github.io/internal/config"
	"github.com/likbrus/likbrus.github.io/internal/handler"
	"github.com/likbrus/likbrus.github.io/internal/infra"
	"github.com/likbrus/likbrus.github.io/internal/middleware"
	"github.com/likbrus/likbrus.github.io/internal/notify"
	"github.com/likbrus/likbrus.github.io/internal/repository"
	"github.com/likbrus/likbrus.github.io/internal/service"
	"github.com/likbrus/likbrus.github.io/internal/web"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators owned by main. Nil fields get a
// private default so tests can build an engine from cfg, db and rdb alone.
// A default Hub is not attached to a bus, so its streams only see pings.
type Deps struct {
	Notifier     service.ChangeNotifier
	Hub          *notify.Hub
	Mailer       *infra.Mailer
	Mail         service.EmailQueue
	APILimiter   *middleware.Limiter
	LoginLimiter *middleware.Limiter
}

func (d *Deps) defaults(cfg *config.Config, rdb *redis.Client) {
	if d.Notifier == nil {
		d.Notifier = notify.NewPublisher(rdb)
	}
	if d.Hub == nil {
		d.Hub = notify.NewHub()
	}
	if d.Mailer == nil {
		d.Mailer = infra.NewMailer(cfg)
	}
	if d.APILimiter == nil {
		d.APILimiter = middleware.NewLimiter("api", 1000, time.Minute, "For mange forespørsler. Prøv igjen om litt.")
	}
	if d.LoginLimiter == nil {
		d.LoginLimiter = middleware.NewLoginLimiter()
	}
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.SetErrorDetail(!cfg.IsProduction())
	deps.defaults(cfg, rdb)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	sessionStore := repository.NewSessionStore(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	notifier := deps.Notifier
	authSvc := service.NewAuthService(userRepo, adminRepo, sessionStore, notifier, cfg)
	catalogSvc := service.NewCatalogService(productRepo, notifier)
	purchaseSvc := service.NewPurchaseService(productRepo, purchaseRepo, notifier)
	saleSvc := service.NewSaleService(productRepo, saleRepo, notifier)
	reportSvc := service.NewReportService(saleRepo, notifier)
	dashboardSvc := service.NewDashboardService(catalogSvc, reportSvc, notifier)
	resetSvc := service.NewResetService(productRepo, purchaseRepo, saleRepo, notifier, deps.Mail, cfg.NotifyEmail)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc, saleSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	salesH := handler.NewSalesHandler(saleSvc, reportSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	resetH := handler.NewResetHandler(resetSvc)
	reportsH := handler.NewReportsHandler(reportSvc, cfg.ClubName)
	eventsH := handler.NewEventsHandler(deps.Hub, authSvc, notifier)

	store := handler.NewCookieStore(cfg.SessionSecret, cfg.JWTRefreshHours*3600, cfg.IsProduction())
	pagesH := handler.NewPagesHandler(handler.PagesServices{
		Auth:      authSvc,
		Dashboard: dashboardSvc,
		Catalog:   catalogSvc,
		Purchases: purchaseSvc,
		Sales:     saleSvc,
		Reports:   reportSvc,
		Reset:     resetSvc,
	}, store, cfg.ClubName)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.Mailer))

	api := r.Group("/v1", middleware.CORS(cfg.CORSOrigin), deps.APILimiter.Middleware())

	// Auth (public)
	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.LoginLimiter.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// The stream authenticates itself so it can follow the session.
	api.GET("/events", eventsH.Stream)

	// Protected routes
	v1 := api.Group("", middleware.Authenticate(authSvc))
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/session", authH.Session)

		v1.GET("/dashboard", dashboardH.Get)
		v1.GET("/products", productsH.List)
		v1.POST("/products/:id/quick-sale", productsH.QuickSale)
		v1.POST("/sales", salesH.Record)
		v1.GET("/sales/total-profit", salesH.TotalProfit)

		// Admin only
		priv := v1.Group("", middleware.RequirePrivileged())
		{
			priv.POST("/products", productsH.Create)
			priv.DELETE("/products/:id", productsH.Delete)
			priv.POST("/purchases", purchasesH.Record)
			priv.GET("/sales", salesH.List)
			priv.POST("/admin/reset", resetH.Reset)
			priv.GET("/admin/sales/export.csv", reportsH.ExportCSV)
			priv.GET("/admin/sales/report.pdf", reportsH.ReportPDF)
		}
	}

	// Pages
	pagesH.Register(r, deps.LoginLimiter.Middleware())
	r.GET("/events", eventsH.StreamWith(pagesH.AccessToken))

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
