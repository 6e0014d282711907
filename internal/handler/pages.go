package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/middleware"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	sessionName = "bruslager"
	keyAccess   = "access_token"
	keyRefresh  = "refresh_token"
	flashOK     = "ok"
	flashErr    = "err"

	msgLoading       = "Laster inn..."
	msgProductAdded  = "Produkt lagt til!"
	msgPurchaseAdded = "Innkjøp registrert!"
	msgProductGone   = "Produkt slettet."
	msgNoAccess      = "Ingen tilgang"
	msgAdminOnly     = "Denne siden er kun for admin."
)

// pageData is the model every template receives.
type pageData struct {
	Title       string
	ClubName    string
	Flash       string
	Error       string
	Detail      string
	Email       string
	Live        string
	Identity    *service.Identity
	Products    []dto.ProductResponse
	Sales       []dto.SaleResponse
	TotalProfit decimal.Decimal
	Version     int64
}

// PagesServices groups what the pages need.
type PagesServices struct {
	Auth      service.AuthService
	Dashboard service.DashboardService
	Catalog   service.CatalogService
	Purchases service.PurchaseService
	Sales     service.SaleService
	Reports   service.ReportService
	Reset     service.ResetService
}

// PagesHandler serves the HTML app. The session cookie carries the same
// tokens the JSON API uses; every request goes through the auth gate.
type PagesHandler struct {
	svc      PagesServices
	store    sessions.Store
	reports  *ReportsHandler
	clubName string
}

func NewPagesHandler(svc PagesServices, store sessions.Store, clubName string) *PagesHandler {
	return &PagesHandler{
		svc:      svc,
		store:    store,
		reports:  NewReportsHandler(svc.Reports, clubName),
		clubName: clubName,
	}
}

// NewCookieStore builds the signed page-session store.
func NewCookieStore(secret string, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (h *PagesHandler) session(c *gin.Context) *sessions.Session {
	// A cookie that fails to decode yields a fresh session, which is what we want.
	sess, _ := h.store.Get(c.Request, sessionName)
	return sess
}

// AccessToken reads the access token from the page session.
func (h *PagesHandler) AccessToken(c *gin.Context) string {
	tok, _ := h.session(c).Values[keyAccess].(string)
	return tok
}

func (h *PagesHandler) save(c *gin.Context, sess *sessions.Session) {
	if err := sess.Save(c.Request, c.Writer); err != nil {
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("page session save failed")
	}
}

func (h *PagesHandler) flash(c *gin.Context, sess *sessions.Session, kind, msg string) {
	sess.AddFlash(msg, kind)
	h.save(c, sess)
}

func (h *PagesHandler) data(c *gin.Context, sess *sessions.Session, title string, id *service.Identity) pageData {
	d := pageData{Title: title, ClubName: h.clubName, Identity: id}
	if f := sess.Flashes(flashOK); len(f) > 0 {
		d.Flash, _ = f[len(f)-1].(string)
	}
	if f := sess.Flashes(flashErr); len(f) > 0 {
		d.Error, _ = f[len(f)-1].(string)
	}
	h.save(c, sess)
	return d
}

func (h *PagesHandler) fail(c *gin.Context, status int, title string, err error) {
	c.HTML(status, "error.html", pageData{Title: title, ClubName: h.clubName, Detail: userMessage(err)})
}

// resolve settles the gate for this request, renewing an expired access
// token from the refresh token when possible.
func (h *PagesHandler) resolve(ctx context.Context, c *gin.Context, sess *sessions.Session) (*service.Gate, error) {
	gate := service.NewGate(h.svc.Auth)
	access, _ := sess.Values[keyAccess].(string)
	state, err := gate.Resolve(ctx, access)
	if err != nil || state != service.StateAnonymous {
		return gate, err
	}

	refresh, _ := sess.Values[keyRefresh].(string)
	if refresh == "" {
		return gate, nil
	}
	resp, err := h.svc.Auth.Refresh(ctx, refresh)
	if err != nil {
		delete(sess.Values, keyAccess)
		delete(sess.Values, keyRefresh)
		h.save(c, sess)
		return gate, nil
	}
	sess.Values[keyAccess] = resp.AccessToken
	sess.Values[keyRefresh] = resp.RefreshToken
	h.save(c, sess)
	_, err = gate.Resolve(ctx, resp.AccessToken)
	return gate, err
}

type pageFunc func(c *gin.Context, sess *sessions.Session, id *service.Identity)

// guard runs fn only when the gate lets the caller see page.
func (h *PagesHandler) guard(page string, fn pageFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := h.session(c)
		gate, err := h.resolve(c.Request.Context(), c, sess)
		if err != nil {
			h.fail(c, http.StatusServiceUnavailable, msgLoading, err)
			return
		}
		if to := gate.Redirect(page); to != "" {
			if to == service.PageDashboard {
				h.flash(c, sess, flashErr, msgNoAccess+". "+msgAdminOnly)
			}
			c.Redirect(http.StatusSeeOther, to)
			return
		}
		fn(c, sess, gate.Identity())
	}
}

// ── Routes ───────────────────────────────────────────────────────────────────

// Register mounts the pages. Handlers in login run before the sign-in post.
func (h *PagesHandler) Register(r gin.IRoutes, login ...gin.HandlerFunc) {
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, service.PageDashboard) })
	r.GET("/login", h.guard(service.PageLogin, h.loginPage))
	r.POST("/login", append(login, h.login)...)
	r.POST("/logout", h.guard(service.PageDashboard, h.logout))

	r.GET("/dashboard", h.guard(service.PageDashboard, h.dashboard))
	r.POST("/dashboard/sell/:id", h.guard(service.PageDashboard, h.sell))

	r.GET("/admin", h.guard(service.PageAdmin, h.admin))
	r.POST("/admin/products", h.guard(service.PageAdmin, h.createProduct))
	r.POST("/admin/purchases", h.guard(service.PageAdmin, h.recordPurchase))
	r.POST("/admin/products/:id/delete", h.guard(service.PageAdmin, h.deleteProduct))
	r.GET("/admin/sales.csv", h.guard(service.PageAdmin, func(c *gin.Context, _ *sessions.Session, _ *service.Identity) {
		h.reports.ExportCSV(c)
	}))
	r.GET("/admin/report.pdf", h.guard(service.PageAdmin, func(c *gin.Context, _ *sessions.Session, _ *service.Identity) {
		h.reports.ReportPDF(c)
	}))

	r.GET("/reset", h.guard(service.PageReset, h.resetPage))
	r.POST("/reset", h.guard(service.PageReset, h.reset))
}

func (h *PagesHandler) loginPage(c *gin.Context, sess *sessions.Session, id *service.Identity) {
	if id != nil {
		c.Redirect(http.StatusSeeOther, service.PageDashboard)
		return
	}
	c.HTML(http.StatusOK, "login.html", h.data(c, sess, "Logg inn", nil))
}

func (h *PagesHandler) login(c *gin.Context) {
	sess := h.session(c)
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil || validationFields(&req) != nil {
		d := h.data(c, sess, "Logg inn", nil)
		d.Error, d.Email = "Vennligst fyll ut alle felt", req.Email
		c.HTML(http.StatusUnprocessableEntity, "login.html", d)
		return
	}
	resp, err := h.svc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		d := h.data(c, sess, "Logg inn", nil)
		d.Error, d.Email = userMessage(err), req.Email
		status := http.StatusUnauthorized
		if !errors.Is(err, service.ErrInvalidCredentials) {
			status = http.StatusServiceUnavailable
		}
		c.HTML(status, "login.html", d)
		return
	}
	sess.Values[keyAccess] = resp.AccessToken
	sess.Values[keyRefresh] = resp.RefreshToken
	h.save(c, sess)
	c.Redirect(http.StatusSeeOther, service.PageDashboard)
}

func (h *PagesHandler) logout(c *gin.Context, sess *sessions.Session, id *service.Identity) {
	if err := h.svc.Auth.Logout(c.Request.Context(), id.SessionID); err != nil {
		log.Warn().Err(err).Msg("logout: session revoke failed")
	}
	delete(sess.Values, keyAccess)
	delete(sess.Values, keyRefresh)
	h.save(c, sess)
	c.Redirect(http.StatusSeeOther, service.PageLogin)
}

func (h *PagesHandler) dashboard(c *gin.Context, sess *sessions.Session, id *service.Identity) {
	snap, err := h.svc.Dashboard.Load(c.Request.Context(), id.Privileged)
	d := h.data(c, sess, "Lager", id)
	d.Products, d.TotalProfit, d.Version = snap.Products, snap.TotalProfit, snap.Version
	if err != nil {
		logFailure(c, err)
		d.Error = userMessage(err)
	}
	d.Live = "products,sales"
	c.HTML(http.StatusOK, "dashboard.html", d)
}

func (h *PagesHandler) sell(c *gin.Context, sess *sessions.Session, _ *service.Identity) {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.flash(c, sess, flashErr, service.ErrProductNotFound.Error())
		c.Redirect(http.StatusSeeOther, service.PageDashboard)
		return
	}
	if _, err := h.svc.Sales.RecordQuickSale(c.Request.Context(), pid); err != nil {
		h.flash(c, sess, flashErr, userMessage(err))
	}
	c.Redirect(http.StatusSeeOther, service.PageDashboard)
}

func (h *PagesHandler) admin(c *gin.Context, sess *sessions.Session, id *service.Identity) {
	ctx := c.Request.Context()
	snap, err := h.svc.Dashboard.Load(ctx, true)
	d := h.data(c, sess, "Admin", id)
	d.Products, d.TotalProfit, d.Version = snap.Products, snap.TotalProfit, snap.Version
	if err != nil {
		logFailure(c, err)
		d.Error = userMessage(err)
	}
	sales, err := h.svc.Reports.RecentSales(ctx, service.DefaultSalesLimit)
	if err != nil {
		logFailure(c, err)
		d.Error = userMessage(err)
	}
	d.Sales = sales
	d.Live = "products,sales,purchases"
	c.HTML(http.StatusOK, "admin.html", d)
}

func (h *PagesHandler) createProduct(c *gin.Context, sess *sessions.Session, _ *service.Identity) {
	var req dto.CreateProductRequest
	_ = c.ShouldBind(&req)
	if _, err := h.svc.Catalog.CreateProduct(c.Request.Context(), req); err != nil {
		h.flash(c, sess, flashErr, userMessage(err))
	} else {
		h.flash(c, sess, flashOK, msgProductAdded)
	}
	c.Redirect(http.StatusSeeOther, service.PageAdmin)
}

func (h *PagesHandler) recordPurchase(c *gin.Context, sess *sessions.Session, _ *service.Identity) {
	var req dto.RecordPurchaseRequest
	_ = c.ShouldBind(&req)
	if _, err := h.svc.Purchases.RecordPurchase(c.Request.Context(), req); err != nil {
		h.flash(c, sess, flashErr, userMessage(err))
	} else {
		h.flash(c, sess, flashOK, msgPurchaseAdded)
	}
	c.Redirect(http.StatusSeeOther, service.PageAdmin)
}

func (h *PagesHandler) deleteProduct(c *gin.Context, sess *sessions.Session, _ *service.Identity) {
	pid, err := uuid.Parse(c.Param("id"))
	if err == nil {
		err = h.svc.Catalog.DeleteProduct(c.Request.Context(), pid, c.PostForm("confirm") == "true")
	} else {
		err = service.ErrProductNotFound
	}
	if err != nil {
		h.flash(c, sess, flashErr, userMessage(err))
	} else {
		h.flash(c, sess, flashOK, msgProductGone)
	}
	c.Redirect(http.StatusSeeOther, service.PageAdmin)
}

func (h *PagesHandler) resetPage(c *gin.Context, sess *sessions.Session, id *service.Identity) {
	c.HTML(http.StatusOK, "reset.html", h.data(c, sess, "Tilbakestill alt", id))
}

func (h *PagesHandler) reset(c *gin.Context, sess *sessions.Session, id *service.Identity) {
	if err := h.svc.Reset.ResetAll(c.Request.Context(), id, c.PostForm("confirmation")); err != nil {
		h.flash(c, sess, flashErr, userMessage(err))
	} else {
		h.flash(c, sess, flashOK, msgResetDone)
	}
	c.Redirect(http.StatusSeeOther, service.PageReset)
}
