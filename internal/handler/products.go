package handler

import (
	"net/http"

	"github.com/likbrus/likbrus.github.io/internal/apierror"
	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct {
	catalog service.CatalogService
	sales   service.SaleService
}

func NewProductsHandler(catalog service.CatalogService, sales service.SaleService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog, sales: sales}
}

// List godoc
// @Summary   Alle produkter sortert på navn
// @Tags      products
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} dto.ProductListResponse
// @Failure   503 {object} apierror.APIError
// @Router    /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductListResponse{Data: products, Total: len(products)})
}

// Create godoc
// @Summary      Legg til produkt
// @Description  Priser kan skrives med komma. Manglende eller ugyldig lagerbeholdning blir 0.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreateProductRequest true "Produkt"
// @Success      201  {object} dto.ProductResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Delete godoc
// @Summary      Slett produkt
// @Description  Krever confirm=true. Innkjøp og salg beholdes uten produktreferanse.
// @Tags         products
// @Security     BearerAuth
// @Param        id      path  string true "Produkt-ID"
// @Param        confirm query bool   true "Bekreftelse"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/products/{id} [delete]
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(service.ErrProductNotFound.Error()))
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id, c.Query("confirm") == "true"); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// QuickSale godoc
// @Summary      Selg én enhet
// @Description  Trekker én fra lager og registrerer fortjenesten. Svarer med ny lagerbeholdning og total.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "Produkt-ID"
// @Success      201 {object} dto.SaleResultResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/products/{id}/quick-sale [post]
func (h *ProductsHandler) QuickSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(service.ErrProductNotFound.Error()))
		return
	}
	resp, err := h.sales.RecordQuickSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
