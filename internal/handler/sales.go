package handler

import (
	"net/http"

	"github.com/likbrus/likbrus.github.io/internal/apierror"
	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	sales   service.SaleService
	reports service.ReportService
}

func NewSalesHandler(sales service.SaleService, reports service.ReportService) *SalesHandler {
	return &SalesHandler{sales: sales, reports: reports}
}

// Record godoc
// @Summary   Registrer salg av flere enheter
// @Tags      sales
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body     dto.RecordSaleRequest true "Salg"
// @Success   201  {object} dto.SaleResultResponse
// @Failure   409  {object} apierror.APIError
// @Router    /v1/sales [post]
func (h *SalesHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.RecordSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// TotalProfit godoc
// @Summary   Total fortjeneste
// @Tags      sales
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} dto.TotalProfitResponse
// @Router    /v1/sales/total-profit [get]
func (h *SalesHandler) TotalProfit(c *gin.Context) {
	resp, err := h.reports.TotalProfit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary   Siste salg, nyeste først
// @Tags      sales
// @Produce   json
// @Security  BearerAuth
// @Param     limit query    int false "1-100, andre verdier gir 100"
// @Success   200   {object} dto.SaleListResponse
// @Router    /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Ugyldig limit"))
		return
	}
	limit := service.ClampSalesLimit(filter.Limit)
	sales, err := h.reports.RecentSales(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SaleListResponse{Data: sales, Limit: limit})
}
