package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/infra"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct {
	svc      service.ReportService
	clubName string
}

func NewReportsHandler(svc service.ReportService, clubName string) *ReportsHandler {
	return &ReportsHandler{svc: svc, clubName: clubName}
}

func attachmentName(prefix, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s-%s.%s"`, prefix, time.Now().Format("2006-01-02"), ext)
}

// ExportCSV godoc
// @Summary   Eksporter salg som CSV
// @Tags      admin
// @Produce   text/csv
// @Security  BearerAuth
// @Success   200 {string} string
// @Router    /v1/admin/sales/export.csv [get]
func (h *ReportsHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.ExportSalesCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", attachmentName("salg", "csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ReportPDF godoc
// @Summary   Salgsrapport som PDF
// @Tags      admin
// @Produce   application/pdf
// @Security  BearerAuth
// @Success   200 {file} file
// @Router    /v1/admin/sales/report.pdf [get]
func (h *ReportsHandler) ReportPDF(c *gin.Context) {
	report, err := h.svc.SalesReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	err = infra.WriteSalesReportPDF(&buf, infra.SalesReportData{
		ClubName:    h.clubName,
		GeneratedAt: report.GeneratedAt,
		Sales:       report.Sales,
		TotalProfit: report.TotalProfit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", attachmentName("salgsrapport", "pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
