package handler

import (
	"net/http"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
)

type PurchasesHandler struct{ svc service.PurchaseService }

func NewPurchasesHandler(svc service.PurchaseService) *PurchasesHandler {
	return &PurchasesHandler{svc: svc}
}

// Record godoc
// @Summary   Registrer innkjøp
// @Tags      purchases
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body     dto.RecordPurchaseRequest true "Innkjøp"
// @Success   201  {object} dto.PurchaseResponse
// @Failure   404  {object} apierror.APIError
// @Failure   422  {object} apierror.ValidationError
// @Router    /v1/purchases [post]
func (h *PurchasesHandler) Record(c *gin.Context) {
	var req dto.RecordPurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordPurchase(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
