package handler

import (
	"net/http"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/middleware"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
)

const msgResetDone = "Alt er tilbakestilt."

type ResetHandler struct{ svc service.ResetService }

func NewResetHandler(svc service.ResetService) *ResetHandler { return &ResetHandler{svc: svc} }

// Reset godoc
// @Summary      Slett alle produkter, innkjøp og salg
// @Description  Kun admin. confirmation må være "SLETT ALT" (store/små bokstaver og mellomrom ignoreres).
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.ResetRequest true "Bekreftelse"
// @Success      200  {object} dto.ResetResponse
// @Failure      403  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Failure      500  {object} apierror.ResetError
// @Router       /v1/admin/reset [post]
func (h *ResetHandler) Reset(c *gin.Context) {
	var req dto.ResetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ResetAll(c.Request.Context(), middleware.GetIdentity(c), req.Confirmation); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResetResponse{Message: msgResetDone})
}
