package handler

import (
	"net/http"

	"github.com/likbrus/likbrus.github.io/internal/middleware"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Get godoc
// @Summary      Produkter og total fortjeneste
// @Description  Version er endringsstrømmens sekvens lest før innlasting.
// @Description  Deler som ikke kunne hentes sendes tomme og listes i stale.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DashboardResponse
// @Failure      503 {object} apierror.APIError
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	id := middleware.GetIdentity(c)
	resp, err := h.svc.Load(c.Request.Context(), id != nil && id.Privileged)
	if err != nil {
		if resp == nil || len(resp.Stale) == 2 {
			respondError(c, err)
			return
		}
		logFailure(c, err)
	}
	c.JSON(http.StatusOK, resp)
}
