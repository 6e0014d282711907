package handler

import (
	"net/http"

	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/middleware"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary  Logg inn med e-post og passord
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body     dto.LoginRequest true "Innlogging"
// @Success  200  {object} dto.LoginResponse
// @Failure  401  {object} apierror.APIError
// @Router   /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary  Forny tilgangstoken
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body     dto.RefreshRequest true "Refresh token"
// @Success  200  {object} dto.LoginResponse
// @Failure  401  {object} apierror.APIError
// @Router   /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary   Logg ut og tilbakekall økten
// @Tags      auth
// @Security  BearerAuth
// @Success   204
// @Router    /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if err := h.svc.Logout(c.Request.Context(), id.SessionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Session godoc
// @Summary   Gjeldende økt og admin-status
// @Tags      auth
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} dto.SessionResponse
// @Router    /v1/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	id := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, dto.SessionResponse{
		State: service.StateAuthenticated.String(),
		User: dto.UserResponse{
			ID:      id.UserID.String(),
			Email:   id.Email,
			IsAdmin: id.Privileged,
		},
	})
}
