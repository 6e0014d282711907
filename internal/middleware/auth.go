package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/likbrus/likbrus.github.io/internal/apierror"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const IdentityKey = "identity"

// BearerToken extracts the access token from the Authorization header.
// EventSource clients cannot set headers, so ?access_token= is accepted too.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("access_token")
}

// Authenticate resolves the caller on every protected route. The session
// must still exist and privilege is looked up fresh, so a revoked session
// or a removed admin takes effect on the next request.
func Authenticate(resolver service.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request.Context(), BearerToken(c))
		switch {
		case err == nil:
			c.Set(IdentityKey, id)
			c.Next()
		case errors.Is(err, service.ErrUnauthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(service.ErrUnauthenticated.Error()))
		case errors.Is(err, service.ErrSessionExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(service.ErrSessionExpired.Error()))
		default:
			log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("identity resolution failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.New(msgInternal))
		}
	}
}

// RequirePrivileged rejects callers that are not in admin_users.
func RequirePrivileged() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil || !id.Privileged {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New(service.ErrForbidden.Error()))
			return
		}
		c.Next()
	}
}

// GetIdentity returns the caller resolved by Authenticate, or nil.
func GetIdentity(c *gin.Context) *service.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*service.Identity)
	return id
}
