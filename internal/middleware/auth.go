package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/handlers"
	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/requestdata"
	"github.com/lexiscreen/screening-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, authService: authService}
}

// RequireAccount admits any valid account-level token, with or without a
// selected profile.
func (am *AuthMiddleware) RequireAccount() gin.HandlerFunc {
	return am.require(am.authService.ResolveAccount)
}

// RequireProfile admits only profile-scoped tokens; account-only tokens
// fail ProfileRequired.
func (am *AuthMiddleware) RequireProfile() gin.HandlerFunc {
	return am.require(am.authService.ResolveProfile)
}

// RequireAdmin admits account-level tokens whose account role is ADMIN.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd, err := am.authService.ResolveAccount(c.Request.Context(), extractToken(c))
		if err != nil {
			am.abort(c, err)
			return
		}
		if rd.Role != "ADMIN" {
			handlers.RespondAPIError(c, apierr.Forbidden(apierr.CodeAdminRequired,
				errors.New("admin role required")))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func (am *AuthMiddleware) require(resolve func(ctx context.Context, tokenString string) (*requestdata.RequestData, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd, err := resolve(c.Request.Context(), extractToken(c))
		if err != nil {
			am.abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func (am *AuthMiddleware) abort(c *gin.Context, err error) {
	apiErr := apierr.From(err)
	if apiErr.Status == http.StatusInternalServerError {
		am.log.Error("Identity resolution failed", "error", err)
	}
	handlers.RespondAPIError(c, apiErr)
	c.Abort()
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return c.Query("token")
}
