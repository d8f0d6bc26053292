package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/api/metrics"
	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
)

const (
	claimsKey    = "claims"
	bearerPrefix = "Bearer "
)

// Auth validates the bearer token and injects its claims into the context.
// Only the exact "Bearer <token>" form is accepted.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || strings.TrimSpace(token) == "" || strings.Contains(token, " ") {
				metrics.AccessDeniedTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrUnauthorized
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				metrics.AccessDeniedTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidToken
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}
