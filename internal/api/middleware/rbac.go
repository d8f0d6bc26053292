package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/api/metrics"
	"github.com/freshproduce/marketplace/internal/core/domain"
)

// AdminFinder looks up an active admin by id. The admin UserService satisfies it.
type AdminFinder interface {
	Get(ctx context.Context, id string) (*domain.User, error)
}

// RequireAdmin admits only callers whose token names an admin that still
// exists and has not been soft-deleted. It must run after Auth.
func RequireAdmin(admins AdminFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := checkAdmin(c, admins); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// SelfOrAdmin admits the user named by the path parameter param, and
// otherwise falls back to RequireAdmin.
func SelfOrAdmin(param string, admins AdminFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return domain.ErrUnauthorized
			}
			if claims.Role != domain.RoleAdmin && claims.Subject == c.Param(param) {
				return next(c)
			}
			if err := checkAdmin(c, admins); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func checkAdmin(c echo.Context, admins AdminFinder) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	if claims.Role != domain.RoleAdmin {
		metrics.AccessDeniedTotal.WithLabelValues("forbidden").Inc()
		return domain.ErrForbidden
	}

	if _, err := admins.Get(c.Request().Context(), claims.Subject); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AccessDeniedTotal.WithLabelValues("forbidden").Inc()
			return domain.ErrForbidden
		}
		return err
	}
	return nil
}
