package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/api/middleware"
	"github.com/freshproduce/marketplace/internal/core/domain"
)

// ctxClaims returns the caller's claims. Presence proves the Auth middleware
// ran; handlers on public routes get (nil, false).
func ctxClaims(c echo.Context) (*domain.Claims, bool) {
	return middleware.ClaimsFrom(c)
}
