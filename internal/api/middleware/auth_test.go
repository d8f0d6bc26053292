package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

type stubVerifier struct {
	claims *domain.Claims
	err    error
	got    string
}

func (v *stubVerifier) VerifyToken(token string) (*domain.Claims, error) {
	v.got = token
	return v.claims, v.err
}

func newAuthContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &stubVerifier{claims: &domain.Claims{Subject: "u1", Role: domain.RoleRetailer, ExpiresAt: time.Now().Add(time.Hour)}}
	c, rec := newAuthContext("Bearer good.token.value")

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		claims, ok := ClaimsFrom(c)
		if !ok {
			t.Fatalf("claims not set")
		}
		if claims.Subject != "u1" || claims.Role != domain.RoleRetailer {
			t.Fatalf("unexpected claims %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if verifier.got != "good.token.value" {
		t.Fatalf("verifier received %q", verifier.got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsMalformedHeaders(t *testing.T) {
	cases := map[string]string{
		"missing header":  "",
		"other scheme":    "Token abc",
		"lowercase":       "bearer abc",
		"no token":        "Bearer ",
		"raw token":       "abc.def.ghi",
		"extra separator": "Bearer abc def",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			verifier := &stubVerifier{claims: &domain.Claims{Subject: "u1"}}
			c, _ := newAuthContext(header)

			err := Auth(verifier)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})(c)

			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if verifier.got != "" {
				t.Fatalf("verifier must not be called")
			}
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: domain.ErrInvalidToken}
	c, _ := newAuthContext("Bearer not-a-token")

	err := Auth(verifier)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestClaimsFrom_Missing(t *testing.T) {
	c, _ := newAuthContext("")
	if _, ok := ClaimsFrom(c); ok {
		t.Fatalf("expected no claims")
	}
}
