package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

type stubAdmins struct {
	active map[string]bool
	err    error
	calls  int
}

func (s *stubAdmins) Get(_ context.Context, id string) (*domain.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if !s.active[id] {
		return nil, domain.NotFound("admin")
	}
	return &domain.User{ID: id, Role: domain.RoleAdmin}, nil
}

func newGuardContext(claims *domain.Claims, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(claimsKey, claims)
	}
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	return c, rec
}

func okHandler(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(http.StatusOK)
	}
}

func TestRequireAdmin_Allows(t *testing.T) {
	admins := &stubAdmins{active: map[string]bool{"a1": true}}
	c, rec := newGuardContext(&domain.Claims{Subject: "a1", Role: domain.RoleAdmin}, "")

	called := false
	if err := RequireAdmin(admins)(okHandler(&called))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAdmin_Forbids(t *testing.T) {
	cases := []struct {
		name   string
		claims *domain.Claims
		admins *stubAdmins
		want   error
	}{
		{"retailer token", &domain.Claims{Subject: "r1", Role: domain.RoleRetailer}, &stubAdmins{}, domain.ErrForbidden},
		{"deleted admin", &domain.Claims{Subject: "a1", Role: domain.RoleAdmin}, &stubAdmins{active: map[string]bool{}}, domain.ErrForbidden},
		{"no claims", nil, &stubAdmins{}, domain.ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newGuardContext(tc.claims, "")
			called := false

			err := RequireAdmin(tc.admins)(okHandler(&called))(c)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if called {
				t.Fatalf("should not reach next handler")
			}
		})
	}
}

func TestRequireAdmin_StoreFailureIsNotForbidden(t *testing.T) {
	admins := &stubAdmins{err: domain.Internal("get admin", errors.New("db down"))}
	c, _ := newGuardContext(&domain.Claims{Subject: "a1", Role: domain.RoleAdmin}, "")

	called := false
	err := RequireAdmin(admins)(okHandler(&called))(c)
	if domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestSelfOrAdmin(t *testing.T) {
	admins := &stubAdmins{active: map[string]bool{"a1": true}}

	cases := []struct {
		name    string
		claims  *domain.Claims
		paramID string
		allowed bool
	}{
		{"retailer reading itself", &domain.Claims{Subject: "r1", Role: domain.RoleRetailer}, "r1", true},
		{"retailer reading another", &domain.Claims{Subject: "r1", Role: domain.RoleRetailer}, "r2", false},
		{"active admin", &domain.Claims{Subject: "a1", Role: domain.RoleAdmin}, "r2", true},
		{"deleted admin", &domain.Claims{Subject: "a9", Role: domain.RoleAdmin}, "r2", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newGuardContext(tc.claims, tc.paramID)
			called := false

			err := SelfOrAdmin("id", admins)(okHandler(&called))(c)
			if called != tc.allowed {
				t.Fatalf("allowed = %v, want %v (err %v)", called, tc.allowed, err)
			}
			if !tc.allowed && !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}

func TestSelfOrAdmin_SelfSkipsLookup(t *testing.T) {
	admins := &stubAdmins{}
	c, _ := newGuardContext(&domain.Claims{Subject: "r1", Role: domain.RoleRetailer}, "r1")

	called := false
	if err := SelfOrAdmin("id", admins)(okHandler(&called))(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admins.calls != 0 {
		t.Fatalf("self access must not hit the admin store")
	}
}
