package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
	"github.com/freshproduce/marketplace/internal/pkg/validation"
)

var fixedTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type stubUserService struct {
	role     domain.Role
	createFn func(ctx context.Context, input ports.UserInput) (*domain.User, error)
	loginFn  func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	listFn   func(ctx context.Context, page domain.Page) ([]*domain.User, int64, error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	updateFn func(ctx context.Context, id string, input ports.UserInput) (*domain.User, error)
	softFn   func(ctx context.Context, id string) (*domain.User, error)
	hardFn   func(ctx context.Context, id string) error
}

func (s *stubUserService) Role() domain.Role { return s.role }

func (s *stubUserService) Create(ctx context.Context, input ports.UserInput) (*domain.User, error) {
	return s.createFn(ctx, input)
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubUserService) List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error) {
	return s.listFn(ctx, page)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Update(ctx context.Context, id string, input ports.UserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubUserService) SoftDelete(ctx context.Context, id string) (*domain.User, error) {
	return s.softFn(ctx, id)
}

func (s *stubUserService) HardDelete(ctx context.Context, id string) error {
	return s.hardFn(ctx, id)
}

type stubProductService struct {
	createFn     func(ctx context.Context, input ports.ProductInput) (*domain.Product, error)
	listFn       func(ctx context.Context, page domain.Page) ([]*domain.Product, int64, error)
	byCategoryFn func(ctx context.Context, category string, page domain.Page) ([]*domain.Product, int64, error)
	getFn        func(ctx context.Context, id string) (*domain.Product, error)
	updateFn     func(ctx context.Context, id string, input ports.ProductInput) (*domain.Product, error)
	softFn       func(ctx context.Context, id string) (*domain.Product, error)
	hardFn       func(ctx context.Context, id string) error
}

func (s *stubProductService) Create(ctx context.Context, input ports.ProductInput) (*domain.Product, error) {
	return s.createFn(ctx, input)
}

func (s *stubProductService) List(ctx context.Context, page domain.Page) ([]*domain.Product, int64, error) {
	return s.listFn(ctx, page)
}

func (s *stubProductService) ListByCategory(ctx context.Context, category string, page domain.Page) ([]*domain.Product, int64, error) {
	return s.byCategoryFn(ctx, category, page)
}

func (s *stubProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubProductService) Update(ctx context.Context, id string, input ports.ProductInput) (*domain.Product, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubProductService) SoftDelete(ctx context.Context, id string) (*domain.Product, error) {
	return s.softFn(ctx, id)
}

func (s *stubProductService) HardDelete(ctx context.Context, id string) error {
	return s.hardFn(ctx, id)
}

type stubOrderService struct {
	createFn func(ctx context.Context, input ports.OrderInput) (*domain.Order, error)
	listFn   func(ctx context.Context, page domain.Page) ([]*domain.Order, int64, error)
	getFn    func(ctx context.Context, id string) (*ports.OrderDetail, error)
	updateFn func(ctx context.Context, id string, input ports.OrderInput) (*domain.Order, error)
	softFn   func(ctx context.Context, id string) (*domain.Order, error)
	hardFn   func(ctx context.Context, id string) error
}

func (s *stubOrderService) Create(ctx context.Context, input ports.OrderInput) (*domain.Order, error) {
	return s.createFn(ctx, input)
}

func (s *stubOrderService) List(ctx context.Context, page domain.Page) ([]*domain.Order, int64, error) {
	return s.listFn(ctx, page)
}

func (s *stubOrderService) Get(ctx context.Context, id string) (*ports.OrderDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubOrderService) Update(ctx context.Context, id string, input ports.OrderInput) (*domain.Order, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubOrderService) SoftDelete(ctx context.Context, id string) (*domain.Order, error) {
	return s.softFn(ctx, id)
}

func (s *stubOrderService) HardDelete(ctx context.Context, id string) error {
	return s.hardFn(ctx, id)
}

// memStore is a FileStore that keeps uploads in memory.
type memStore struct {
	saved map[string][]byte
	types map[string]string
}

func newMemStore() *memStore {
	return &memStore{saved: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Save(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.saved[key] = b
	m.types[key] = contentType
	return "/uploads/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.saved, key)
	return nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator(validation.New())
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type formFile struct {
	field, name string
	content     []byte
}

func multipartContext(t *testing.T, e *echo.Echo, method, target string, fields map[string]string, file *formFile) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(file.field, file.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(file.content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// decode reads an envelope and returns it with its data re-encoded as raw JSON.
func decode(t *testing.T, rec *httptest.ResponseRecorder) (map[string]any, json.RawMessage) {
	t.Helper()

	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &raw)
	return envelope, raw.Data
}

// pngBytes is the smallest byte sequence mimetype recognises as image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func boolPtr(b bool) *bool { return &b }

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
}
