package ports

import (
	"context"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// ProductInput carries the full product payload.
type ProductInput struct {
	Name         string   `json:"name"         validate:"required"`
	Price        *float64 `json:"price"        validate:"required,gte=0"`
	Availability *bool    `json:"availability" validate:"required"`
	Description  string   `json:"description"  validate:"required"`
	Image        string   `json:"image"        validate:"required"`
	RetailerID   string   `json:"retailerId"   validate:"required"`
	Category     string   `json:"category"     validate:"required,oneof=Poultry Dairy Cereals Vegetables Fruits"`
}

// ProductService defines use-case operations for products.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	List(ctx context.Context, page domain.Page) ([]*domain.Product, int64, error)
	ListByCategory(ctx context.Context, category string, page domain.Page) ([]*domain.Product, int64, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error)
	SoftDelete(ctx context.Context, id string) (*domain.Product, error)
	HardDelete(ctx context.Context, id string) error
}
