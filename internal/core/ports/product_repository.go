package ports

import (
	"context"
	"time"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// ProductFilter narrows a product listing. An empty Category lists every category.
type ProductFilter struct {
	Category domain.Category
	Page     domain.Page
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (*domain.Product, error)
	HardDelete(ctx context.Context, id string) error
}
