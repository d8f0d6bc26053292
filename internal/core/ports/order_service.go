package ports

import (
	"context"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// OrderInput carries the full order payload. An empty Status defaults to Processing.
type OrderInput struct {
	ProductID   string `json:"productId"   validate:"required"`
	ClientName  string `json:"clientName"  validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Address     string `json:"address"     validate:"required"`
	Status      string `json:"status"      validate:"omitempty,oneof=Processing Delivered Cancelled"`

	// IdempotencyKey is honoured on create only.
	IdempotencyKey string `json:"-"`
}

// OrderDetail is an order together with the product it references.
// Product is nil when the product has since been removed.
type OrderDetail struct {
	Order   *domain.Order
	Product *domain.Product
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	Create(ctx context.Context, input OrderInput) (*domain.Order, error)
	List(ctx context.Context, page domain.Page) ([]*domain.Order, int64, error)
	Get(ctx context.Context, id string) (*OrderDetail, error)
	Update(ctx context.Context, id string, input OrderInput) (*domain.Order, error)
	SoftDelete(ctx context.Context, id string) (*domain.Order, error)
	HardDelete(ctx context.Context, id string) error
}

// OrderNotifier delivers order confirmations. Implementations must not block
// the caller and must not report delivery failures back to it.
type OrderNotifier interface {
	OrderPlaced(order *domain.Order, product *domain.Product)
}
