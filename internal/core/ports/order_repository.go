package ports

import (
	"context"
	"time"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, page domain.Page) ([]*domain.Order, int64, error)
	Update(ctx context.Context, o *domain.Order) (*domain.Order, error)
	SoftDelete(ctx context.Context, id string, at time.Time) (*domain.Order, error)
	HardDelete(ctx context.Context, id string) error
}

// IdempotencyStore claims Idempotency-Keys so that one key yields one order.
type IdempotencyStore interface {
	// Reserve claims key. When the key is already taken, reserved is false and
	// orderID is the order recorded for it, or "" while the request holding
	// the key is still creating its order.
	Reserve(ctx context.Context, key string) (reserved bool, orderID string, err error)
	// Complete records the order created under a reserved key.
	Complete(ctx context.Context, key, orderID string) error
	// Release drops a reservation whose order was never created.
	Release(ctx context.Context, key string) error
}
