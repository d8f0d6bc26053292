package domain

import "time"

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// Order is a client's request for a single product.
type Order struct {
	ID          string      `json:"id" bson:"_id"`
	ProductID   string      `json:"productId" bson:"product_id"`
	ClientName  string      `json:"clientName" bson:"client_name"`
	PhoneNumber string      `json:"phoneNumber" bson:"phone_number"`
	Email       string      `json:"email" bson:"email"`
	Address     string      `json:"address" bson:"address"`
	Status      OrderStatus `json:"status" bson:"status"`
	CreatedAt   time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updated_at"`
	DeletedAt   *time.Time  `json:"deletedAt,omitempty" bson:"deleted_at"`
}
