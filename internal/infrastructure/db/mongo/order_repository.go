package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

const collectionOrders = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.Order
	if err := r.col.FindOne(ctx, active(bson.M{"_id": id})).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context, page domain.Page) ([]*domain.Order, int64, error) {
	orders, total, err := findPage[domain.Order](ctx, r.col, active(bson.M{}), page)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	update := bson.M{"$set": bson.M{
		"product_id":   o.ProductID,
		"client_name":  o.ClientName,
		"phone_number": o.PhoneNumber,
		"email":        o.Email,
		"address":      o.Address,
		"status":       string(o.Status),
		"updated_at":   o.UpdatedAt.UTC(),
	}}
	return r.findOneAndUpdate(ctx, active(bson.M{"_id": o.ID}), update)
}

func (r *OrderRepository) SoftDelete(ctx context.Context, id string, at time.Time) (*domain.Order, error) {
	update := bson.M{"$set": bson.M{"deleted_at": at.UTC(), "updated_at": at.UTC()}}
	return r.findOneAndUpdate(ctx, active(bson.M{"_id": id}), update)
}

func (r *OrderRepository) HardDelete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.col, bson.M{"_id": id})
}

func (r *OrderRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.Order
	if err := r.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// EnsureIndexes creates necessary indexes on the orders collection.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "product_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
