package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
)

const collectionProducts = "products"

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

// Create inserts a new product document.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Product
	if err := r.col.FindOne(ctx, active(bson.M{"_id": id})).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// List returns active products, optionally restricted to one category.
func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	filter := active(bson.M{})
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}

	products, total, err := findPage[domain.Product](ctx, r.col, filter, f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	update := bson.M{"$set": bson.M{
		"name":         p.Name,
		"price":        p.Price,
		"availability": p.Availability,
		"description":  p.Description,
		"image":        p.Image,
		"retailer_id":  p.RetailerID,
		"category":     string(p.Category),
		"updated_at":   p.UpdatedAt.UTC(),
	}}
	return r.findOneAndUpdate(ctx, active(bson.M{"_id": p.ID}), update)
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id string, at time.Time) (*domain.Product, error) {
	update := bson.M{"$set": bson.M{"deleted_at": at.UTC(), "updated_at": at.UTC()}}
	return r.findOneAndUpdate(ctx, active(bson.M{"_id": id}), update)
}

func (r *ProductRepository) HardDelete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.col, bson.M{"_id": id})
}

func (r *ProductRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Product
	if err := r.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// EnsureIndexes creates necessary indexes on the products collection.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "retailer_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
