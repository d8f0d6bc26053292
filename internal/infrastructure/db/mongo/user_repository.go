package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository stores admins and retailers in one collection keyed by a
// UUID string and discriminated by role.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDocument struct {
	ID           string     `bson:"_id"`
	Name         string     `bson:"name"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash"`
	Role         string     `bson:"role"`
	ProfileImage string     `bson:"profile_image,omitempty"`
	FarmName     string     `bson:"farm_name,omitempty"`
	Location     string     `bson:"location,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
	DeletedAt    *time.Time `bson:"deleted_at"`
}

func toUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		ProfileImage: u.ProfileImage,
		FarmName:     u.FarmName,
		Location:     u.Location,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
		DeletedAt:    u.DeletedAt,
	}
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		ProfileImage: d.ProfileImage,
		FarmName:     d.FarmName,
		Location:     d.Location,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
		DeletedAt:    d.DeletedAt,
	}
}

// Create inserts a new user. The partial unique index on email turns a
// concurrent duplicate into domain.ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toUserDocument(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, role domain.Role, id string) (*domain.User, error) {
	return r.findOne(ctx, active(bson.M{"_id": id, "role": string(role)}))
}

func (r *UserRepository) FindByEmail(ctx context.Context, role domain.Role, email string) (*domain.User, error) {
	return r.findOne(ctx, active(bson.M{"email": email, "role": string(role)}))
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context, role domain.Role, page domain.Page) ([]*domain.User, int64, error) {
	docs, total, err := findPage[userDocument](ctx, r.col, active(bson.M{"role": string(role)}), page)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, total, nil
}

// Update replaces the mutable fields of an active user in a single
// conditional write, so a concurrent soft delete cannot be overwritten.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	filter := active(bson.M{"_id": u.ID, "role": string(u.Role)})
	updated, err := r.findOneAndUpdate(ctx, filter, bson.M{"$set": userUpdate(u)})
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrDuplicateEmail
	}
	return updated, err
}

// userUpdate builds the $set document for Update. An empty password hash or
// profile image keeps the stored value.
func userUpdate(u *domain.User) bson.M {
	set := bson.M{
		"name":       u.Name,
		"email":      u.Email,
		"farm_name":  u.FarmName,
		"location":   u.Location,
		"updated_at": u.UpdatedAt.UTC(),
	}
	if u.PasswordHash != "" {
		set["password_hash"] = u.PasswordHash
	}
	if u.ProfileImage != "" {
		set["profile_image"] = u.ProfileImage
	}
	return set
}

func (r *UserRepository) SoftDelete(ctx context.Context, role domain.Role, id string, at time.Time) (*domain.User, error) {
	filter := active(bson.M{"_id": id, "role": string(role)})
	update := bson.M{"$set": bson.M{"deleted_at": at.UTC(), "updated_at": at.UTC()}}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *UserRepository) HardDelete(ctx context.Context, role domain.Role, id string) error {
	return deleteOne(ctx, r.col, bson.M{"_id": id, "role": string(role)})
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the users indexes. Email is unique among users that
// have not been soft-deleted, which lets a deleted account's email be reused.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_active_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"deleted_at": bson.M{"$type": "null"}}),
		},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
