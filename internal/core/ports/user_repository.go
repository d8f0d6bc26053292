package ports

import (
	"context"
	"time"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// UserRepository persists admins and retailers in a single store, scoped by role.
// Every lookup and mutation except HardDelete ignores soft-deleted users.
type UserRepository interface {
	// Create inserts a user. It returns domain.ErrDuplicateEmail when an active
	// user already owns the email.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, role domain.Role, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, role domain.Role, email string) (*domain.User, error)
	List(ctx context.Context, role domain.Role, page domain.Page) ([]*domain.User, int64, error)
	// Update replaces the mutable fields of an active user in one conditional
	// write. An empty PasswordHash leaves the stored hash unchanged.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	SoftDelete(ctx context.Context, role domain.Role, id string, at time.Time) (*domain.User, error)
	// HardDelete removes the row whether or not it was soft-deleted.
	HardDelete(ctx context.Context, role domain.Role, id string) error
}
