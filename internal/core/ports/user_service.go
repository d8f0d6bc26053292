package ports

import (
	"context"
	"time"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// UserInput is the full, schema-validated payload for creating or replacing a user.
// FarmName and Location are required for retailers and ignored for admins.
type UserInput struct {
	Name         string      `json:"name"         validate:"required"`
	Email        string      `json:"email"        validate:"required,email"`
	Password     string      `json:"password"     validate:"omitempty,min=6"`
	FarmName     string      `json:"farmName"     validate:"required_if=Role retailer"`
	Location     string      `json:"location"     validate:"required_if=Role retailer"`
	ProfileImage string      `json:"profileImage"`
	Role         domain.Role `json:"-"`
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *domain.User
}

// UserService manages the accounts of one role (admin or retailer).
type UserService interface {
	Role() domain.Role
	Create(ctx context.Context, input UserInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, input UserInput) (*domain.User, error)
	SoftDelete(ctx context.Context, id string) (*domain.User, error)
	HardDelete(ctx context.Context, id string) error
}
