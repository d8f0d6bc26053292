package domain

import "time"

// Role is the enumerated role of a user account. It never changes after creation.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleRetailer Role = "retailer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleRetailer
}

// Entity returns the singular noun used in messages, e.g. "admin not found".
func (r Role) Entity() string {
	return string(r)
}

// User models an administrator or a retailer.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	ProfileImage string     `json:"profileImage,omitempty"`
	FarmName     string     `json:"farmName,omitempty"`
	Location     string     `json:"location,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// Active reports whether the user has not been soft-deleted.
func (u *User) Active() bool {
	return u.DeletedAt == nil
}

// Claims is the decoded payload of a verified bearer token.
type Claims struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}
