package ports

import (
	"time"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs bearer tokens for an authenticated subject.
type TokenIssuer interface {
	IssueToken(subject string, role domain.Role) (token string, expiresAt time.Time, err error)
}

// TokenVerifier validates a bearer token and returns its claims.
// Any failure is reported as domain.ErrInvalidToken.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.Claims, error)
}

// CredentialService bundles password and token handling.
type CredentialService interface {
	PasswordHasher
	TokenIssuer
	TokenVerifier
}
