package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

const (
	DefaultBcryptCost = 10
	DefaultTokenTTL   = 24 * time.Hour
)

// tokenClaims is the JWT payload: the subject id plus its role.
type tokenClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// CredentialService hashes passwords and issues/verifies HS256 bearer tokens.
type CredentialService struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

// NewCredentialService returns a CredentialService. The secret must be non-empty;
// zero ttl and cost fall back to one day and bcrypt cost 10.
func NewCredentialService(secret string, tokenTTL time.Duration, bcryptCost int) (*CredentialService, error) {
	if secret == "" {
		return nil, errors.New("credentials: signing secret is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("credentials: bcrypt cost %d out of range", bcryptCost)
	}
	return &CredentialService{
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}, nil
}

func (s *CredentialService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. It never errors on a mismatch.
func (s *CredentialService) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *CredentialService) IssueToken(subject string, role domain.Role) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken fails with domain.ErrInvalidToken on a bad signature, an
// unexpected algorithm, a malformed payload or an expired token.
func (s *CredentialService) VerifyToken(token string) (*domain.Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Claims{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
