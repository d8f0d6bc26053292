package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
	"github.com/freshproduce/marketplace/internal/pkg/validation"
)

// UserService implements account management for a single role. The API builds
// one instance for admins and one for retailers over the same repository.
type UserService struct {
	role      domain.Role
	repo      ports.UserRepository
	creds     ports.CredentialService
	validator *validation.Validator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewUserService(role domain.Role, repo ports.UserRepository, creds ports.CredentialService, v *validation.Validator, logger zerolog.Logger) *UserService {
	return &UserService{
		role:      role,
		repo:      repo,
		creds:     creds,
		validator: v,
		logger:    logger.With().Str("role", string(role)).Logger(),
		now:       time.Now,
	}
}

func (s *UserService) Role() domain.Role { return s.role }

func (s *UserService) Create(ctx context.Context, input ports.UserInput) (*domain.User, error) {
	input = s.normalize(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, domain.ValidationError("password is required")
	}

	hash, err := s.creds.Hash(input.Password)
	if err != nil {
		return nil, domain.Internal("create "+s.role.Entity(), err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         s.role,
		ProfileImage: input.ProfileImage,
		FarmName:     input.FarmName,
		Location:     input.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			s.logger.Warn().Str("email", user.Email).Msg("duplicate email rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, domain.Internal("create "+s.role.Entity(), err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user created")
	return user, nil
}

// Login checks credentials against active users of this role only. Unknown
// emails, wrong passwords and soft-deleted accounts are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validator.Var("email", email, "required,email"); err != nil {
		return nil, err
	}
	if err := s.validator.Var("password", password, "required"); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, s.role, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal("login", err)
	}

	if !s.creds.Verify(password, user.PasswordHash) {
		s.logger.Warn().Str("user_id", user.ID).Msg("login rejected: wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.creds.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.Internal("login", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *UserService) List(ctx context.Context, page domain.Page) ([]*domain.User, int64, error) {
	users, total, err := s.repo.List(ctx, s.role, page)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, 0, domain.Internal("list "+s.role.Entity()+"s", err)
	}
	return users, total, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.role, id)
	if err != nil {
		return nil, s.storeError("get", err)
	}
	return user, nil
}

// Update replaces the user's fields. Password is optional here and re-hashed
// only when present; the role never changes.
func (s *UserService) Update(ctx context.Context, id string, input ports.UserInput) (*domain.User, error) {
	input = s.normalize(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           id,
		Name:         input.Name,
		Email:        input.Email,
		Role:         s.role,
		ProfileImage: input.ProfileImage,
		FarmName:     input.FarmName,
		Location:     input.Location,
		UpdatedAt:    s.now().UTC(),
	}
	if input.Password != "" {
		hash, err := s.creds.Hash(input.Password)
		if err != nil {
			return nil, domain.Internal("update "+s.role.Entity(), err)
		}
		user.PasswordHash = hash
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, s.storeError("update", err)
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

func (s *UserService) SoftDelete(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.SoftDelete(ctx, s.role, id, s.now().UTC())
	if err != nil {
		return nil, s.storeError("delete", err)
	}
	s.logger.Info().Str("user_id", id).Msg("user soft-deleted")
	return user, nil
}

func (s *UserService) HardDelete(ctx context.Context, id string) error {
	if err := s.repo.HardDelete(ctx, s.role, id); err != nil {
		return s.storeError("permanently delete", err)
	}
	s.logger.Info().Str("user_id", id).Msg("user permanently deleted")
	return nil
}

func (s *UserService) normalize(input ports.UserInput) ports.UserInput {
	input.Role = s.role
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if s.role != domain.RoleRetailer {
		input.FarmName = ""
		input.Location = ""
	}
	return input
}

// storeError converts repository failures: not-found becomes "<role> not found",
// duplicate email passes through and anything else is logged as internal.
func (s *UserService) storeError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.NotFound(s.role.Entity())
	case errors.Is(err, domain.ErrDuplicateEmail):
		return err
	}
	s.logger.Error().Err(err).Str("op", op).Msg("user store failure")
	return domain.Internal(op+" "+s.role.Entity(), err)
}
