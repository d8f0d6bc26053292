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

type ProductService struct {
	repo      ports.ProductRepository
	users     ports.UserRepository
	validator *validation.Validator
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProductService returns a ProductService. users is used to check that a
// product's retailerId names an active retailer.
func NewProductService(repo ports.ProductRepository, users ports.UserRepository, v *validation.Validator, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, users: users, validator: v, logger: logger, now: time.Now}
}

func (s *ProductService) Create(ctx context.Context, input ports.ProductInput) (*domain.Product, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := &domain.Product{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Price:        *input.Price,
		Availability: *input.Availability,
		Description:  input.Description,
		Image:        input.Image,
		RetailerID:   input.RetailerID,
		Category:     domain.Category(input.Category),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, domain.Internal("create product", err)
	}

	s.logger.Info().Str("product_id", product.ID).Str("retailer_id", product.RetailerID).Msg("product created")
	return product, nil
}

func (s *ProductService) List(ctx context.Context, page domain.Page) ([]*domain.Product, int64, error) {
	return s.list(ctx, ports.ProductFilter{Page: page})
}

func (s *ProductService) ListByCategory(ctx context.Context, category string, page domain.Page) ([]*domain.Product, int64, error) {
	if err := s.validator.Var("category", category, "required,oneof=Poultry Dairy Cereals Vegetables Fruits"); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, ports.ProductFilter{Category: domain.Category(category), Page: page})
}

func (s *ProductService) list(ctx context.Context, filter ports.ProductFilter) ([]*domain.Product, int64, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, 0, domain.Internal("list products", err)
	}
	return products, total, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get", err)
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, input ports.ProductInput) (*domain.Product, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Product{
		ID:           id,
		Name:         input.Name,
		Price:        *input.Price,
		Availability: *input.Availability,
		Description:  input.Description,
		Image:        input.Image,
		RetailerID:   input.RetailerID,
		Category:     domain.Category(input.Category),
		UpdatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, s.storeError("update", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return updated, nil
}

func (s *ProductService) SoftDelete(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.SoftDelete(ctx, id, s.now().UTC())
	if err != nil {
		return nil, s.storeError("delete", err)
	}
	s.logger.Info().Str("product_id", id).Msg("product soft-deleted")
	return product, nil
}

func (s *ProductService) HardDelete(ctx context.Context, id string) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return s.storeError("permanently delete", err)
	}
	s.logger.Info().Str("product_id", id).Msg("product permanently deleted")
	return nil
}

// validate checks the schema and then the retailer reference.
func (s *ProductService) validate(ctx context.Context, input *ports.ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.RetailerID = strings.TrimSpace(input.RetailerID)
	if err := s.validator.Struct(input); err != nil {
		return err
	}

	if _, err := s.users.FindByID(ctx, domain.RoleRetailer, input.RetailerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ValidationError("retailerId does not reference an active retailer")
		}
		s.logger.Error().Err(err).Msg("failed to look up retailer")
		return domain.Internal("check retailer", err)
	}
	return nil
}

func (s *ProductService) storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("product")
	}
	s.logger.Error().Err(err).Str("op", op).Msg("product store failure")
	return domain.Internal(op+" product", err)
}
