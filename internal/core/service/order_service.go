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

type OrderService struct {
	repo        ports.OrderRepository
	products    ports.ProductRepository
	idempotency ports.IdempotencyStore
	notifier    ports.OrderNotifier
	validator   *validation.Validator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService returns an OrderService. idempotency and notifier may be nil,
// which disables Idempotency-Key replay and confirmation emails respectively.
func NewOrderService(
	repo ports.OrderRepository,
	products ports.ProductRepository,
	idempotency ports.IdempotencyStore,
	notifier ports.OrderNotifier,
	v *validation.Validator,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		repo:        repo,
		products:    products,
		idempotency: idempotency,
		notifier:    notifier,
		validator:   v,
		logger:      logger,
		now:         time.Now,
	}
}

// Create persists a new order and then queues a confirmation email. The
// Idempotency-Key is reserved before the order is stored, so a repeated key
// returns the order created the first time and a key whose first request is
// still in flight is a conflict.
func (s *OrderService) Create(ctx context.Context, input ports.OrderInput) (*domain.Order, error) {
	key := input.IdempotencyKey
	if key == "" || s.idempotency == nil {
		return s.place(ctx, input)
	}

	reserved, orderID, err := s.idempotency.Reserve(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reservation failed, creating anyway")
		return s.place(ctx, input)
	}
	if !reserved {
		return s.replay(ctx, key, orderID)
	}

	order, err := s.place(ctx, input)
	if err != nil {
		if rerr := s.idempotency.Release(context.WithoutCancel(ctx), key); rerr != nil {
			s.logger.Warn().Err(rerr).Str("idempotency_key", key).Msg("failed to release idempotency key")
		}
		return nil, err
	}

	if err := s.idempotency.Complete(context.WithoutCancel(ctx), key, order.ID); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to record idempotency key")
	}
	return order, nil
}

// place validates and stores a new order, then notifies the client.
func (s *OrderService) place(ctx context.Context, input ports.OrderInput) (*domain.Order, error) {
	product, err := s.validate(ctx, &input)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:          uuid.NewString(),
		ProductID:   input.ProductID,
		ClientName:  input.ClientName,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		Address:     input.Address,
		Status:      domain.OrderStatus(input.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Msg("failed to create order")
		return nil, domain.Internal("create order", err)
	}

	s.logger.Info().Str("order_id", order.ID).Str("product_id", order.ProductID).Msg("order created")

	if s.notifier != nil {
		s.notifier.OrderPlaced(order, product)
	}
	return order, nil
}

// replay returns the order already created under key.
func (s *OrderService) replay(ctx context.Context, key, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.Conflict("an order with this Idempotency-Key is still being processed")
	}
	existing, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Conflict("the order created with this Idempotency-Key is no longer available")
		}
		return nil, s.storeError("get", err)
	}
	s.logger.Info().Str("idempotency_key", key).Str("order_id", existing.ID).Msg("idempotent replay")
	return existing, nil
}

func (s *OrderService) List(ctx context.Context, page domain.Page) ([]*domain.Order, int64, error) {
	orders, total, err := s.repo.List(ctx, page)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, 0, domain.Internal("list orders", err)
	}
	return orders, total, nil
}

// Get returns the order with its product. A product that has since been
// deleted is reported as nil rather than failing the lookup.
func (s *OrderService) Get(ctx context.Context, id string) (*ports.OrderDetail, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get", err)
	}

	detail := &ports.OrderDetail{Order: order}
	product, err := s.products.FindByID(ctx, order.ProductID)
	switch {
	case err == nil:
		detail.Product = product
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Warn().Str("order_id", id).Str("product_id", order.ProductID).Msg("order references a missing product")
	default:
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to load order product")
		return nil, domain.Internal("get order", err)
	}
	return detail, nil
}

func (s *OrderService) Update(ctx context.Context, id string, input ports.OrderInput) (*domain.Order, error) {
	if _, err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Order{
		ID:          id,
		ProductID:   input.ProductID,
		ClientName:  input.ClientName,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		Address:     input.Address,
		Status:      domain.OrderStatus(input.Status),
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, s.storeError("update", err)
	}

	s.logger.Info().Str("order_id", id).Str("status", string(updated.Status)).Msg("order updated")
	return updated, nil
}

func (s *OrderService) SoftDelete(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.SoftDelete(ctx, id, s.now().UTC())
	if err != nil {
		return nil, s.storeError("delete", err)
	}
	s.logger.Info().Str("order_id", id).Msg("order soft-deleted")
	return order, nil
}

func (s *OrderService) HardDelete(ctx context.Context, id string) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return s.storeError("permanently delete", err)
	}
	s.logger.Info().Str("order_id", id).Msg("order permanently deleted")
	return nil
}

// validate applies the schema, defaults the status and resolves the product.
func (s *OrderService) validate(ctx context.Context, input *ports.OrderInput) (*domain.Product, error) {
	input.ProductID = strings.TrimSpace(input.ProductID)
	input.Email = strings.TrimSpace(input.Email)
	if input.Status == "" {
		input.Status = string(domain.OrderProcessing)
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ValidationError("productId does not reference an active product")
		}
		s.logger.Error().Err(err).Msg("failed to look up product")
		return nil, domain.Internal("check product", err)
	}
	return product, nil
}

func (s *OrderService) storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("order")
	}
	s.logger.Error().Err(err).Str("op", op).Msg("order store failure")
	return domain.Internal(op+" order", err)
}
