package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/api/metrics"
	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /orders safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	svc ports.OrderService
}

func NewOrderHandler(svc ports.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderRequest struct {
	ProductID   string `json:"productId"`
	ClientName  string `json:"clientName"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Status      string `json:"status,omitempty"`
}

func (r orderRequest) toInput() ports.OrderInput {
	return ports.OrderInput{
		ProductID:   r.ProductID,
		ClientName:  r.ClientName,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Address:     r.Address,
		Status:      r.Status,
	}
}

// orderDetail is an order with its product embedded.
type orderDetail struct {
	*domain.Order
	Product *domain.Product `json:"product"`
}

// Create places an order. Retrying with the same Idempotency-Key returns the
// original order.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string        false  "Client-generated key for safe retries"
// @Param        body             body      orderRequest  true   "Order details"
// @Success      201              {object}  Envelope{data=domain.Order}
// @Failure      400              {object}  Envelope
// @Failure      409              {object}  Envelope
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return domain.ValidationError("invalid request body")
	}

	input := req.toInput()
	input.IdempotencyKey = strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))

	order, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.OrdersCreatedTotal.Inc()
	return respond(c, http.StatusCreated, "Order created successfully", order)
}

// List returns a page of active orders.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 10, max 100)"
// @Success      200    {object}  Envelope{data=[]domain.Order}
// @Failure      400    {object}  Envelope
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	orders, total, err := h.svc.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return respondList(c, "Orders fetched successfully", orders, page, total)
}

// Get returns one active order together with its product.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  Envelope{data=orderDetail}
// @Failure      404  {object}  Envelope
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	detail, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order fetched successfully", orderDetail{Order: detail.Order, Product: detail.Product})
}

// Update replaces an order's details, typically to change its status.
//
// @Summary      Update an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Order id"
// @Param        body  body      orderRequest  true  "Order details"
// @Success      200   {object}  Envelope{data=domain.Order}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return domain.ValidationError("invalid request body")
	}

	order, err := h.svc.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order updated successfully", order)
}

// SoftDelete marks an order deleted.
//
// @Summary      Soft-delete an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  Envelope{data=domain.Order}
// @Failure      404  {object}  Envelope
// @Router       /orders/{id} [delete]
func (h *OrderHandler) SoftDelete(c echo.Context) error {
	order, err := h.svc.SoftDelete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues("order", "soft").Inc()
	return respond(c, http.StatusOK, "Order deleted successfully", order)
}

// HardDelete removes an order permanently.
//
// @Summary      Permanently delete an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /orders/{id}/permanent [delete]
func (h *OrderHandler) HardDelete(c echo.Context) error {
	if err := h.svc.HardDelete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues("order", "permanent").Inc()
	return respond(c, http.StatusOK, "Order permanently deleted", nil)
}
