package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/api/metrics"
	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
)

type ProductHandler struct {
	svc      ports.ProductService
	uploader *ImageUploader
}

func NewProductHandler(svc ports.ProductService, uploader *ImageUploader) *ProductHandler {
	return &ProductHandler{svc: svc, uploader: uploader}
}

type productRequest struct {
	Name         string   `json:"name"`
	Price        *float64 `json:"price"`
	Availability *bool    `json:"availability"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	RetailerID   string   `json:"retailerId"`
	Category     string   `json:"category"`
}

func (h *ProductHandler) bind(c echo.Context) (ports.ProductInput, *Upload, error) {
	var req productRequest
	if isMultipart(c) {
		if err := req.fromForm(c); err != nil {
			return ports.ProductInput{}, nil, err
		}
	} else if err := c.Bind(&req); err != nil {
		return ports.ProductInput{}, nil, domain.ValidationError("invalid request body")
	}

	upload, err := h.uploader.Save(c, "image", "products")
	if err != nil {
		return ports.ProductInput{}, nil, err
	}
	if url := upload.url(); url != "" {
		req.Image = url
	}

	// A retailer listing its own produce may omit retailerId.
	if claims, ok := ctxClaims(c); ok && req.RetailerID == "" && claims.Role == domain.RoleRetailer {
		req.RetailerID = claims.Subject
	}

	return ports.ProductInput{
		Name:         req.Name,
		Price:        req.Price,
		Availability: req.Availability,
		Description:  req.Description,
		Image:        req.Image,
		RetailerID:   req.RetailerID,
		Category:     req.Category,
	}, upload, nil
}

func (r *productRequest) fromForm(c echo.Context) error {
	r.Name = c.FormValue("name")
	r.Description = c.FormValue("description")
	r.Image = c.FormValue("image")
	r.RetailerID = c.FormValue("retailerId")
	r.Category = c.FormValue("category")

	if v := strings.TrimSpace(c.FormValue("price")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.ValidationError("price must be a number")
		}
		r.Price = &price
	}
	if v := strings.TrimSpace(c.FormValue("availability")); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			return domain.ValidationError("availability must be a boolean")
		}
		r.Availability = &available
	}
	return nil
}

// Create lists a new product.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product details"
// @Success      201   {object}  Envelope{data=domain.Product}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	input, upload, err := h.bind(c)
	if err != nil {
		return err
	}

	product, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		h.uploader.Discard(c.Request().Context(), upload)
		return err
	}

	metrics.ProductsCreatedTotal.WithLabelValues(string(product.Category)).Inc()
	return respond(c, http.StatusCreated, "Product created successfully", product)
}

// List returns a page of active products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 10, max 100)"
// @Success      200    {object}  Envelope{data=[]domain.Product}
// @Failure      400    {object}  Envelope
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	products, total, err := h.svc.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return respondList(c, "Products fetched successfully", products, page, total)
}

// ListByCategory returns a page of active products in one category.
//
// @Summary      List products by category
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        category  path      string  true   "Poultry, Dairy, Cereals, Vegetables or Fruits"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Page size (default 10, max 100)"
// @Success      200       {object}  Envelope{data=[]domain.Product}
// @Failure      400       {object}  Envelope
// @Router       /products/category/{category} [get]
func (h *ProductHandler) ListByCategory(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	products, total, err := h.svc.ListByCategory(c.Request().Context(), c.Param("category"), page)
	if err != nil {
		return err
	}
	return respondList(c, "Products fetched successfully", products, page, total)
}

// Get returns one active product.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  Envelope{data=domain.Product}
// @Failure      404  {object}  Envelope
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Product fetched successfully", product)
}

// Update replaces a product's details.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Product id"
// @Param        body  body      productRequest  true  "Product details"
// @Success      200   {object}  Envelope{data=domain.Product}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	input, upload, err := h.bind(c)
	if err != nil {
		return err
	}

	product, err := h.svc.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		h.uploader.Discard(c.Request().Context(), upload)
		return err
	}
	return respond(c, http.StatusOK, "Product updated successfully", product)
}

// SoftDelete marks a product deleted.
//
// @Summary      Soft-delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  Envelope{data=domain.Product}
// @Failure      404  {object}  Envelope
// @Router       /products/{id} [delete]
func (h *ProductHandler) SoftDelete(c echo.Context) error {
	product, err := h.svc.SoftDelete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues("product", "soft").Inc()
	return respond(c, http.StatusOK, "Product deleted successfully", product)
}

// HardDelete removes a product permanently.
//
// @Summary      Permanently delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /products/{id}/permanent [delete]
func (h *ProductHandler) HardDelete(c echo.Context) error {
	if err := h.svc.HardDelete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues("product", "permanent").Inc()
	return respond(c, http.StatusOK, "Product permanently deleted", nil)
}
