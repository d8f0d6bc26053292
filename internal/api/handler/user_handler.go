package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/api/metrics"
	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
)

// UserHandler serves the account routes of one role. The same type backs
// /admins and /retailers.
type UserHandler struct {
	svc      ports.UserService
	uploader *ImageUploader
	title    string
}

func NewUserHandler(svc ports.UserService, uploader *ImageUploader) *UserHandler {
	entity := svc.Role().Entity()
	return &UserHandler{
		svc:      svc,
		uploader: uploader,
		title:    strings.ToUpper(entity[:1]) + entity[1:],
	}
}

type userRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"`
	FarmName     string `json:"farmName,omitempty"`
	Location     string `json:"location,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        *domain.User `json:"user"`
}

// bind reads a JSON or multipart body. A multipart profileImage file takes
// precedence over a profileImage URL in the body. The returned upload, if
// any, must be discarded when the request fails afterwards.
func (h *UserHandler) bind(c echo.Context) (ports.UserInput, *Upload, error) {
	var req userRequest
	if isMultipart(c) {
		req = userRequest{
			Name:         c.FormValue("name"),
			Email:        c.FormValue("email"),
			Password:     c.FormValue("password"),
			FarmName:     c.FormValue("farmName"),
			Location:     c.FormValue("location"),
			ProfileImage: c.FormValue("profileImage"),
		}
	} else if err := c.Bind(&req); err != nil {
		return ports.UserInput{}, nil, domain.ValidationError("invalid request body")
	}

	upload, err := h.uploader.Save(c, "profileImage", string(h.svc.Role())+"s")
	if err != nil {
		return ports.UserInput{}, nil, err
	}
	if url := upload.url(); url != "" {
		req.ProfileImage = url
	}

	return ports.UserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		FarmName:     req.FarmName,
		Location:     req.Location,
		ProfileImage: req.ProfileImage,
	}, upload, nil
}

// Create registers a new account.
//
// @Summary      Register an account
// @Tags         users
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body      userRequest  true  "Account details"
// @Success      201   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /admins [post]
// @Router       /retailers [post]
func (h *UserHandler) Create(c echo.Context) error {
	input, upload, err := h.bind(c)
	if err != nil {
		return err
	}

	user, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		h.uploader.Discard(c.Request().Context(), upload)
		return err
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role)).Inc()
	return respond(c, http.StatusCreated, h.title+" created successfully", user)
}

// Login authenticates an account of this role and returns a bearer token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  Envelope{data=loginResponse}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Router       /admins/login [post]
// @Router       /retailers/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.ValidationError("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	role := string(h.svc.Role())
	result, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(role, "failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(role, "success").Inc()
	return respond(c, http.StatusOK, "Login successful", loginResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		User:        result.User,
	})
}

// List returns a page of active accounts.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 10, max 100)"
// @Success      200    {object}  Envelope{data=[]domain.User}
// @Failure      400    {object}  Envelope
// @Failure      401    {object}  Envelope
// @Failure      403    {object}  Envelope
// @Router       /admins [get]
// @Router       /retailers [get]
func (h *UserHandler) List(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	users, total, err := h.svc.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return respondList(c, h.title+"s fetched successfully", users, page, total)
}

// Get returns one active account.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admins/{id} [get]
// @Router       /retailers/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.title+" fetched successfully", user)
}

// Update replaces an account's details.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Account id"
// @Param        body  body      userRequest  true  "Account details"
// @Success      200   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /admins/{id} [put]
// @Router       /retailers/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	input, upload, err := h.bind(c)
	if err != nil {
		return err
	}

	user, err := h.svc.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		h.uploader.Discard(c.Request().Context(), upload)
		return err
	}
	return respond(c, http.StatusOK, h.title+" updated successfully", user)
}

// SoftDelete marks an account deleted.
//
// @Summary      Soft-delete an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      404  {object}  Envelope
// @Router       /admins/{id} [delete]
// @Router       /retailers/{id} [delete]
func (h *UserHandler) SoftDelete(c echo.Context) error {
	user, err := h.svc.SoftDelete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues(string(h.svc.Role()), "soft").Inc()
	return respond(c, http.StatusOK, h.title+" deleted successfully", user)
}

// HardDelete removes an account permanently, deleted or not.
//
// @Summary      Permanently delete an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admins/{id}/permanent [delete]
// @Router       /retailers/{id}/permanent [delete]
func (h *UserHandler) HardDelete(c echo.Context) error {
	if err := h.svc.HardDelete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	metrics.DeletionsTotal.WithLabelValues(string(h.svc.Role()), "permanent").Inc()
	return respond(c, http.StatusOK, h.title+" permanently deleted", nil)
}
