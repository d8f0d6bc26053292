package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/freshproduce/marketplace/internal/api/handler"
	"github.com/freshproduce/marketplace/internal/api/middleware"
	"github.com/freshproduce/marketplace/internal/core/ports"
	"github.com/freshproduce/marketplace/internal/infrastructure/http/handlers"
	"github.com/freshproduce/marketplace/internal/pkg/validation"
)

const defaultBodyLimit = "6M"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Admins    ports.UserService
	Retailers ports.UserService
	Products  ports.ProductService
	Orders    ports.OrderService
	Tokens    ports.TokenVerifier

	Uploader  *handler.ImageUploader
	Validator *validation.Validator
	Logger    zerolog.Logger

	// Readiness checks back GET /health/ready.
	Readiness map[string]handlers.Check
	// Registerer receives the HTTP request metrics. Nil disables them.
	Registerer prometheus.Registerer
	// StaticDir is served under StaticURL when both are set.
	StaticDir string
	StaticURL string
	BodyLimit string
}

// NewRouter builds the Echo instance with every route registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator(deps.Validator)
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	bodyLimit := deps.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "marketplace",
			Registerer: deps.Registerer,
		}))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Probes and docs ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Readiness).Readiness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if deps.StaticDir != "" && deps.StaticURL != "" {
		e.Static(deps.StaticURL, deps.StaticDir)
	}

	auth := middleware.Auth(deps.Tokens)
	adminOnly := middleware.RequireAdmin(deps.Admins)
	selfOrAdmin := middleware.SelfOrAdmin("id", deps.Admins)

	// --- Admins ---
	adminHandler := handler.NewUserHandler(deps.Admins, deps.Uploader)
	admins := e.Group("/admins")
	admins.POST("", adminHandler.Create)
	admins.POST("/login", adminHandler.Login)
	admins.GET("", adminHandler.List, auth, adminOnly)
	admins.GET("/:id", adminHandler.Get, auth, adminOnly)
	admins.PUT("/:id", adminHandler.Update, auth, adminOnly)
	admins.DELETE("/:id", adminHandler.SoftDelete, auth, adminOnly)
	admins.DELETE("/:id/permanent", adminHandler.HardDelete, auth, adminOnly)

	// --- Retailers ---
	retailerHandler := handler.NewUserHandler(deps.Retailers, deps.Uploader)
	retailers := e.Group("/retailers")
	retailers.POST("", retailerHandler.Create)
	retailers.POST("/login", retailerHandler.Login)
	retailers.GET("", retailerHandler.List, auth, adminOnly)
	retailers.GET("/:id", retailerHandler.Get, auth, selfOrAdmin)
	retailers.PUT("/:id", retailerHandler.Update, auth, selfOrAdmin)
	retailers.DELETE("/:id", retailerHandler.SoftDelete, auth, adminOnly)
	retailers.DELETE("/:id/permanent", retailerHandler.HardDelete, auth, adminOnly)

	// --- Products (any authenticated caller) ---
	productHandler := handler.NewProductHandler(deps.Products, deps.Uploader)
	products := e.Group("/products", auth)
	products.POST("", productHandler.Create)
	products.GET("", productHandler.List)
	products.GET("/category/:category", productHandler.ListByCategory)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.SoftDelete)
	products.DELETE("/:id/permanent", productHandler.HardDelete)

	// --- Orders (public) ---
	orderHandler := handler.NewOrderHandler(deps.Orders)
	orders := e.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PUT("/:id", orderHandler.Update)
	orders.DELETE("/:id", orderHandler.SoftDelete)
	orders.DELETE("/:id/permanent", orderHandler.HardDelete)

	return e
}
