// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"boutique/internal/delivery/http/middleware"
	"boutique/internal/delivery/http/router/handler"
	"boutique/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler   *handler.AccountHandler
	CartHandler      *handler.CartHandler
	ProductHandler   *handler.ProductHandler
	PaymentHandler   *handler.PaymentHandler
	AuthMiddleware   *middleware.AuthMiddleware
	LoggerMiddleware *middleware.LoggerMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler   *handler.AccountHandler
	cartHandler      *handler.CartHandler
	productHandler   *handler.ProductHandler
	paymentHandler   *handler.PaymentHandler
	authMiddleware   *middleware.AuthMiddleware
	loggerMiddleware *middleware.LoggerMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler:   params.AccountHandler,
		cartHandler:      params.CartHandler,
		productHandler:   params.ProductHandler,
		paymentHandler:   params.PaymentHandler,
		authMiddleware:   params.AuthMiddleware,
		loggerMiddleware: params.LoggerMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.loggerMiddleware.Handle)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Account routes; the GET endpoints are the targets of emailed links, so
	// everything up to logout is public.
	accountGroup := e.Group("/accounts")
	{
		accountGroup.POST("/register", r.accountHandler.Register)
		accountGroup.POST("/authenticate", r.accountHandler.Login)
		accountGroup.POST("/refresh-token", r.accountHandler.Refresh)
		accountGroup.GET("/email-confirmation", r.accountHandler.ConfirmEmail)
		accountGroup.POST("/resend-confirmation-email", r.accountHandler.ResendConfirmation)
		accountGroup.POST("/forgot-password", r.accountHandler.ForgotPassword)
		accountGroup.GET("/reset-password", r.accountHandler.ResetPasswordRedirect)
		accountGroup.POST("/reset-password", r.accountHandler.ResetPassword)
	}

	profileGroup := e.Group("/accounts")
	profileGroup.Use(r.authMiddleware.Authenticate)
	{
		profileGroup.POST("/logout", r.accountHandler.Logout)
		profileGroup.GET("/me", r.accountHandler.GetProfile)
		profileGroup.PUT("/update", r.accountHandler.UpdateProfile)
	}

	// Catalog browsing is public; mutation requires the administrator role.
	catalogGroup := e.Group("/clothes")
	{
		catalogGroup.GET("", r.productHandler.ListProducts)
		catalogGroup.GET("/:id", r.productHandler.GetProduct)
	}

	adminCatalogGroup := e.Group("/clothes")
	adminCatalogGroup.Use(r.authMiddleware.Authenticate)
	adminCatalogGroup.Use(r.authMiddleware.RequireRole(string(entity.RoleAdministrator)))
	{
		adminCatalogGroup.POST("", r.productHandler.CreateProduct)
		adminCatalogGroup.PUT("/:id", r.productHandler.UpdateProduct)
		adminCatalogGroup.DELETE("/:id", r.productHandler.DeleteProduct)
	}

	// Cart routes all act on the caller's own cart.
	cartGroup := e.Group("/carts")
	cartGroup.Use(r.authMiddleware.Authenticate)
	{
		cartGroup.GET("", r.cartHandler.GetCart)
		cartGroup.GET("/total-quantity", r.cartHandler.GetTotalQuantity)
		cartGroup.POST("/add", r.cartHandler.AddItem)
		cartGroup.PUT("/update", r.cartHandler.UpdateItemQuantity)
		cartGroup.DELETE("/remove/:itemId", r.cartHandler.RemoveItem)
		cartGroup.DELETE("/clear", r.cartHandler.ClearCart)
	}

	paymentGroup := e.Group("/paypal")
	paymentGroup.Use(r.authMiddleware.Authenticate)
	{
		paymentGroup.POST("/create-order", r.paymentHandler.CreateOrder)
		paymentGroup.POST("/capture-order", r.paymentHandler.CaptureOrder)
		paymentGroup.POST("/create-payment-method", r.paymentHandler.CreatePaymentMethod)
	}
}
