package main

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/toystore_api/internal/handler"
	"github.com/GTDGit/toystore_api/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health            *handler.HealthHandler
	Product           *handler.ProductHandler
	Cart              *handler.CartHandler
	Checkout          *handler.CheckoutHandler
	Order             *handler.OrderHandler
	Dashboard         *handler.DashboardHandler
	ProductManagement *handler.ProductManagementHandler
	Upload            *handler.UploadHandler
	Auth              *handler.AuthHandler
	SSE               *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.InvalidAuthRateLimiter) {
	api := router.Group("/api")
	api.GET("/health", handlers.Health.GetHealth)

	// Storefront catalog
	api.GET("/products", handlers.Product.ListProducts)
	api.GET("/products/new", handlers.Product.NewProducts)
	api.GET("/products/:slug", handlers.Product.GetProduct)
	api.GET("/categories", handlers.Product.Categories)

	// Cart (identified by X-Cart-Id)
	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", handlers.Cart.GetCart)
		cartGroup.DELETE("", handlers.Cart.ClearCart)
		cartGroup.POST("/items", handlers.Cart.AddItem)
		cartGroup.PUT("/items/:variantId", handlers.Cart.UpdateItem)
		cartGroup.DELETE("/items/:variantId", handlers.Cart.RemoveItem)
	}

	// Checkout and tracking
	api.GET("/checkout/options", handlers.Checkout.Options)
	api.POST("/checkout", handlers.Checkout.PlaceOrder)
	api.GET("/orders/track", handlers.Order.Track)

	// Admin routes
	admin := api.Group("/admin")
	admin.POST("/login", middleware.LoginRateLimit(loginLimiter), handlers.Auth.Login)
	admin.GET("/orders/stream", jwtMiddleware.HandleQuery(), handlers.SSE.Stream)

	protected := admin.Group("")
	protected.Use(jwtMiddleware.Handle())
	{
		protected.GET("/verify", handlers.Auth.Verify)
		protected.GET("/dashboard", handlers.Dashboard.GetDashboard)

		// Product Management
		protected.GET("/products", handlers.ProductManagement.ListProducts)
		protected.POST("/products", handlers.ProductManagement.CreateProduct)
		protected.GET("/products/:id", handlers.ProductManagement.GetProduct)
		protected.PUT("/products/:id", handlers.ProductManagement.UpdateProduct)
		protected.DELETE("/products/:id", handlers.ProductManagement.DeleteProduct)
		protected.POST("/upload", handlers.Upload.Upload)

		// Order Management
		protected.GET("/orders", handlers.Order.ListOrders)
		protected.GET("/orders/:id", handlers.Order.GetOrder)
		protected.PUT("/orders/:id", handlers.Order.UpdateOrder)
	}
}
