// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/ecommerce-backend/internal/config"
	"github.com/javajoker/ecommerce-backend/internal/handlers"
	"github.com/javajoker/ecommerce-backend/internal/middleware"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

const version = "1.0.0"

// Initialize wires services, handlers and middleware into a gin engine.
// storage and notifier are the outbound collaborators; tests pass fakes.
func Initialize(db *gorm.DB, cfg *config.Config, storage services.FileStorage, notifier services.Notifier) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(db, cfg, notifier)
	userService := services.NewUserService(db, storage)
	categoryService := services.NewCategoryService(db, storage)
	productService := services.NewProductService(db, storage)
	cartService := services.NewCartService(db)
	addressService := services.NewAddressService(db)
	wishlistService := services.NewWishlistService(db)
	couponService := services.NewCouponService(db)
	reviewService := services.NewReviewService(db)
	orderService := services.NewOrderService(db, utils.PricingRules{
		TaxRate:               cfg.Store.TaxRate,
		FreeShippingThreshold: cfg.Store.FreeShippingThreshold,
		FlatShippingFee:       cfg.Store.FlatShippingFee,
	}, notifier)
	adminService := services.NewAdminService(db, cfg.Store.LowStockThreshold)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, handlers.CookieSettings{
		Name:   cfg.JWT.CookieName,
		Secure: cfg.JWT.CookieSecure,
	})
	userHandler := handlers.NewUserHandler(userService, authService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService, categoryService, reviewService)
	cartHandler := handlers.NewCartHandler(cartService)
	addressHandler := handlers.NewAddressHandler(addressService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	couponHandler := handlers.NewCouponHandler(couponService)
	adminHandler := handlers.NewAdminHandler(adminService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	middleware.SetTokenCookie(cfg.JWT.CookieName)

	generalLimit, authLimit, uploadLimit := middleware.Passthrough(), middleware.Passthrough(), middleware.Passthrough()
	if cfg.RateLimit.Enabled {
		limits := middleware.NewRateLimits(cfg.RateLimit.GeneralPerSecond, cfg.RateLimit.GeneralBurst,
			cfg.RateLimit.AuthPerMinute, cfg.RateLimit.UploadPerMinute)
		generalLimit = limits.General.Middleware()
		authLimit = limits.Auth.Middleware()
		uploadLimit = limits.Upload.Middleware()
	}

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(generalLimit)
	r.Use(middleware.AuditLogMiddleware(adminService))

	// Health check
	r.GET("/health", healthHandler(db))

	authRequired := middleware.AuthRequired()
	adminOnly := []gin.HandlerFunc{authRequired, middleware.AdminRequired()}

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(authLimit)
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/refresh-token", authHandler.RefreshToken)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(authRequired)
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.PUT("/change-password", userHandler.ChangePassword)
			users.POST("/avatar", uploadLimit, userHandler.UploadAvatar)
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("", middleware.OptionalAuth(), categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)

			protected := categories.Group("", adminOnly...)
			{
				protected.POST("", categoryHandler.Create)
				protected.PUT("/:id", categoryHandler.Update)
				protected.DELETE("/:id", categoryHandler.Delete)
				protected.POST("/:id/image", uploadLimit, categoryHandler.UploadImage)
			}
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.List)
			products.GET("/featured", productHandler.Featured)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.Get)
			products.GET("/:id/related", productHandler.Related)
			products.GET("/:id/reviews", productHandler.Reviews)
			products.GET("/:id/rating", productHandler.Rating)

			protected := products.Group("", adminOnly...)
			{
				protected.POST("", productHandler.Create)
				protected.PUT("/:id", productHandler.Update)
				protected.PATCH("/:id/stock", productHandler.UpdateStock)
				protected.DELETE("/:id", productHandler.Delete)
				protected.POST("/:id/images", uploadLimit, productHandler.UploadImages)
				protected.DELETE("/:id/images", productHandler.DeleteImage)
			}
		}

		// Cart routes
		cart := v1.Group("/cart")
		cart.Use(authRequired)
		{
			cart.GET("", cartHandler.Get)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:productId", cartHandler.UpdateItem)
			cart.DELETE("/items/:productId", cartHandler.RemoveItem)
			cart.DELETE("", cartHandler.Clear)
			cart.POST("/sync", cartHandler.Sync)
		}

		// Address routes
		addresses := v1.Group("/addresses")
		addresses.Use(authRequired)
		{
			addresses.GET("", addressHandler.List)
			addresses.POST("", addressHandler.Create)
			addresses.GET("/default", addressHandler.GetDefault)
			addresses.GET("/:id", addressHandler.Get)
			addresses.PUT("/:id", addressHandler.Update)
			addresses.DELETE("/:id", addressHandler.Delete)
			addresses.PATCH("/:id/default", addressHandler.SetDefault)
		}

		// Wishlist routes
		wishlist := v1.Group("/wishlist")
		wishlist.Use(authRequired)
		{
			wishlist.GET("", wishlistHandler.Get)
			wishlist.DELETE("", wishlistHandler.Clear)
			wishlist.POST("/:productId", wishlistHandler.Add)
			wishlist.DELETE("/:productId", wishlistHandler.Remove)
			wishlist.POST("/:productId/move-to-cart", wishlistHandler.MoveToCart)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(authRequired)
		{
			orders.POST("", orderHandler.Create)
			orders.GET("", orderHandler.ListMine)
			orders.GET("/number/:orderNumber", orderHandler.GetByNumber)
			orders.GET("/:id", orderHandler.Get)
			orders.PATCH("/:id/cancel", orderHandler.Cancel)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		reviews.Use(authRequired)
		{
			reviews.POST("", reviewHandler.Create)
			reviews.GET("/mine", reviewHandler.ListMine)
			reviews.PUT("/:id", reviewHandler.Update)
			reviews.DELETE("/:id", reviewHandler.Delete)
			reviews.POST("/:id/helpful", reviewHandler.MarkHelpful)
		}

		// Coupon routes
		coupons := v1.Group("/coupons")
		coupons.Use(authRequired)
		{
			coupons.POST("/validate", couponHandler.Validate)
			coupons.GET("/available", couponHandler.ListAvailable)

			protected := coupons.Group("", middleware.AdminRequired())
			{
				protected.POST("", couponHandler.Create)
				protected.GET("", couponHandler.List)
				protected.GET("/:id", couponHandler.Get)
				protected.PUT("/:id", couponHandler.Update)
				protected.DELETE("/:id", couponHandler.Delete)
			}
		}

		// Admin routes
		admin := v1.Group("/admin", adminOnly...)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/sales-report", adminHandler.SalesReport)
			admin.GET("/low-stock", adminHandler.LowStock)
			admin.GET("/top-products", adminHandler.TopProducts)
			admin.GET("/recent-orders", adminHandler.RecentOrders)
			admin.GET("/audit-logs", adminHandler.AuditLogs)

			admin.GET("/users", userHandler.ListUsers)
			admin.PATCH("/users/:id/role", userHandler.UpdateRole)
			admin.PATCH("/users/:id/status", userHandler.UpdateStatus)

			admin.GET("/orders", orderHandler.ListAll)
			admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
			admin.PATCH("/orders/:id/payment-status", orderHandler.UpdatePaymentStatus)
			admin.PATCH("/orders/:id/cancel", orderHandler.Cancel)

			admin.PATCH("/reviews/:id/approval", reviewHandler.SetApproval)
		}
	}

	// Local uploads are served by the API itself
	if s, ok := storage.(*services.StorageService); ok && !s.UsesS3() {
		r.Static("/uploads", cfg.Server.UploadDir)
	}

	r.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, http.StatusText(http.StatusNotFound), nil)
	})

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"version":   version,
			"timestamp": time.Now().UTC(),
		})
	}
}
