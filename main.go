package main

import (
	"net/http"

	"joygiver-server/config"
	"joygiver-server/database"
	"joygiver-server/handlers"
	"joygiver-server/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "joygiver_http_requests_total",
	Help: "HTTP requests by method, path and status",
}, []string{"method", "path", "status"})

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, http.StatusText(c.Writer.Status())).Inc()
	}
}

func main() {
	if err := config.Load(); err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if config.AppConfig.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.InitializeTables(); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize tables")
	}

	if config.AppConfig.CloudinaryURL != "" {
		if err := services.InitializeCloudinary(config.AppConfig.CloudinaryURL); err != nil {
			logrus.WithError(err).Warn("Cloudinary unavailable, image uploads disabled")
		}
	}

	services.InitializeStripe(config.AppConfig.StripeSecretKey)

	router := gin.Default()
	router.Use(metricsMiddleware())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure this properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Joygiver Server is running",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.InitializeHandlers(db)

	// Admin bootstrap (refuses once an admin exists)
	router.POST("/setup-admin", handlers.CreateAdminUser)

	// Payment provider callbacks
	router.POST("/webhooks/stripe", handlers.HandleStripeWebhook)

	api := router.Group("/api/v1")
	{
		// Authentication routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.RegisterUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/send-otp", handlers.SendOTP)
			auth.POST("/verify-otp", handlers.VerifyOTP)
			auth.POST("/forgot-password", handlers.ForgotPassword)
			auth.POST("/reset-password", handlers.ResetPassword)
			auth.POST("/refresh", handlers.RefreshToken)
			auth.GET("/validate", handlers.ValidateToken)
			auth.POST("/logout", handlers.LogoutUser)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(handlers.AuthMiddleware())
		{
			users.GET("/profile", handlers.GetUserProfile)
			users.PUT("/profile", handlers.UpdateUserProfile)
			users.PUT("/push-token", handlers.UpdatePushToken)
			users.POST("/avatar", handlers.UploadAvatar)
		}

		// Friends routes (protected)
		friends := api.Group("/friends")
		friends.Use(handlers.AuthMiddleware())
		{
			friends.GET("/", handlers.GetFriends)
			friends.GET("/requests", handlers.GetFriendRequests)
			friends.POST("/:id", handlers.SendFriendRequest)
			friends.PUT("/:id/accept", handlers.AcceptFriendRequest)
			friends.DELETE("/:id", handlers.RemoveFriend)
		}

		// Referral routes
		referrals := api.Group("/referrals")
		{
			referrals.GET("/validate", handlers.ValidateReferralCode)
			referrals.GET("/code", handlers.AuthMiddleware(), handlers.GetReferralCode)
			referrals.GET("/", handlers.AuthMiddleware(), handlers.GetReferrals)
		}

		// Category routes
		categories := api.Group("/categories")
		{
			categories.GET("/", handlers.GetCategories)
			categories.GET("/:id", handlers.GetCategory)
			categories.POST("/", handlers.AuthMiddleware(), handlers.AdminMiddleware(), handlers.CreateCategory)
			categories.PUT("/:id", handlers.AuthMiddleware(), handlers.AdminMiddleware(), handlers.UpdateCategory)
			categories.DELETE("/:id", handlers.AuthMiddleware(), handlers.AdminMiddleware(), handlers.DeleteCategory)
		}

		// Curated item routes
		items := api.Group("/items")
		{
			items.GET("/", handlers.GetCuratedItems)
			items.GET("/mine", handlers.AuthMiddleware(), handlers.GetMyCuratedItems)
			items.POST("/", handlers.AuthMiddleware(), handlers.CreateCuratedItem)
			items.POST("/upload-image", handlers.AuthMiddleware(), handlers.UploadItemImage)
		}

		// Wishlist routes (protected)
		wishlists := api.Group("/wishlists")
		wishlists.Use(handlers.AuthMiddleware())
		{
			wishlists.GET("/", handlers.GetMyWishlists)
			wishlists.POST("/", handlers.CreateWishlist)
			wishlists.GET("/:id", handlers.GetWishlist)
			wishlists.PUT("/:id", handlers.UpdateWishlist)
			wishlists.DELETE("/:id", handlers.DeleteWishlist)
			wishlists.POST("/:id/cover", handlers.UploadWishlistCover)
			wishlists.POST("/:id/items", handlers.AddWishlistItem)
			wishlists.DELETE("/:id/items/:itemId", handlers.RemoveWishlistItem)
			wishlists.PUT("/:id/items/reorder", handlers.ReorderWishlistItems)
			wishlists.GET("/:id/contributions", handlers.GetWishlistContributions)
			wishlists.POST("/:id/withdraw", handlers.WithdrawWishlistFunds)
		}

		// Public share-link routes (no auth)
		api.GET("/public/wishlists/:code", handlers.GetPublicWishlist)
		api.GET("/public/wishlists/:code/contributors", handlers.GetPublicContributors)
		api.GET("/public/items/:code", handlers.GetPublicItem)
		api.POST("/public/contributions", handlers.CreateContribution)

		// Wallet routes (protected)
		wallet := api.Group("/wallet")
		wallet.Use(handlers.AuthMiddleware())
		{
			wallet.GET("/", handlers.GetWallet)
			wallet.GET("/transactions", handlers.GetWalletTransactions)
			wallet.POST("/items/:id/withdraw", handlers.WithdrawItemFunds)
			wallet.POST("/withdrawals", handlers.RequestWithdrawal)
			wallet.GET("/withdrawals", handlers.GetMyWithdrawals)
		}

		// Admin routes (protected with admin middleware)
		admin := api.Group("/admin")
		admin.Use(handlers.AuthMiddleware(), handlers.AdminMiddleware())
		{
			admin.GET("/stats", handlers.GetAdminStats)
			admin.GET("/users", handlers.GetAllUsers)
			admin.PUT("/users/:id/role", handlers.UpdateUserRole)
			admin.PUT("/users/:id/status", handlers.ToggleUserStatus)

			admin.POST("/items", handlers.AdminCreateCuratedItem)
			admin.PUT("/items/:id", handlers.AdminUpdateCuratedItem)
			admin.DELETE("/items/:id", handlers.AdminDeleteCuratedItem)

			admin.GET("/withdrawals", handlers.AdminGetWithdrawals)
			admin.PUT("/withdrawals/:id/approve", handlers.AdminApproveWithdrawal)
			admin.PUT("/withdrawals/:id/reject", handlers.AdminRejectWithdrawal)
		}
	}

	logrus.Infof("Starting Joygiver Server on 0.0.0.0:%s", config.AppConfig.ServerPort)
	logrus.Fatal(http.ListenAndServe("0.0.0.0:"+config.AppConfig.ServerPort, c.Handler(router)))
}
