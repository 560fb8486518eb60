package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/config"
	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/handlers"
	"github.com/bookandgo/booking-backend/internal/middleware"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/internal/services"
	"github.com/bookandgo/booking-backend/pkg/jwt"
	"github.com/bookandgo/booking-backend/pkg/mail"
	"github.com/bookandgo/booking-backend/pkg/pdf"
	"github.com/bookandgo/booking-backend/pkg/storage"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting BookAndGo Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize shared infrastructure
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	mailer := mail.NewLogSender(mail.Config{
		Mode:        cfg.Mail.Mode,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
	}, logger)
	fileStore, err := storage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Server.BaseURL+"/api/v1/documents")
	if err != nil {
		logger.Fatalf("Failed to initialize file storage: %v", err)
	}
	uploadsRoot := filepath.Join(cfg.Storage.LocalPath, "public")
	uploadStore, err := storage.NewLocalStorage(uploadsRoot, cfg.Server.BaseURL)
	if err != nil {
		logger.Fatalf("Failed to initialize upload storage: %v", err)
	}
	pdfRenderer := pdf.NewRenderer("BookAndGo")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	agencyRepo := database.NewAgencyRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	tourRepo := database.NewTourRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	couponRepo := database.NewCouponRepository(db)
	reviewRepo := database.NewReviewRepository(db)
	favoriteRepo := database.NewFavoriteRepository(db)
	messageRepo := database.NewMessageRepository(db)
	documentRepo := database.NewDocumentRepository(db)
	settingRepo := database.NewSettingRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	taxRate := settingRepo.GetFloat("tax_rate", cfg.Booking.TaxRate)
	bookingService := services.NewBookingService(db, bookingRepo, tourRepo, couponRepo, taxRate, logger)
	paymentService := services.NewPaymentService(db, paymentRepo, bookingRepo, cfg.Payment.Currency, mailer, logger)
	reviewService := services.NewReviewService(db, reviewRepo, tourRepo, agencyRepo, bookingRepo, logger)
	documentService := services.NewDocumentService(documentRepo, tourRepo, agencyRepo, pdfRenderer, fileStore, cfg.Payment.Currency, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, jwtService, userRepo, agencyRepo, sessionRepo, mailer, uploadStore, cfg, logger)
	tourHandler := handlers.NewTourHandler(tourRepo, reviewRepo, agencyRepo, categoryRepo, uploadStore, logger)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo, tourRepo, logger)
	agencyHandler := handlers.NewAgencyHandler(agencyRepo, tourRepo, bookingRepo, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, bookingRepo, userRepo, agencyRepo, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, paymentRepo, bookingRepo, userRepo, agencyRepo, logger)
	couponHandler := handlers.NewCouponHandler(couponRepo, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, reviewRepo, userRepo, logger)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo, tourRepo, logger)
	messageHandler := handlers.NewMessageHandler(messageRepo, bookingRepo, agencyRepo, uploadStore, logger)
	documentHandler := handlers.NewDocumentHandler(documentService, documentRepo, bookingRepo, agencyRepo, logger)
	settingHandler := handlers.NewSettingHandler(settingRepo, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))
	router.Static("/storage", uploadsRoot)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Public catalog routes
		tours := v1.Group("/tours")
		{
			tours.GET("", tourHandler.List)
			tours.GET("/featured", tourHandler.Featured)
			tours.GET("/:id", tourHandler.Get)
			tours.GET("/:id/related", tourHandler.Related)
			tours.GET("/:id/reviews", tourHandler.Reviews)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:slug", categoryHandler.Get)
		}

		agencies := v1.Group("/agencies")
		{
			agencies.GET("", agencyHandler.List)
			agencies.GET("/:id", agencyHandler.Get)
		}

		v1.GET("/reviews", reviewHandler.List)
		v1.POST("/coupons/validate", couponHandler.Validate)
		v1.GET("/settings/public", settingHandler.Public)

		// Authenticated routes (any role)
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(jwtService))
		authed.Use(middleware.TrackActivity(userRepo, logger))
		{
			authed.GET("/auth/me", authHandler.Me)
			authed.PUT("/auth/profile", authHandler.UpdateProfile)
			authed.POST("/auth/logout", authHandler.Logout)
			authed.POST("/auth/avatar", authHandler.UploadAvatar)

			bookings := authed.Group("/bookings")
			{
				bookings.GET("", bookingHandler.List)
				bookings.POST("", bookingHandler.Create)
				bookings.GET("/:id", bookingHandler.Get)
				bookings.POST("/:id/cancel", bookingHandler.Cancel)

				bookings.GET("/:id/messages", messageHandler.ListByBooking)
				bookings.POST("/:id/messages", messageHandler.Send)
				bookings.POST("/:id/messages/mark-all-read", messageHandler.MarkRead)

				bookings.GET("/:id/documents", documentHandler.List)
				bookings.GET("/:id/documents/voucher", documentHandler.GenerateVoucher)
				bookings.POST("/:id/documents/invoice", documentHandler.GenerateInvoice)
			}

			payments := authed.Group("/payments")
			{
				payments.POST("", paymentHandler.Create)
				payments.GET("/:id", paymentHandler.Get)
				payments.POST("/:id/confirm", paymentHandler.Confirm)
				payments.POST("/:id/refund", paymentHandler.Refund)
			}

			reviews := authed.Group("/reviews")
			{
				reviews.POST("", reviewHandler.Submit)
				reviews.GET("/mine", reviewHandler.Mine)
				reviews.POST("/:id/helpful", reviewHandler.MarkHelpful)
			}

			favorites := authed.Group("/favorites")
			{
				favorites.GET("", favoriteHandler.List)
				favorites.POST("/:tourId/toggle", favoriteHandler.Toggle)
				favorites.GET("/:tourId", favoriteHandler.Check)
			}

			messages := authed.Group("/messages")
			{
				messages.GET("/conversations", messageHandler.Conversations)
				messages.GET("/unread-count", messageHandler.UnreadCount)
				messages.DELETE("/:id", messageHandler.Delete)
			}

			documents := authed.Group("/documents")
			{
				documents.GET("/:id/download", documentHandler.Download)
				documents.DELETE("/:id", documentHandler.Delete)
			}

			// Agency routes
			agency := authed.Group("/agency")
			agency.Use(middleware.RequireRole(models.RoleAgency, models.RoleAdmin))
			{
				agency.GET("/dashboard", agencyHandler.Dashboard)
				agency.GET("/statistics", agencyHandler.Statistics)
				agency.PUT("/profile", agencyHandler.UpdateProfile)

				agency.GET("/tours", tourHandler.ListMine)
				agency.POST("/tours", tourHandler.Create)
				agency.PUT("/tours/:id", tourHandler.Update)
				agency.POST("/tours/:id/publish", tourHandler.Publish)
				agency.POST("/tours/:id/image", tourHandler.UploadImage)
				agency.DELETE("/tours/:id", tourHandler.Delete)

				agency.GET("/bookings", agencyHandler.Bookings)
				agency.POST("/bookings/:id/confirm", bookingHandler.Confirm)
				agency.POST("/bookings/:id/check-in", bookingHandler.CheckIn)
				agency.POST("/bookings/:id/complete", bookingHandler.Complete)
			}

			// Admin routes
			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/coupons", couponHandler.List)
				admin.POST("/coupons", couponHandler.Create)
				admin.GET("/coupons/statistics", couponHandler.Statistics)
				admin.GET("/coupons/:id", couponHandler.Get)
				admin.PUT("/coupons/:id", couponHandler.Update)
				admin.DELETE("/coupons/:id", couponHandler.Delete)
				admin.POST("/coupons/:id/toggle", couponHandler.Toggle)

				admin.GET("/settings", settingHandler.List)
				admin.PUT("/settings", settingHandler.Upsert)
				admin.GET("/settings/group/:group", settingHandler.Group)
				admin.PUT("/settings/group/:group", settingHandler.UpdateGroup)
				admin.GET("/settings/:key", settingHandler.Get)
				admin.DELETE("/settings/:key", settingHandler.Delete)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID.String()
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler reports process and database health
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
