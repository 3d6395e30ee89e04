package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/careercompass/mentor-booking-backend/internal/booking"
	"github.com/careercompass/mentor-booking-backend/internal/config"
	"github.com/careercompass/mentor-booking-backend/internal/database"
	"github.com/careercompass/mentor-booking-backend/internal/handlers"
	"github.com/careercompass/mentor-booking-backend/internal/middleware"
	"github.com/careercompass/mentor-booking-backend/internal/services"
	"github.com/careercompass/mentor-booking-backend/pkg/jwt"
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

	logger.Info("Starting CareerCompass Mentor Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
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
	logger.Info("Database connection established")

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	mentorRepository := database.NewMentorRepository(db)
	bookingRepository := database.NewBookingRepository(db, cfg.Booking.StoreTimeout)
	payableService := services.NewPayableService(&cfg.Payment, logger)
	auditService := services.NewAuditService(db, logger)
	fallbackLedger := booking.NewFallbackLedger()

	if !payableService.IsConfigured() {
		logger.Warn("PAYable merchant credentials not configured - paid bookings will land in manual follow-up")
	}

	// Initialize handlers
	mentorHandler := handlers.NewMentorHandler(mentorRepository, logger)
	bookingHandler := handlers.NewBookingHandler(
		mentorRepository,
		bookingRepository,
		payableService,
		fallbackLedger,
		auditService,
		cfg.Booking,
		logger,
	)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := db.Ping(); err != nil {
			// The booking flow degrades to the local ledger, the service
			// itself stays up
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"version": version,
		})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/mentors/:id", mentorHandler.GetMentor)
		api.GET("/mentors/:id/availability", mentorHandler.GetAvailability)

		api.POST("/bookings", middleware.OptionalAuthMiddleware(jwtService), bookingHandler.CreateBooking)
		api.GET("/bookings", middleware.AuthMiddleware(jwtService), bookingHandler.ListBookings)
		api.GET("/bookings/:id", middleware.AuthMiddleware(jwtService), bookingHandler.GetBooking)
		api.GET("/bookings/fallback", middleware.AuthMiddleware(jwtService), bookingHandler.ListFallbackBookings)
	}

	// Start server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
		// No WriteTimeout: the booking route legitimately waits on a
		// human-paced external checkout
		ReadTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
