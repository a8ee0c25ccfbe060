package main

import (
	"log"
	"os"
	"time"

	"carrent/internal/config"
	"carrent/internal/database"
	"carrent/internal/handlers"
	"carrent/internal/metrics"
	"carrent/internal/middleware"
	"carrent/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("app", "carrent").
		Logger()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := services.InitRedis(cfg.RedisURL); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	metrics.Register()

	// Booking events hub
	hub := services.NewHub()
	go hub.Run()

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authLimiter := middleware.NewRateLimiter(5, 10)

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		auth.Use(authLimiter.Middleware())
		{
			auth.POST("/signup", handlers.Signup(db))
			auth.POST("/login", handlers.Login(db, cfg))
		}

		// Booking events stream
		api.GET("/ws", middleware.AuthMiddleware(cfg), handlers.WebSocketHandler(hub))

		// Protected routes
		bookings := api.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(cfg))
		{
			bookings.POST("", handlers.CreateBooking(db, hub))
			bookings.GET("", handlers.GetBookings(db))
			bookings.GET("/:bookingId", handlers.GetBooking(db))
			bookings.PUT("/:bookingId", handlers.UpdateBooking(db, hub))
			bookings.DELETE("/:bookingId", handlers.DeleteBooking(db, hub))
		}
	}

	logger.Info().Str("port", cfg.Port).Msg("server listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
