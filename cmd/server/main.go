package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/localnerve/napkins/internal/auth"
	"github.com/localnerve/napkins/internal/config"
	"github.com/localnerve/napkins/internal/database"
	"github.com/localnerve/napkins/internal/handlers"
	"github.com/localnerve/napkins/internal/middleware"

	_ "github.com/localnerve/napkins/docs/api" // Swagger docs
)

// @title Napkins API
// @version 1.0.0
// @description Matching service for founders and their ideas with investors
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/napkins
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to a .env file")
	flag.Parse()

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment file: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("napkins")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health
	health := &handlers.HealthHandler{DB: db, Config: cfg}
	app.Get("/healthz", health.Health)

	// Identity sources
	var verifier *auth.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewTokenVerifier(cfg.JWTSecret)
	}
	var sessions middleware.SessionValidator
	if cfg.AuthzURL != "" {
		sessions = middleware.AuthorizerSessions(cfg)
		log.Printf("Authorizer will be initialized on first session request")
	}

	limiter := middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitBurst, time.Minute)
	defer limiter.Stop()

	// API routes under /api
	api := app.Group("/api",
		middleware.VersionMiddleware(),
		middleware.RequestContext(cfg.RequestTimeout),
		middleware.Authenticate(verifier, sessions),
	)
	handlers.Routes(api, db, middleware.RateLimit(limiter))

	// 404 handler
	app.Use(handlers.NotFound)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
