package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/ediwnll/urlshortener/pkg/shortener/admin"
	"github.com/ediwnll/urlshortener/pkg/shortener/analytics"
	"github.com/ediwnll/urlshortener/pkg/shortener/auth"
	"github.com/ediwnll/urlshortener/pkg/shortener/config"
	"github.com/ediwnll/urlshortener/pkg/shortener/database"
	"github.com/ediwnll/urlshortener/pkg/shortener/links"
	"github.com/ediwnll/urlshortener/pkg/shortener/models"
	"github.com/ediwnll/urlshortener/pkg/shortener/redirect"

	_ "github.com/ediwnll/urlshortener/api/swagger"
)

// @title URL Shortener API
// @version 1.0
// @description A URL shortening service with expiring links and click analytics.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339

	cfg := config.Load()
	auth.SetSecret(cfg.JWTSecret)

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to connect to database")
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations completed")

	// Create default admin user if no admin exists
	if err := ensureAdminExists(db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin user exists")
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "urlshortener",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Link management routes (public: creation and lookup need no account)
		linksHandler := links.NewHandler(db, cfg)
		linksHandler.RegisterRoutes(api.Group(""))

		// Analytics routes (public)
		analyticsHandler := analytics.NewHandler(db)
		analyticsHandler.RegisterRoutes(api.Group(""))

		// Admin routes (JWT only, admin role required)
		adminHandler := admin.NewHandler(db)
		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.AuthMiddleware(), auth.RequireAdmin())
		adminHandler.RegisterRoutes(adminGroup)
	}

	// Redirect routes (public, must be registered LAST to avoid conflicts)
	redirectHandler := redirect.NewHandler(db)
	redirectHandler.RegisterRoutes(r)

	log.Info().Str("port", cfg.Port).Msg("starting urlshortener server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// ensureAdminExists creates a default admin user if no admin exists in the
// database. Credentials must be rotated after first login.
func ensureAdminExists(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	adminUser := models.User{
		Email:        "admin@urlshortener.local",
		Name:         "Admin",
		PasswordHash: hashedPassword,
		SystemRole:   models.SystemRoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Info().Str("email", adminUser.Email).Msg("created default admin user (password: changeme)")
	return nil
}
