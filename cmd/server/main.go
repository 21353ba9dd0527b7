package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/medipos/apotek-backend/internal/auth"
	"github.com/medipos/apotek-backend/internal/catalog"
	"github.com/medipos/apotek-backend/internal/inventory"
	"github.com/medipos/apotek-backend/internal/reports"
	"github.com/medipos/apotek-backend/internal/sale"
	"github.com/medipos/apotek-backend/internal/store"
	"github.com/medipos/apotek-backend/pkg/database"
	"github.com/medipos/apotek-backend/pkg/logger"
	"github.com/medipos/apotek-backend/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	logger.Init()

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if csvPath := os.Getenv("MEDICINE_CATALOG_CSV"); csvPath != "" {
		database.SeedMedicines(db, csvPath)
	}

	// Catalog searches go through Redis when configured, a no-op cache otherwise
	var searchCache catalog.SearchCache = catalog.NoopSearchCache{}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisCache := catalog.NewRedisSearchCache(redisAddr, os.Getenv("REDIS_PASSWORD"), 0)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, catalog caching disabled")
		} else {
			searchCache = redisCache
			defer redisCache.Close()
		}
	}

	r := gin.New()
	r.Use(logger.RequestLogger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// Auth routes (public, rate limited)
		authHandler := auth.NewHandler(db)
		authRoutes := v1.Group("/auth")
		authRoutes.Use(middleware.RateLimit("10-M"))
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.RefreshToken)

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", authHandler.GetMe)

			// Store setup
			storeHandler := store.NewHandler(db)
			protected.POST("/stores", storeHandler.Create)
			protected.GET("/stores/me", storeHandler.GetMine)
			protected.PUT("/stores/me", storeHandler.UpdateMine)

			// Master catalog lookup
			catalogHandler := catalog.NewHandler(db, searchCache)
			protected.GET("/medicines", catalogHandler.Search)

			// Inventory
			inventoryHandler := inventory.NewHandler(db)
			protected.GET("/inventory", inventoryHandler.List)
			protected.GET("/inventory/alerts", inventoryHandler.GetAlerts)
			protected.PUT("/inventory/:id/stock", inventoryHandler.UpdateStock)

			importHandler := inventory.NewImportHandler(db)
			protected.POST("/inventory/import", importHandler.Import)
			protected.GET("/inventory/import/template", importHandler.DownloadTemplate)

			// Sales
			saleHandler := sale.NewHandler(db)
			protected.POST("/sales", saleHandler.Create)
			protected.GET("/sales", saleHandler.List)
			protected.GET("/sales/:id", saleHandler.Get)

			// Reports
			reportsHandler := reports.NewHandler(db)
			protected.GET("/reports/sales", reportsHandler.GetSalesReport)
			protected.GET("/reports/summary", reportsHandler.GetSummary)
			protected.GET("/activity-logs", reportsHandler.ListActivityLogs)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("Server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
