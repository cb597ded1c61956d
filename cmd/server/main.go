package main

import (
	"fmt"
	"log"
	"net/http"

	"afftrack/internal/config"
	"afftrack/internal/handlers"
	"afftrack/internal/middleware"
	"afftrack/internal/repositories/mongodb"
	"afftrack/internal/services"
	"afftrack/pkg/cache"
	"afftrack/pkg/database"
	"afftrack/pkg/logger"
	"afftrack/pkg/payout"
	"afftrack/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Storage
	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close()

	// Index migrations carry the uniqueness guarantees conversions and
	// referral codes depend on; refusing to start without them is safer
	// than running unprotected.
	if err := database.NewMigrator(mongoDB.Database).Up(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	cacheService := services.NewCacheService(redisCache)

	// Repositories
	affiliateRepo := mongodb.NewAffiliateRepository(mongoDB.Database, cacheService)
	applicationRepo := mongodb.NewApplicationRepository(mongoDB.Database)
	clickRepo := mongodb.NewClickRepository(mongoDB.Database)
	conversionRepo := mongodb.NewConversionRepository(mongoDB.Database)
	settlementRepo := mongodb.NewSettlementRepository(mongoDB.Database)

	// Services
	payoutProvider := payout.NewStripeProvider(cfg.Payout.StripeSecretKey)

	registryService := services.NewRegistryService(affiliateRepo, cacheService, cfg.Affiliate, appLogger)
	trackingService := services.NewTrackingService(affiliateRepo, clickRepo, conversionRepo, appLogger)
	attributionService := services.NewAttributionService(registryService, trackingService, cfg.Affiliate, appLogger)
	settlementService := services.NewSettlementService(settlementRepo, conversionRepo, affiliateRepo, payoutProvider, appLogger)
	applicationService := services.NewApplicationService(applicationRepo, affiliateRepo, registryService, cfg.Affiliate, appLogger)
	affiliateService := services.NewAffiliateService(affiliateRepo, conversionRepo, appLogger)
	statsService := services.NewStatsService(affiliateRepo, clickRepo, conversionRepo, appLogger)

	// Handlers
	attributionHandler := handlers.NewAttributionHandler(attributionService, cfg.Affiliate)
	trackingHandler := handlers.NewTrackingHandler(trackingService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	affiliateHandler := handlers.NewAffiliateHandler(affiliateService, registryService, settlementService, statsService)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAffiliateRoutes(
			v1,
			cfg.Security,
			attributionHandler,
			trackingHandler,
			settlementHandler,
			applicationHandler,
			affiliateHandler,
		)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.Infof("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
