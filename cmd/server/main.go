package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harvestlink/harvest-market/internal/cache"
	"github.com/harvestlink/harvest-market/internal/client"
	"github.com/harvestlink/harvest-market/internal/config"
	"github.com/harvestlink/harvest-market/internal/db"
	"github.com/harvestlink/harvest-market/internal/discovery"
	"github.com/harvestlink/harvest-market/internal/handlers"
	"github.com/harvestlink/harvest-market/internal/messaging"
	"github.com/harvestlink/harvest-market/internal/middleware"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/harvestlink/harvest-market/internal/publisher"
	"github.com/harvestlink/harvest-market/internal/service"
)

const (
	serviceName = "harvest-market"
	serviceID   = "harvest-market-1"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Connect to PostgreSQL and run migrations
	database, err := db.NewPostgresDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to Redis
	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Connect to RabbitMQ
	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPass)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}
	defer rabbitMQ.Close()

	events, err := publisher.NewEventPublisher(rabbitMQ)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create event publisher")
	}

	// Register with Consul
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatal().Str("port", cfg.Port).Msg("PORT must be numeric")
	}

	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Consul")
	}
	if err := consul.Register(discovery.ServiceConfig{
		Name: serviceName,
		ID:   serviceID,
		Port: port,
		Tags: []string{"api", "marketplace"},
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register service")
	}

	// Repositories
	productRepo := db.NewProductRepository(database)
	cachedProducts := db.NewCachedProductRepository(productRepo, redisCache)
	orderRepo := db.NewOrderRepository(database)
	negotiationRepo := db.NewNegotiationRepository(database)
	marketRepo := db.NewMarketPriceRepository(database)
	contactRepo := db.NewContactRepository(database)
	impactRepo := db.NewImpactRepository(database)

	// Services. Order and negotiation pricing read through the plain product
	// repository so snapshots never come from cache.
	orderService := service.NewOrderService(productRepo, orderRepo, events)
	negotiationService := service.NewNegotiationService(productRepo, negotiationRepo, events)

	// Handlers
	productHandler := handlers.NewProductHandler(productRepo, cachedProducts)
	orderHandler := handlers.NewOrderHandler(orderService)
	negotiationHandler := handlers.NewNegotiationHandler(negotiationService)
	marketHandler := handlers.NewMarketHandler(marketRepo, client.NewMarketClient("", cfg.DataGovAPIKey))
	contactHandler := handlers.NewContactHandler(contactRepo)
	impactHandler := handlers.NewImpactHandler(impactRepo)

	auth := middleware.NewAuth(cfg.JWTSecret)

	router := gin.Default()
	router.GET("/health", handlers.Health)

	api := router.Group("/api")
	{
		// Public catalog and market data
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/market/prices", marketHandler.GetPrices)
		api.GET("/market/prices/india", marketHandler.GetIndiaPrices)
		api.GET("/market/prices/latest/:productName", marketHandler.GetLatestPrice)
		api.GET("/impact", impactHandler.GetStories)

		// Contact intake is public; a valid token attaches the sender
		api.POST("/contact", auth.Optional(), contactHandler.CreateContact)
	}

	authed := api.Group("", auth.Required())
	{
		// Orders
		authed.POST("/orders", orderHandler.CreateOrder)
		authed.GET("/orders", orderHandler.GetMyOrders)
		authed.GET("/orders/:id", orderHandler.GetOrder)
		authed.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
		authed.GET("/farmer/orders", orderHandler.GetOrdersForFarmer)

		// Negotiations
		authed.POST("/negotiations/product/:productId", negotiationHandler.StartNegotiation)
		authed.GET("/negotiations/product/:productId", negotiationHandler.GetNegotiationsByProduct)
		authed.POST("/negotiations/:id/messages", negotiationHandler.PostMessage)
		authed.POST("/negotiations/:id/accept", negotiationHandler.AcceptNegotiation)
		authed.POST("/negotiations/:id/reject", negotiationHandler.RejectNegotiation)

		// Impact stories
		authed.POST("/impact", impactHandler.CreateStory)
	}

	farmer := api.Group("", auth.Required(), middleware.RequireRoles(models.RoleFarmer, models.RoleAdmin))
	{
		farmer.POST("/products", productHandler.CreateProduct)
		farmer.PUT("/products/:id", productHandler.UpdateProduct)
		farmer.DELETE("/products/:id", productHandler.DeleteProduct)
		farmer.GET("/farmer/products", productHandler.GetMyProducts)
	}

	admin := api.Group("", auth.Required(), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/market/prices", marketHandler.UploadPrice)
		admin.GET("/contact", contactHandler.GetContacts)
		admin.GET("/contact/:id", contactHandler.GetContact)
		admin.PATCH("/contact/:id/status", contactHandler.UpdateContactStatus)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("🚀 Harvest Market API starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down...")
	consul.Deregister(serviceID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}
