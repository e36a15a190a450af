package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"khavho-commerce/internal/cart"
	"khavho-commerce/internal/catalog"
	"khavho-commerce/internal/config"
	custommiddleware "khavho-commerce/internal/middleware"
	"khavho-commerce/internal/repository"
	"khavho-commerce/internal/service"
	"khavho-commerce/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      *sql.DB
	redis   *redis.Client
	catalog *catalog.Cache
	cancel  context.CancelFunc
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	// Redis backs both cart persistence and rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	adRepo := repository.NewFloatingAdRepository(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Catalog cache: loaded once up front, then refreshed on a timer and
	// after every admin product write.
	catalogCache := catalog.NewCache(productRepo, logger)
	ctx, cancel := context.WithCancel(context.Background())
	if err := catalogCache.Load(ctx); err != nil {
		// The storefront starts degraded and recovers on the next refresh.
		logger.Warn("Initial catalog load failed", zap.Error(err))
	}
	catalogCache.Start(ctx, time.Duration(cfg.Catalog.RefreshInterval)*time.Second)

	// Cart store on top of redis persistence
	cartRepo := cart.NewRedisRepository(redisClient, cfg.Cart.KeyPrefix)
	cartStore := cart.NewStore(cartRepo, catalogCache, cfg.Cart.TaxRate, logger)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	messageService := service.NewMessageService(messageRepo)
	adminService := service.NewAdminService(productRepo, adRepo, orderRepo, messageRepo, userRepo, catalogCache, logger)
	checkoutService := service.NewCheckoutService(cartStore, orderRepo)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogCache, adminService, logger)
	cartHandler := transport.NewCartHandler(cartStore, checkoutService, logger)
	contactHandler := transport.NewContactHandler(messageService, logger)
	adminHandler := transport.NewAdminHandler(adminService, messageService, logger)

	// Create middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminOnly := custommiddleware.RequireAdmin(logger)
	contactRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit:contact",
	}, logger)

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":         "ok",
			"catalog_loaded": catalogCache.Loaded(),
		})
	})

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware)
	catalogHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)
	contactHandler.RegisterRoutes(router, contactRateLimit)
	adminHandler.RegisterRoutes(router, authMiddleware, adminOnly)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		db:      db,
		redis:   redisClient,
		catalog: catalogCache,
		cancel:  cancel,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Stop the catalog refresh loop
	s.cancel()

	// Close redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
