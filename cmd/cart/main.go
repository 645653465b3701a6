package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"gorm.io/gorm"

	httpDelivery "github.com/saulet/grocery-compare/internal/cart/delivery/http"
	"github.com/saulet/grocery-compare/internal/cart/domain"
	"github.com/saulet/grocery-compare/internal/cart/reconcile"
	"github.com/saulet/grocery-compare/internal/cart/repository"
	catalogdomain "github.com/saulet/grocery-compare/internal/catalog/domain"
	catalogrepo "github.com/saulet/grocery-compare/internal/catalog/repository"
	"github.com/saulet/grocery-compare/kafka"
	"github.com/saulet/grocery-compare/pkg/database"
	"github.com/saulet/grocery-compare/pkg/logger"
	"github.com/saulet/grocery-compare/pkg/notify"
	"github.com/saulet/grocery-compare/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "cart-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting cart service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Connect to database. An unreachable database is not fatal here:
	// sessions start on the local fallback and the service stays up.
	db, sqlDB := connectDatabase()
	if sqlDB != nil {
		defer sqlDB.Close()
	}

	// Catalog resolves product snapshots for cart rows
	catalog := buildCatalog(db)

	// Primary backend (remote, database-backed)
	var primary domain.Backend
	if db != nil {
		primary = repository.NewBackendWithTracing(repository.NewGormBackend(db))
	}

	// Fallback backend (local, file-backed)
	stateDir := getEnv("GROCERY_STATE_DIR", "./data/cart-state")
	fallback := repository.NewBackendWithTracing(repository.NewLocalBackend(stateDir))

	// Notifiers fan out store favorite changes
	notifier, redisClient, publisher := buildNotifiers()
	if publisher != nil {
		defer publisher.Close()
	}

	// Session manager
	manager := reconcile.NewManager(reconcile.ManagerConfig{
		Primary:  primary,
		Fallback: fallback,
		Catalog:  catalog,
		Notifier: notifier,
	})
	defer manager.Close()

	// Cross-instance invalidation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startInvalidationConsumers(ctx, manager, redisClient)

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8084")
	server := startHTTPServer(manager, sqlDB, httpPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Logger.Info().Msg("Cart service stopped")
}

func connectDatabase() (*gorm.DB, *sql.DB) {
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "grocerydb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("host", dbConfig.Host).
			Msg("Database unreachable - running on local fallback only")
		return nil, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to get database instance")
		return nil, nil
	}

	if err := db.AutoMigrate(
		&domain.Favorite{},
		&domain.ProductFavorite{},
		&domain.StoreFavorite{},
		&domain.CartItem{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")
	return db, sqlDB
}

func buildCatalog(db *gorm.DB) catalogdomain.Catalog {
	if getEnv("CATALOG_MODE", "db") == "demo" || db == nil {
		logger.Logger.Info().Msg("Using built-in demo catalog")
		return catalogrepo.NewDemoCatalog()
	}

	catalog := catalogrepo.NewGormCatalog(db)
	if err := catalog.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run catalog migrations")
	}
	return catalog
}

// buildNotifiers assembles the notifier chain from whatever transports
// are configured. Redis and Kafka are both optional.
func buildNotifiers() (notify.Notifier, *redis.Client, *kafka.Publisher) {
	var notifiers notify.Multi

	var redisClient *redis.Client
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Warn().
				Err(err).
				Str("redis_addr", redisAddr).
				Msg("Failed to connect to Redis - pub/sub notifications disabled")
			redisClient = nil
		} else {
			logger.Logger.Info().
				Str("redis_addr", redisAddr).
				Msg("Connected to Redis for pub/sub notifications")
			notifiers = append(notifiers, notify.NewRedisNotifier(redisClient))
		}
	}

	var publisher *kafka.Publisher
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		var err error
		publisher, err = kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Warn().
				Err(err).
				Str("brokers", brokers).
				Msg("Failed to connect to Kafka - event publishing disabled")
		} else {
			notifiers = append(notifiers, kafka.NewNotifier(publisher))
		}
	}

	if len(notifiers) == 0 {
		return nil, redisClient, publisher
	}
	return notifiers, redisClient, publisher
}

// startInvalidationConsumers drops in-memory sessions when another
// instance announces a change, so the next read reloads fresh state.
func startInvalidationConsumers(ctx context.Context, manager *reconcile.Manager, redisClient *redis.Client) {
	if redisClient != nil {
		notify.SubscribeStoreFavorites(ctx, redisClient, func(userID string) {
			manager.Invalidate(userID)
		})
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		groupID := getEnv("KAFKA_GROUP_ID", "cart-service")
		consumer, err := kafka.NewConsumer(strings.Split(brokers, ","), groupID, []string{kafka.TopicCartStateChanged})
		if err != nil {
			logger.Logger.Warn().
				Err(err).
				Msg("Failed to create Kafka consumer - cross-instance invalidation disabled")
			return
		}

		invalidate := func(ctx context.Context, event kafka.StateChangedEvent) error {
			manager.Invalidate(event.UserID)
			return nil
		}
		consumer.RegisterHandler(kafka.EventTypeStoreFavoritesChanged, invalidate)
		consumer.RegisterHandler(kafka.EventTypeCartCleared, invalidate)

		if err := consumer.Start(ctx); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
		}

		go func() {
			<-ctx.Done()
			consumer.Close()
		}()
	}
}

func startHTTPServer(manager *reconcile.Manager, sqlDB *sql.DB, port string) *http.Server {
	handler := httpDelivery.NewCartHandler(manager)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":  "healthy",
			"service": "cart-service",
		}

		if sqlDB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				status["database"] = "unreachable"
			} else {
				status["database"] = "ok"
			}
		} else {
			status["database"] = "disabled"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}).Methods(http.MethodGet)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: c.Handler(router),
	}

	go func() {
		logger.Logger.Info().
			Str("port", port).
			Msg("HTTP server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	return server
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
