package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"storefront-catalog/internal/cache"
	"storefront-catalog/internal/config"
	"storefront-catalog/internal/database"
	"storefront-catalog/internal/handlers"
	"storefront-catalog/internal/middleware"
	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/routes"
	"storefront-catalog/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg)
	log.Info().Str("env", cfg.Env).Msg("🚀 starting storefront catalog")

	client, err := database.Connect(&cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()
	db := client.Database(cfg.Mongo.Database)

	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("✅ mongo connected, indexes ready")

	store, err := newCacheStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cache initialization failed")
	}
	defer store.Close()

	repo := repository.NewProductRepository(db.Collection(database.ProductsCollection))
	svc := service.NewProductService(repo, cache.NewProductCache(store, cfg.Cache.TTL))

	productHandler := handlers.NewProductHandler(svc, cfg.RequestTimeout)
	healthHandler := handlers.NewHealthHandler(func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	routes.RegisterRoutes(router, productHandler, healthHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

// newCacheStore elige el backend de caché según CACHE_DRIVER
func newCacheStore(cfg *config.Config) (cache.Store, error) {
	if cfg.Cache.Driver == config.CacheDriverRedis {
		store, err := cache.NewRedisStore(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		log.Info().Str("host", cfg.Redis.Host).Msg("✅ redis cache connected")
		return store, nil
	}
	log.Info().Msg("✅ in-memory cache enabled")
	return cache.NewMemoryStore(time.Minute), nil
}

func setupLogger(cfg *config.Config) {
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}
