package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/weather-dashboard/internal/api"
	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/database"
	"github.com/alexivanou/weather-dashboard/internal/geo"
	"github.com/alexivanou/weather-dashboard/internal/metrics"
	"github.com/alexivanou/weather-dashboard/internal/owm"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"github.com/alexivanou/weather-dashboard/internal/seeder"
	"github.com/alexivanou/weather-dashboard/internal/service"
	"github.com/alexivanou/weather-dashboard/internal/stats"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const cacheSweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	m := metrics.New()
	client := owm.NewClient(cfg.Upstream, logger, m)
	if cfg.Upstream.APIKey == "" {
		logger.Warn("OWM_API_KEY is not set, upstream requests will be rejected")
	}

	geocoder, err := newGeocoder(ctx, db, repos, cfg, client, logger)
	if err != nil {
		logger.Fatal("Failed to initialize geocoder", zap.Error(err))
	}

	weather := service.NewWeatherService(client, repos.QueryLog, cfg.Weather, logger)
	suggestions := service.NewSuggestService(geocoder, cfg.Suggest, logger, m)
	svc := service.NewService(
		weather,
		suggestions,
		service.NewFavoritesService(repos.Favorite),
		service.NewAnalyticsService(repos.QueryLog),
	)

	statsCollector := stats.NewCollector(db, cfg.DB)
	statsCollector.TrackCache("weather", weather.CacheLen)
	statsCollector.TrackCache("suggestions", suggestions.CacheLen)

	router := api.NewRouter(svc, statsCollector, m, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go sweepCaches(ctx, logger, weather, suggestions)

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited")
}

// newGeocoder returns the OpenWeatherMap client or, when configured, the
// local GeoNames index, seeding the cities table first if it is empty
func newGeocoder(
	ctx context.Context,
	db *sqlx.DB,
	repos *repository.Container,
	cfg *config.Config,
	client *owm.Client,
	logger *zap.Logger,
) (service.Geocoder, error) {
	if cfg.Upstream.Geocoder != config.GeocoderLocal {
		logger.Info("Using OpenWeatherMap geocoding")
		return client, nil
	}

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if isEmpty {
		logger.Info("Cities table is empty, auto-seeding data...")
		total, err := seeder.Run(ctx, seeder.NewParser(cfg.Seeder), repos.City, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to auto-seed database: %w", err)
		}
		logger.Info("Database seeded successfully", zap.Int("cities", total))
	}

	index, err := geo.Load(ctx, repos.City)
	if err != nil {
		return nil, err
	}
	logger.Info("Using local geocoder", zap.Int("cities", index.Len()))
	return index, nil
}

type expirer interface {
	ClearExpired() int
}

func sweepCaches(ctx context.Context, logger *zap.Logger, caches ...expirer) {
	ticker := time.NewTicker(cacheSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := 0
			for _, c := range caches {
				removed += c.ClearExpired()
			}
			if removed > 0 {
				logger.Debug("Swept expired cache entries", zap.Int("removed", removed))
			}
		}
	}
}
