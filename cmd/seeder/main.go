package main

import (
	"context"
	"log"

	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/database"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"github.com/alexivanou/weather-dashboard/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Ensure the schema exists before importing
	if err := database.Migrate(db, cfg.DB); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Starting data import...", zap.String("data_dir", cfg.Seeder.DataDir))

	repos := repository.NewRepositories(db, cfg.DB.Type)
	total, err := seeder.Run(ctx, seeder.NewParser(cfg.Seeder), repos.City, logger)
	if err != nil {
		logger.Fatal("Data import failed", zap.Error(err), zap.Int("cities", total))
	}

	count, err := repos.City.CountCities(ctx)
	if err != nil {
		logger.Warn("Failed to count cities", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("imported", total),
		zap.Int64("cities", count),
	)
}
