package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"go.uber.org/zap"
)

// Run imports admin regions and cities into the repository
func Run(ctx context.Context, parser *Parser, repo repository.CityRepository, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Parsing admin regions...")
	regions, err := parser.ParseAdmin1()
	if err != nil {
		return 0, fmt.Errorf("failed to parse admin regions: %w", err)
	}
	logger.Info("Admin regions loaded", zap.Int("regions", len(regions)))

	logger.Info("Inserting cities...")
	total, err := parser.ProcessCities(regions, func(batch []model.City) error {
		if err := repo.BulkInsertCities(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert cities batch: %w", err)
		}
		logger.Debug("Inserted batch", zap.Int("size", len(batch)))
		return nil
	})
	if err != nil {
		return total, err
	}

	return total, nil
}
