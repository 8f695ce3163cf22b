package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexivanou/weather-dashboard/internal/client"
	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/dashboard"
	"github.com/alexivanou/weather-dashboard/internal/database"
	"github.com/alexivanou/weather-dashboard/internal/prefs"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"github.com/alexivanou/weather-dashboard/internal/suggest"
	"go.uber.org/zap"
)

func main() {
	var (
		lang    = flag.String("lang", "", "Alert language: no or en (default from DASHBOARD_LANGUAGE)")
		verbose = flag.Bool("v", false, "Log debug output to stderr")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *lang != "" {
		cfg.Dashboard.Language = *lang
	}

	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if *verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prefsDB := config.DBConfig{Type: config.DBTypeSQLite, Path: cfg.Dashboard.PrefsPath}
	db, err := database.Connect(ctx, prefsDB)
	if err != nil {
		logger.Fatal("Failed to open preferences", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db, prefsDB); err != nil {
		logger.Fatal("Failed to prepare preferences", zap.Error(err))
	}
	repos := repository.NewRepositories(db, prefsDB.Type)

	backend := client.New(cfg.Dashboard, logger)
	suggester := suggest.New(
		backend,
		suggest.NewRanker(cfg.Suggest.HomeCountry, cfg.Suggest.MaxPerCountry, cfg.Suggest.MaxResults),
		suggest.Options{
			CacheTTL:         cfg.Suggest.CacheTTL,
			CacheMaxEntries:  cfg.Suggest.CacheMaxEntries,
			ThrottleInterval: cfg.Suggest.ThrottleInterval,
			Logger:           logger,
		},
	)

	presenter := dashboard.NewTerminalPresenter(os.Stdout, dashboard.MessagesFor(cfg.Dashboard.Language))
	orchestrator := dashboard.NewOrchestrator(backend, presenter, cfg.Dashboard.Language, logger)
	app := dashboard.NewApp(
		orchestrator,
		suggester,
		prefs.NewFavorites(repos.Prefs, logger),
		prefs.NewHistory(repos.Prefs, logger),
		presenter,
		logger,
	)

	if err := app.Run(ctx, os.Stdin); err != nil {
		logger.Fatal("Dashboard stopped", zap.Error(err))
	}
}
