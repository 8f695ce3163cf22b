package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/alexivanou/weather-dashboard/internal/config"
	"github.com/alexivanou/weather-dashboard/internal/database"
	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/repository"
	"github.com/alexivanou/weather-dashboard/internal/service"
	"github.com/alexivanou/weather-dashboard/internal/stats"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// report is what the tool prints: the weather query log first, storage and
// process figures after it
type report struct {
	GeneratedAt   time.Time           `json:"generated_at"`
	Queries       model.QueryStats    `json:"queries"`
	PopularCities []model.PopularCity `json:"popular_cities"`
	Storage       stats.DatabaseStats `json:"storage"`
	Memory        stats.MemoryStats   `json:"memory"`
}

func main() {
	format := flag.String("format", getEnvDefault("OUTPUT_FORMAT", "text"), "output format: text or json")
	top := flag.Int("top", 10, "number of popular cities to list")
	flag.Parse()

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

	repos := repository.NewRepositories(db, cfg.DB.Type)
	r, err := buildReport(ctx, stats.NewCollector(db, cfg.DB), service.NewAnalyticsService(repos.QueryLog), *top)
	if err != nil {
		logger.Fatal("Failed to build report", zap.Error(err))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	case "text", "human":
		writeText(os.Stdout, r)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
	if err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}
}

func buildReport(ctx context.Context, collector *stats.Collector, analytics *service.AnalyticsService, top int) (*report, error) {
	summary, err := analytics.Summary(ctx)
	if err != nil {
		return nil, err
	}
	popular, err := analytics.PopularCities(ctx, top)
	if err != nil {
		return nil, err
	}
	s, err := collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect statistics: %w", err)
	}

	return &report{
		GeneratedAt:   s.Timestamp,
		Queries:       summary.Stats,
		PopularCities: popular,
		Storage:       s.Database,
		Memory:        s.Memory,
	}, nil
}

func writeText(w io.Writer, r *report) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Weather queries (%s)\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	p.Fprintf(w, "  total:          %d\n", r.Queries.TotalQueries)
	p.Fprintf(w, "  avg response:   %.1f ms\n", r.Queries.AvgResponseTime)

	endpoints := make([]string, 0, len(r.Queries.Endpoints))
	for name := range r.Queries.Endpoints {
		endpoints = append(endpoints, name)
	}
	sort.Strings(endpoints)
	for _, name := range endpoints {
		p.Fprintf(w, "  %-17s %d\n", name+":", r.Queries.Endpoints[name])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Popular cities")
	if len(r.PopularCities) == 0 {
		fmt.Fprintln(w, "  none yet")
	}
	for i, c := range r.PopularCities {
		p.Fprintf(w, "  %2d. %-24s %d\n", i+1, c.City, c.Count)
	}

	fmt.Fprintln(w)
	p.Fprintf(w, "Storage (%s)\n", r.Storage.Type)
	p.Fprintf(w, "  tracked cities: %d\n", r.Storage.TrackedCities)
	for _, ts := range r.Storage.TableStats {
		p.Fprintf(w, "  %-15s %d rows\n", ts.Name+":", ts.RowCount)
	}
	if r.Storage.SizeBytes > 0 {
		p.Fprintf(w, "  size:           %.1f MiB\n", float64(r.Storage.SizeBytes)/(1<<20))
	}

	fmt.Fprintln(w)
	p.Fprintf(w, "Heap in use: %.1f MiB\n", float64(r.Memory.HeapInuse)/(1<<20))
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
