package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Upstream  UpstreamConfig
	Suggest   SuggestConfig
	Weather   WeatherConfig
	Seeder    SeederConfig
	Dashboard DashboardConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
	DBTypeSQLite     DBType = "sqlite"
)

// GeocoderType selects where city suggestions and reverse geocoding come from
type GeocoderType string

const (
	GeocoderOWM   GeocoderType = "owm"
	GeocoderLocal GeocoderType = "local"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path is the database file used when Type is DBTypeSQLite
	Path string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// UpstreamConfig holds OpenWeatherMap settings
type UpstreamConfig struct {
	APIKey   string
	BaseURL  string
	GeoURL   string
	Timeout  time.Duration
	Geocoder GeocoderType
}

// SuggestConfig tunes the suggestion pipeline
type SuggestConfig struct {
	HomeCountry      string
	CacheTTL         time.Duration
	CacheMaxEntries  int
	ThrottleInterval time.Duration
	MaxResults       int
	MaxPerCountry    int
	UpstreamLimit    int
}

// WeatherConfig holds cache lifetimes for weather payloads
type WeatherConfig struct {
	CurrentTTL  time.Duration
	ForecastTTL time.Duration
	DefaultUnit string
}

// SeederConfig holds settings for data import
type SeederConfig struct {
	DataDir       string
	BatchSize     int
	MinPopulation int
}

// DashboardConfig holds settings for the terminal client
type DashboardConfig struct {
	BackendURL string
	PrefsPath  string
	Language   string
	Timeout    time.Duration
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		// SQLite in-memory database
		if c.Name != "" && c.Name != "weather" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	case DBTypeSQLite:
		return fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", c.Path)
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// IsSQLite returns true for both in-memory and file backed SQLite
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeMemory || c.Type == DBTypeSQLite
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory && dbType != DBTypeSQLite {
		dbType = DBTypeMemory
	}

	geocoder := GeocoderType(getEnv("GEOCODER", string(GeocoderOWM)))
	if geocoder != GeocoderOWM && geocoder != GeocoderLocal {
		geocoder = GeocoderOWM
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "weather"),
			Password: getEnv("DB_PASSWORD", "weather_password"),
			Name:     getEnv("DB_NAME", "weather"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "weather.db"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			APIKey:   getEnv("OWM_API_KEY", ""),
			BaseURL:  getEnv("OWM_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			GeoURL:   getEnv("OWM_GEO_URL", "https://api.openweathermap.org/geo/1.0"),
			Timeout:  getEnvAsSeconds("OWM_TIMEOUT_SECONDS", 10),
			Geocoder: geocoder,
		},
		Suggest: SuggestConfig{
			HomeCountry:      strings.ToUpper(getEnv("SUGGEST_HOME_COUNTRY", "NO")),
			CacheTTL:         getEnvAsMillis("SUGGEST_CACHE_TTL_MS", 600000),
			CacheMaxEntries:  getEnvAsInt("SUGGEST_CACHE_MAX_ENTRIES", 15),
			ThrottleInterval: getEnvAsMillis("SUGGEST_THROTTLE_MS", 500),
			MaxResults:       getEnvAsInt("SUGGEST_MAX_RESULTS", 8),
			MaxPerCountry:    getEnvAsInt("SUGGEST_MAX_PER_COUNTRY", 2),
			UpstreamLimit:    getEnvAsInt("SUGGEST_UPSTREAM_LIMIT", 25),
		},
		Weather: WeatherConfig{
			CurrentTTL:  getEnvAsSeconds("WEATHER_CACHE_TTL_SECONDS", 300),
			ForecastTTL: getEnvAsSeconds("FORECAST_CACHE_TTL_SECONDS", 1800),
			DefaultUnit: getEnv("WEATHER_DEFAULT_UNIT", "metric"),
		},
		Seeder: SeederConfig{
			DataDir:       getEnv("SEEDER_DATA_DIR", "data"),
			BatchSize:     getEnvAsInt("SEEDER_BATCH_SIZE", 1000),
			MinPopulation: getEnvAsInt("SEEDER_MIN_POPULATION", 15000),
		},
		Dashboard: DashboardConfig{
			BackendURL: strings.TrimRight(getEnv("DASHBOARD_BACKEND_URL", "http://localhost:8080"), "/"),
			PrefsPath:  getEnv("DASHBOARD_PREFS_PATH", "dashboard.db"),
			Language:   getEnv("DASHBOARD_LANGUAGE", "no"),
			Timeout:    getEnvAsSeconds("DASHBOARD_TIMEOUT_SECONDS", 10),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Second
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}
