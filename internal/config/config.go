package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetPath string
	OutputDir   string
	SQLitePath  string
	HTTPAddr    string
	LogLevel    string
	LogFormat   string

	ShutdownTimeout time.Duration

	// Open-Meteo weather and geocoding configuration.
	ForecastBaseURL  string
	GeocodingBaseURL string
	WeatherTimeout   time.Duration
	ForecastDays     int
	GeocodeCacheSize int

	// Kafka document sink configuration.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged in first; a
// missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	forecastDays, err := parsePositiveInt("FORECAST_DAYS", 15)
	if err != nil {
		return nil, err
	}
	if forecastDays > 16 {
		return nil, errors.New("FORECAST_DAYS must be at most 16")
	}

	cacheSize, err := parsePositiveInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(envOrDefault("KAFKA_BROKERS", ""))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DatasetPath: envOrDefault("DATASET_PATH", "data/EcoCrop_DB.xlsx"),
		OutputDir:   envOrDefault("OUTPUT_DIR", "output"),
		SQLitePath:  envOrDefault("SQLITE_PATH", "output/ecocrop.db"),
		HTTPAddr:    envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "json"),

		ShutdownTimeout: shutdownTimeout,

		ForecastBaseURL:  envOrDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		GeocodingBaseURL: envOrDefault("GEOCODING_BASE_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		WeatherTimeout:   weatherTimeout,
		ForecastDays:     forecastDays,
		GeocodeCacheSize: cacheSize,

		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "plant-documents"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
