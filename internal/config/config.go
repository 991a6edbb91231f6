package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	MongoURI        string        `validate:"required"`
	HTTPAddr        string        `validate:"required"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	LogFormat       string        `validate:"oneof=json text"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// Incident collection.
	ArcGISBaseURL string        `validate:"required,url"`
	ArcGISTimeout time.Duration `validate:"gt=0"`
	YearStart     int           `validate:"gte=2002,lte=2018"`
	YearEnd       int           `validate:"gte=2002,lte=2018,gtefield=YearStart"`

	// Climate collection.
	DarkSkyAPIKey  string
	DarkSkyBaseURL string        `validate:"required,url"`
	DarkSkyTimeout time.Duration `validate:"gt=0"`

	ClimateInterval string `validate:"oneof=hourly daily"`
	ClimateUnits    int    `validate:"gt=0"`
	ClimateLimit    int    `validate:"gt=0"`

	// Feature building.
	CombineProps []string

	// Training filter.
	TrainingState string

	// Optional standardized-event sink.
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from the environment (and a .env file when
// present), applying defaults where unset and validating the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := durationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	arcgisTimeout, err := durationOrDefault("ARCGIS_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	darkskyTimeout, err := durationOrDefault("DARKSKY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	yearStart, err := intOrDefault("YEAR_START", 2002)
	if err != nil {
		return nil, err
	}
	yearEnd, err := intOrDefault("YEAR_END", 2018)
	if err != nil {
		return nil, err
	}
	climateUnits, err := intOrDefault("CLIMATE_UNITS", 336)
	if err != nil {
		return nil, err
	}
	climateLimit, err := intOrDefault("CLIMATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MongoURI:        envOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ArcGISBaseURL: envOrDefault("ARCGIS_BASE_URL", "https://wildfire.cr.usgs.gov/ArcGIS/rest/services/geomac_dyn/MapServer"),
		ArcGISTimeout: arcgisTimeout,
		YearStart:     yearStart,
		YearEnd:       yearEnd,

		DarkSkyAPIKey:  os.Getenv("DARKSKY_API_KEY"),
		DarkSkyBaseURL: envOrDefault("DARKSKY_BASE_URL", "https://api.darksky.net/forecast"),
		DarkSkyTimeout: darkskyTimeout,

		ClimateInterval: envOrDefault("CLIMATE_INTERVAL", "hourly"),
		ClimateUnits:    climateUnits,
		ClimateLimit:    climateLimit,

		CombineProps:  splitList(os.Getenv("COMBINE_PROPS")),
		TrainingState: envOrDefault("TRAINING_STATE", "CA"),

		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "standardized-wildfires"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// KafkaEnabled reports whether the standardized-event sink is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intOrDefault(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
