package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPAddr    string
	HTTPTimeout time.Duration

	PegelonlineBaseURL string
	NominatimBaseURL   string
	MqttBaseTopic      string

	StationFile string
	BasinFile   string
	AliasFile   string
	AliasSheet  string

	BaselineLanguage    string
	AdditionalLanguages []string

	MaxConcurrentRequests int64
	CronSchedule          string
	FetchAtStartup        bool

	// SnapshotBucket enables the S3 snapshot mirror when non-empty.
	SnapshotBucket string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment: "production",
		LogLevel:    zerolog.InfoLevel,
		HTTPAddr:    ":3000",
		HTTPTimeout: 10 * time.Second,

		PegelonlineBaseURL: "https://www.pegelonline.wsv.de/webservices/rest-api/v2",
		NominatimBaseURL:   "https://nominatim.openstreetmap.org",
		MqttBaseTopic:      "edis/pegelonline",

		StationFile: "./stations.json",
		BasinFile:   "./einzugsgebiete.geojson",
		AliasFile:   "./suchwortliste.xlsx",
		AliasSheet:  "Tabelle1",

		BaselineLanguage:    "de",
		AdditionalLanguages: []string{"en"},

		MaxConcurrentRequests: 99,
		CronSchedule:          "0 4 * * *",
		FetchAtStartup:        false,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// LoadFromEnv loads configuration from environment variables. A .env
// file in the working directory is read first when present.
func LoadFromEnv() *Config {
	_ = godotenv.Load()

	cfg := New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
	)

	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.PegelonlineBaseURL = getEnvOrDefault("PEGELONLINE_BASE_URL", cfg.PegelonlineBaseURL)
	cfg.NominatimBaseURL = getEnvOrDefault("NOMINATIM_BASE_URL", cfg.NominatimBaseURL)
	cfg.MqttBaseTopic = getEnvOrDefault("MQTT_BASE_TOPIC", cfg.MqttBaseTopic)
	cfg.StationFile = getEnvOrDefault("STATION_FILE", cfg.StationFile)
	cfg.BasinFile = getEnvOrDefault("BASIN_FILE", cfg.BasinFile)
	cfg.AliasFile = getEnvOrDefault("ALIAS_FILE", cfg.AliasFile)
	cfg.AliasSheet = getEnvOrDefault("ALIAS_SHEET", cfg.AliasSheet)
	cfg.BaselineLanguage = getEnvOrDefault("BASELINE_LANGUAGE", cfg.BaselineLanguage)
	cfg.AdditionalLanguages = getListEnvOrDefault("ADDITIONAL_LANGUAGES", cfg.AdditionalLanguages)
	cfg.MaxConcurrentRequests = getInt64EnvOrDefault("MAX_CONCURRENT_REQUESTS", cfg.MaxConcurrentRequests)
	cfg.CronSchedule = getEnvOrDefault("CRON_SCHEDULE", cfg.CronSchedule)
	cfg.FetchAtStartup = getBoolEnvOrDefault("FETCH_AT_STARTUP", cfg.FetchAtStartup)
	cfg.SnapshotBucket = getEnvOrDefault("S3_SNAPSHOT_BUCKET", cfg.SnapshotBucket)

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getInt64EnvOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnvOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListEnvOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
