package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "https://www.pegelonline.wsv.de/webservices/rest-api/v2", cfg.PegelonlineBaseURL)
	assert.Equal(t, "edis/pegelonline", cfg.MqttBaseTopic)
	assert.Equal(t, "de", cfg.BaselineLanguage)
	assert.Equal(t, []string{"en"}, cfg.AdditionalLanguages)
	assert.Equal(t, int64(99), cfg.MaxConcurrentRequests)
	assert.False(t, cfg.FetchAtStartup)
	assert.Empty(t, cfg.SnapshotBucket)
}

func TestNew_Options(t *testing.T) {
	cfg := New(
		WithEnvironment("development"),
		WithLogLevel("debug"),
		WithHTTPTimeout(42*time.Second),
	)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 42*time.Second, cfg.HTTPTimeout)
}

func TestWithLogLevel_Invalid(t *testing.T) {
	cfg := New(WithLogLevel("not a level"))
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "local")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("NOMINATIM_BASE_URL", "http://localhost:8080")
	t.Setenv("ADDITIONAL_LANGUAGES", "en, fr ,nl")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "12")
	t.Setenv("FETCH_AT_STARTUP", "true")

	cfg := LoadFromEnv()

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
	assert.Equal(t, "http://localhost:8080", cfg.NominatimBaseURL)
	assert.Equal(t, []string{"en", "fr", "nl"}, cfg.AdditionalLanguages)
	assert.Equal(t, int64(12), cfg.MaxConcurrentRequests)
	assert.True(t, cfg.FetchAtStartup)
}

func TestLoadFromEnv_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_REQUESTS", "many")
	t.Setenv("FETCH_AT_STARTUP", "jawohl")

	cfg := LoadFromEnv()

	assert.Equal(t, int64(99), cfg.MaxConcurrentRequests)
	assert.False(t, cfg.FetchAtStartup)
}
