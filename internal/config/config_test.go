package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/config"
)

func TestExtractorConfig_SecondaryConfig_NotConfigured(t *testing.T) {
	cfg := config.ExtractorConfig{
		Primary: config.ProviderConfig{Provider: "claude", APIKey: "sk-test"},
	}

	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())
}

func TestExtractorConfig_SecondaryConfig_Configured(t *testing.T) {
	cfg := config.ExtractorConfig{
		Primary:   config.ProviderConfig{Provider: "claude"},
		Secondary: config.ProviderConfig{Provider: "gemini", APIKey: "gm-key"},
		Tertiary:  config.ProviderConfig{Provider: "openai", APIKey: "oa-key"},
	}

	secondary := cfg.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "gemini", secondary.Provider)
	assert.Equal(t, "gm-key", secondary.APIKey)

	tertiary := cfg.TertiaryConfig()
	require.NotNil(t, tertiary)
	assert.Equal(t, "openai", tertiary.Provider)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 3, cfg.Queue.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Queue.RetryDelay())
	assert.Equal(t, 200, cfg.Raster.DPI)
	assert.Equal(t, 10*time.Minute, cfg.Materializer.SiblingWindow())
	assert.Equal(t, "claude", cfg.Extractor.Primary.Provider)
	assert.Equal(t, "noop", cfg.Alert.Provider)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.DB.ConnectTimeout)
	assert.Equal(t, "file://db/migrations", cfg.DB.MigrationsSource())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLAIMDESK_QUEUE_WORKERS", "8")
	t.Setenv("CLAIMDESK_RASTER_DPI", "300")
	t.Setenv("CLAIMDESK_EXTRACTOR_SECONDARY_PROVIDER", "gemini")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Queue.Workers)
	assert.Equal(t, 300, cfg.Raster.DPI)
	require.NotNil(t, cfg.Extractor.SecondaryConfig())
	assert.Equal(t, "gemini", cfg.Extractor.SecondaryConfig().Provider)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.DSN())
}

func TestLoad_MigrationsPathOverride(t *testing.T) {
	t.Setenv("CLAIMDESK_DB_MIGRATIONS_PATH", "/srv/claimdesk/migrations")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "file:///srv/claimdesk/migrations", cfg.DB.MigrationsSource())
}
