package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediguard/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MEDIGUARD_ANALYZER_API_KEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Analyzer.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Analyzer.Model)
	assert.False(t, cfg.Analyzer.Configured())
	assert.Equal(t, 3, cfg.Guest.Limit)
	assert.Equal(t, 24*time.Hour, cfg.Guest.Window)
	assert.Equal(t, "mediguard_guest", cfg.Server.GuestCookie)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("MEDIGUARD_ANALYZER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Analyzer.APIKey)
	assert.True(t, cfg.Analyzer.Configured())
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	t.Setenv("MEDIGUARD_ANALYZER_API_KEY", "sk-prefixed")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-prefixed", cfg.Analyzer.APIKey)
}

func TestLoad_PortFromPlatform(t *testing.T) {
	t.Setenv("MEDIGUARD_SERVER_PORT", "")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestAnalyzerConfig_Configured_Whitespace(t *testing.T) {
	cfg := config.AnalyzerConfig{APIKey: "   "}
	assert.False(t, cfg.Configured())
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require",
	}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=require", cfg.DSN())
}
