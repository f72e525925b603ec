package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledger/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "ledger", cfg.DB.Name)
	assert.Equal(t, 30*time.Second, cfg.DB.Timeout)
	assert.Equal(t, 100000, cfg.Password.Iterations)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, "postgres://postgres:@localhost:5432/ledger?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://money:money@db:5432/money")
	t.Setenv("DB_HOST", "ignored")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgresql://money:money@db:5432/money", cfg.ConnectionString())
}

func TestLoad_LogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{name: "Debug", value: "debug", want: slog.LevelDebug},
		{name: "Warn", value: "WARN", want: slog.LevelWarn},
		{name: "Unknown", value: "chatty", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.value)

			cfg, err := config.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Level())
		})
	}
}

func TestLoad_RejectsNonPositiveIterations(t *testing.T) {
	t.Setenv("PASSWORD_ITERATIONS", "0")

	_, err := config.Load()
	assert.Error(t, err)
}
