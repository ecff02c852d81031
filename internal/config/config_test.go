package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, []string{"SPY"}, cfg.Analysis.Symbols)
	assert.Equal(t, model.Monthly, cfg.DefaultPeriod())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_source:
  provider: eodhd
  api_key: from-file
analysis:
  symbols: [AAPL.US, MSFT.US]
  period: quarterly
  log_space: true
log:
  format: json
`), 0o644))

	t.Setenv("EODHD_API_KEY", "from-env")
	t.Setenv("LOOKBACK_DAYS", "730")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eodhd", cfg.DataSource.Provider)
	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, []string{"AAPL.US", "MSFT.US"}, cfg.Analysis.Symbols)
	assert.Equal(t, 730, cfg.Analysis.LookbackDays)
	assert.Equal(t, model.Quarterly, cfg.DefaultPeriod())
	assert.True(t, cfg.Analysis.LogSpace)
	assert.True(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadSymbolsFromEnv(t *testing.T) {
	t.Setenv("ANALYSIS_SYMBOLS", " spy, qqq ,,")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Analysis.Symbols)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: [unclosed"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "data_source.provider"},
		{"eodhd without key", func(c *Config) { c.DataSource.Provider = "eodhd" }, "api_key"},
		{"bad period", func(c *Config) { c.Analysis.Period = "weekly" }, "analysis.period"},
		{"short lookback", func(c *Config) { c.Analysis.LookbackDays = 1 }, "lookback_days"},
		{"bad cron", func(c *Config) { c.Schedule.DailyCron = "every day" }, "daily_cron"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }, "telegram"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
