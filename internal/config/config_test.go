package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
fx:
  baseline: 1350
  zones:
    bulk_convert: 1300
    full_convert: 1340
    normal_end: 1380
    full_pause: 1420
watchlist:
  - ticker: 360750.KS
    name: TIGER S&P500
    shares: 100
    currency: KRW
    sector: index
    monthly_trigger: true
    sell_trigger:
      rise_all_sell: 30
      rise_50pct_sell: 20
  - ticker: QCOM
    type: conditional
    sector: ai_tech
    buy_condition:
      per_max: 25
      drop_pct_min: 15
portfolio:
  cash:
    - account: ISA
      currency: KRW
      amount: 3000000
  limits:
    sectors:
      ai_tech: 30
    positions:
      OXY: 10
email:
  recipient: me@example.com
  from: bot@example.com
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "smtp.gmail.com", cfg.Email.SMTPHost)
	assert.Equal(t, 465, cfg.Email.SMTPPort)
	assert.Equal(t, 25, cfg.DataSource.DailyLimit)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.Equal(t, "0 0 7 * * *", cfg.Schedule.DailyCron)
	assert.Equal(t, 15.0, cfg.Portfolio.Limits.CashMin)
	assert.Equal(t, 25.0, cfg.Portfolio.Limits.CashMax)

	// Default tier ladder, most severe first.
	require.Len(t, cfg.Triggers.BuyTiers, 2)
	assert.Equal(t, -10.0, cfg.Triggers.BuyTiers[0].DropPct)
	assert.Equal(t, 60.0, cfg.Triggers.BuyTiers[0].ReservePct)
	assert.Equal(t, -5.0, cfg.Triggers.BuyTiers[1].DropPct)
	assert.Equal(t, 30.0, cfg.Triggers.BuyTiers[1].ReservePct)

	// Per-entry defaults.
	assert.Equal(t, AssetCore, cfg.Watchlist[0].Type)
	assert.Equal(t, "USD", cfg.Watchlist[1].Currency)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ALPHAVANTAGE_API_KEY", "env-av-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("AV_DAILY_LIMIT", "10")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-av-key", cfg.DataSource.AlphaVantageKey)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, 10, cfg.DataSource.DailyLimit)
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"zones not ascending", func(cfg *Config) {
			cfg.Fx.Zones.FullConvert = cfg.Fx.Zones.NormalEnd + 1
		}},
		{"sell thresholds inverted", func(cfg *Config) {
			cfg.Watchlist[0].SellTrigger.RiseAllSell = 10
		}},
		{"conditional without buy_condition", func(cfg *Config) {
			cfg.Watchlist[1].BuyCondition = nil
		}},
		{"buy tiers out of order", func(cfg *Config) {
			cfg.Triggers.BuyTiers = []BuyTier{
				{DropPct: -5, ReservePct: 30},
				{DropPct: -10, ReservePct: 60},
			}
		}},
		{"cash band inverted", func(cfg *Config) {
			cfg.Portfolio.Limits.CashMin = 40
		}},
		{"no delivery channel", func(cfg *Config) {
			cfg.Email.Recipient = ""
			cfg.Telegram.BotToken = ""
		}},
		{"empty watchlist", func(cfg *Config) {
			cfg.Watchlist = nil
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validYAML))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	// A defaults-only config still fails validation: no watchlist, no channel.
	assert.Error(t, cfg.Validate())
}
