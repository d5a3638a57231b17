package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AssetType distinguishes index-style core holdings from individual
// fundamentals-gated positions.
type AssetType string

const (
	AssetCore        AssetType = "core"
	AssetConditional AssetType = "conditional"
)

// FxZones holds the four ascending band boundaries.
type FxZones struct {
	BulkConvert float64 `yaml:"bulk_convert" validate:"gt=0"`
	FullConvert float64 `yaml:"full_convert" validate:"gt=0"`
	NormalEnd   float64 `yaml:"normal_end" validate:"gt=0"`
	FullPause   float64 `yaml:"full_pause" validate:"gt=0"`
}

// FxConfig is the exchange-rate rule set.
type FxConfig struct {
	Baseline float64 `yaml:"baseline" validate:"gt=0"`
	Zones    FxZones `yaml:"zones"`
}

// SellTrigger holds the two rally thresholds for an index ticker.
type SellTrigger struct {
	RiseAllSell   float64 `yaml:"rise_all_sell" validate:"gt=0"`
	Rise50PctSell float64 `yaml:"rise_50pct_sell" validate:"gt=0"`
}

// BuyCondition gates a conditional ticker's buy recommendation.
type BuyCondition struct {
	PERMax     float64 `yaml:"per_max" validate:"gt=0"`
	DropPctMin float64 `yaml:"drop_pct_min" validate:"gt=0"` // positive magnitude, e.g. 15 means 15% below high
}

// WatchlistEntry is one monitored ticker.
type WatchlistEntry struct {
	Ticker         string        `yaml:"ticker" validate:"required"`
	Name           string        `yaml:"name"`
	Type           AssetType     `yaml:"type" default:"core" validate:"oneof=core conditional"`
	Shares         float64       `yaml:"shares" validate:"gte=0"`
	Currency       string        `yaml:"currency" default:"USD" validate:"oneof=USD KRW"`
	Sector         string        `yaml:"sector"`
	MonthlyTrigger bool          `yaml:"monthly_trigger"`
	SellTrigger    *SellTrigger  `yaml:"sell_trigger"`
	BuyCondition   *BuyCondition `yaml:"buy_condition"`
}

// BuyTier maps a monthly drawdown threshold to a reserve-cash commitment.
// Tiers are evaluated most severe first.
type BuyTier struct {
	DropPct    float64 `yaml:"drop_pct" validate:"lt=0"`
	ReservePct float64 `yaml:"reserve_pct" validate:"gt=0,lte=100"`
}

// TriggerConfig carries the resolved buy-tier ladder. Defaults match the
// original rule set: -10% commits 60% of reserve cash, -5% commits 30%.
type TriggerConfig struct {
	BuyTiers []BuyTier `yaml:"buy_tiers"`
}

// CashAccount is one configured cash bucket.
type CashAccount struct {
	Account  string  `yaml:"account"`
	Currency string  `yaml:"currency" default:"KRW" validate:"oneof=USD KRW"`
	Amount   float64 `yaml:"amount" validate:"gte=0"`
}

// Limits holds the portfolio guardrails.
type Limits struct {
	Sectors   map[string]float64 `yaml:"sectors" validate:"dive,gte=0"`
	Positions map[string]float64 `yaml:"positions" validate:"dive,gte=0"`
	CashMin   float64            `yaml:"cash_min" default:"15" validate:"gte=0"`
	CashMax   float64            `yaml:"cash_max" default:"25" validate:"gte=0"`
}

// PortfolioConfig is the holdings-independent portfolio inputs.
type PortfolioConfig struct {
	Cash   []CashAccount `yaml:"cash"`
	Limits Limits        `yaml:"limits"`
}

// Config is the single merged, fully-resolved configuration. Defaults are
// applied once at load; nothing downstream falls back inline.
type Config struct {
	Fx        FxConfig         `yaml:"fx"`
	Watchlist []WatchlistEntry `yaml:"watchlist" validate:"min=1,dive"`
	Triggers  TriggerConfig    `yaml:"triggers"`
	Portfolio PortfolioConfig  `yaml:"portfolio"`
	Email     struct {
		Recipient string `yaml:"recipient"`
		From      string `yaml:"from"`
		SMTPHost  string `yaml:"smtp_host" default:"smtp.gmail.com"`
		SMTPPort  int    `yaml:"smtp_port" default:"465"`
		Password  string `yaml:"password"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		AlphaVantageKey string `yaml:"alpha_vantage_key"`
		ExchangeRateKey string `yaml:"exchangerate_key"`
		DailyLimit      int    `yaml:"daily_limit" default:"25" validate:"gt=0"`
	} `yaml:"data_source"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron" default:"0 0 7 * * *"`
		FxCron    string `yaml:"fx_cron" default:"0 0 9-18 * * 1-5"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Timezone string `yaml:"timezone" default:"Asia/Seoul"`
	Proxy    string `yaml:"proxy"`
}

var validate = validator.New()

// Load reads YAML config, applies struct defaults, then environment
// variable overrides. Validation is a separate step so callers can report
// configuration errors before any evaluation runs.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Triggers.BuyTiers) == 0 {
		cfg.Triggers.BuyTiers = []BuyTier{
			{DropPct: -10, ReservePct: 60},
			{DropPct: -5, ReservePct: 30},
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.AlphaVantageKey = v
	}
	if v := os.Getenv("EXCHANGERATE_API_KEY"); v != "" {
		cfg.DataSource.ExchangeRateKey = v
	}
	if v := os.Getenv("GMAIL_ADDRESS"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("GMAIL_APP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("AV_DAILY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DataSource.DailyLimit = n
		}
	}

	return cfg, nil
}

// Validate checks tag rules plus the cross-field invariants the tags cannot
// express. It fails fast; a config that passes never needs inline guards
// downstream.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	z := c.Fx.Zones
	if !(z.BulkConvert < z.FullConvert && z.FullConvert < z.NormalEnd && z.NormalEnd < z.FullPause) {
		return fmt.Errorf("fx.zones must be strictly ascending: bulk_convert < full_convert < normal_end < full_pause")
	}

	for _, w := range c.Watchlist {
		if w.SellTrigger != nil && w.SellTrigger.RiseAllSell <= w.SellTrigger.Rise50PctSell {
			return fmt.Errorf("watchlist %s: sell_trigger.rise_all_sell must exceed rise_50pct_sell", w.Ticker)
		}
		if w.Type == AssetConditional && w.BuyCondition == nil {
			return fmt.Errorf("watchlist %s: conditional tickers require a buy_condition", w.Ticker)
		}
	}

	prev := 0.0
	for i, t := range c.Triggers.BuyTiers {
		if i > 0 && t.DropPct <= prev {
			return fmt.Errorf("triggers.buy_tiers must be ordered most severe first")
		}
		prev = t.DropPct
	}

	if c.Portfolio.Limits.CashMin > c.Portfolio.Limits.CashMax {
		return fmt.Errorf("portfolio.limits.cash_min must not exceed cash_max")
	}

	if c.Email.Recipient == "" && c.Telegram.BotToken == "" {
		return fmt.Errorf("at least one delivery channel (email or telegram) is required")
	}
	return nil
}
