package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"InvestSentinel/internal/collector"
	"InvestSentinel/internal/config"
	"InvestSentinel/internal/notifier"
	"InvestSentinel/internal/recorder"
	"InvestSentinel/internal/scheduler"
	"InvestSentinel/internal/trigger"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := bootstrapLogger()
		boot.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg)
	log.Info().Str("config", cfgPath).Msg("InvestSentinel starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("load timezone")
	}

	// Data sources: real providers when keys are configured, mock otherwise.
	var market collector.MarketFetcher
	var fx collector.FxFetcher
	if cfg.DataSource.AlphaVantageKey != "" && cfg.DataSource.ExchangeRateKey != "" {
		quota := collector.NewCallCounter(cfg.DataSource.DailyLimit, log)
		market = &collector.RoutingFetcher{
			Korean:  collector.NewNaverFetcher(cfg.Proxy, log),
			Default: collector.NewAlphaVantageFetcher(cfg.DataSource.AlphaVantageKey, cfg.Proxy, quota, log),
		}
		fx = collector.NewExchangeRateFetcher(cfg.DataSource.ExchangeRateKey, cfg.Proxy)
	} else {
		log.Warn().Msg("API keys missing, using mock data source")
		mock := &collector.MockFetcher{Rate: 1350}
		market, fx = mock, mock
	}
	log.Info().Str("source", market.Name()).Msg("data source ready")

	coll := collector.NewCollector(market, fx, cfg.Watchlist, log)
	engine := trigger.NewEngine(cfg.Triggers)

	var email scheduler.EmailClient
	if cfg.Email.Recipient != "" {
		email = notifier.NewEmailSender(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.From, cfg.Email.Password)
	}

	var telegram *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite recorder unavailable, falling back to noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var telegramClient scheduler.TelegramClient
	if telegram != nil {
		telegramClient = telegram
	}
	sched := scheduler.New(cfg, coll, engine, rec, email, telegramClient, loc, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("start scheduler")
	}
	defer sched.Stop()

	if telegram != nil {
		go telegram.StartPolling(ctx, sched.HandleCommand)
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing daily run now")
		go sched.RunDaily(ctx)
	}

	log.Info().Msg("InvestSentinel is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
}

// bootstrapLogger covers failures before the config-driven logger exists.
func bootstrapLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Log.Format == "json" {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return log.Level(level).With().Timestamp().Logger()
}
