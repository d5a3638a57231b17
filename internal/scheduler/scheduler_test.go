package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestSentinel/internal/collector"
	"InvestSentinel/internal/config"
	"InvestSentinel/internal/recorder"
	"InvestSentinel/internal/trigger"
)

type fakeEmail struct {
	recipient string
	subject   string
	body      string
	sent      int
}

func (f *fakeEmail) Send(recipient, subject, htmlBody string) error {
	f.recipient, f.subject, f.body = recipient, subject, htmlBody
	f.sent++
	return nil
}

type fakeTelegram struct {
	messages []string
}

func (f *fakeTelegram) Send(text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeTelegram) SendWithRetry(_ context.Context, text string, _ int) error {
	return f.Send(text)
}

type captureRecorder struct {
	runs      []*recorder.RunRecord
	fxChanges []*recorder.FxChangeRecord
}

func (c *captureRecorder) RecordRun(rec *recorder.RunRecord) error {
	c.runs = append(c.runs, rec)
	return nil
}

func (c *captureRecorder) RecordFxChange(rec *recorder.FxChangeRecord) error {
	c.fxChanges = append(c.fxChanges, rec)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{
		Fx: config.FxConfig{
			Baseline: 1350,
			Zones:    config.FxZones{BulkConvert: 1300, FullConvert: 1340, NormalEnd: 1380, FullPause: 1420},
		},
		Watchlist: []config.WatchlistEntry{
			{Ticker: "360750.KS", Type: config.AssetCore, Shares: 100, Currency: "KRW", MonthlyTrigger: true},
		},
		Triggers: config.TriggerConfig{BuyTiers: []config.BuyTier{
			{DropPct: -10, ReservePct: 60},
			{DropPct: -5, ReservePct: 30},
		}},
	}
	cfg.Portfolio.Cash = []config.CashAccount{{Account: "ISA", Currency: "KRW", Amount: 3000000}}
	cfg.Portfolio.Limits = config.Limits{CashMin: 15, CashMax: 25}
	cfg.Email.Recipient = "me@example.com"
	return cfg
}

func newTestScheduler(cfg *config.Config, mock *collector.MockFetcher, email EmailClient, tg TelegramClient, rec recorder.Recorder) *Scheduler {
	coll := collector.NewCollector(mock, mock, cfg.Watchlist, zerolog.Nop())
	eng := trigger.NewEngine(cfg.Triggers)
	return New(cfg, coll, eng, rec, email, tg, time.UTC, zerolog.Nop())
}

func TestRunDaily_DeliversAndRecords(t *testing.T) {
	cfg := testConfig()
	email := &fakeEmail{}
	rec := &captureRecorder{}
	s := newTestScheduler(cfg, &collector.MockFetcher{Rate: 1350}, email, nil, rec)

	s.RunDaily(context.Background())

	assert.Equal(t, 1, email.sent)
	assert.Equal(t, "me@example.com", email.recipient)
	assert.Contains(t, email.subject, "Investment monitoring report")
	assert.Contains(t, email.body, "normal zone")

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.True(t, run.Delivered)
	require.NotNil(t, run.Fx)
	assert.Equal(t, 1350.0, run.Fx.CurrentRate)
	require.NotNil(t, run.Portfolio)
	assert.Positive(t, run.Portfolio.TotalAssets)
}

func TestRunDaily_NoFxRateDegrades(t *testing.T) {
	cfg := testConfig()
	email := &fakeEmail{}
	rec := &captureRecorder{}
	s := newTestScheduler(cfg, &collector.MockFetcher{}, email, nil, rec)

	s.RunDaily(context.Background())

	assert.Equal(t, 1, email.sent)
	require.Len(t, rec.runs, 1)
	assert.Nil(t, rec.runs[0].Fx)
	assert.Nil(t, rec.runs[0].Portfolio)
	assert.Contains(t, rec.runs[0].Failures, "portfolio valuation skipped: no USD/KRW rate")
}

func TestRunFxCheck_AlertsOnZoneChange(t *testing.T) {
	cfg := testConfig()
	tg := &fakeTelegram{}
	rec := &captureRecorder{}
	mock := &collector.MockFetcher{Rate: 1350}
	s := newTestScheduler(cfg, mock, nil, tg, rec)

	// First observation only seeds state.
	s.RunFxCheck(context.Background())
	assert.Empty(t, tg.messages)
	assert.Empty(t, rec.fxChanges)

	// Same zone, no alert.
	mock.Rate = 1370
	s.RunFxCheck(context.Background())
	assert.Empty(t, tg.messages)

	// Crossing into the hold band fires exactly one alert.
	mock.Rate = 1395
	s.RunFxCheck(context.Background())
	require.Len(t, tg.messages, 1)
	assert.Contains(t, tg.messages[0], "FX zone change")
	assert.Contains(t, tg.messages[0], "conversion hold zone")
	require.Len(t, rec.fxChanges, 1)
	assert.Equal(t, 1395.0, rec.fxChanges[0].Change.CurrentRate)
}

func TestHandleCommand(t *testing.T) {
	cfg := testConfig()
	mock := &collector.MockFetcher{Rate: 1402.5}
	s := newTestScheduler(cfg, mock, &fakeEmail{}, &fakeTelegram{}, &captureRecorder{})

	fx := s.HandleCommand("/fx")
	assert.Contains(t, fx, "1402.50")
	assert.Contains(t, fx, "conversion hold zone")

	port := s.HandleCommand("/portfolio")
	assert.Contains(t, port, "Total assets:")
	assert.Contains(t, port, "360750.KS")

	help := s.HandleCommand("/help")
	assert.Contains(t, help, "/report")

	assert.Contains(t, s.HandleCommand("/bogus"), "Unknown command")
	assert.Empty(t, s.HandleCommand("   "))
}
