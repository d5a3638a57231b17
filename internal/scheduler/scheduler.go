// Package scheduler wires the collection, evaluation, and delivery layers
// into cron-driven runs and Telegram command handling.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"InvestSentinel/internal/collector"
	"InvestSentinel/internal/config"
	"InvestSentinel/internal/fxzone"
	"InvestSentinel/internal/model"
	"InvestSentinel/internal/portfolio"
	"InvestSentinel/internal/recorder"
	"InvestSentinel/internal/report"
	"InvestSentinel/internal/trigger"
)

// EmailClient delivers the daily HTML report.
type EmailClient interface {
	Send(recipient, subject, htmlBody string) error
}

// TelegramClient delivers alerts and command replies.
type TelegramClient interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the daily report and the intraday FX watch on cron
// schedules, and answers Telegram commands between runs.
type Scheduler struct {
	cfg       *config.Config
	collector *collector.Collector
	engine    *trigger.Engine
	rec       recorder.Recorder
	email     EmailClient
	telegram  TelegramClient
	cron      *cron.Cron
	loc       *time.Location
	log       zerolog.Logger

	mu         sync.Mutex
	prevFxRate *float64
}

// New assembles a scheduler. Either delivery client may be nil; at least one
// is guaranteed by config validation.
func New(cfg *config.Config, coll *collector.Collector, eng *trigger.Engine, rec recorder.Recorder,
	email EmailClient, telegram TelegramClient, loc *time.Location, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		collector: coll,
		engine:    eng,
		rec:       rec,
		email:     email,
		telegram:  telegram,
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		loc:       loc,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the cron entries and launches the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule.DailyCron, func() {
		s.RunDaily(context.Background())
	}); err != nil {
		return fmt.Errorf("register daily job: %w", err)
	}
	if s.telegram != nil {
		if _, err := s.cron.AddFunc(s.cfg.Schedule.FxCron, func() {
			s.RunFxCheck(context.Background())
		}); err != nil {
			return fmt.Errorf("register fx watch job: %w", err)
		}
	}

	s.cron.Start()
	s.log.Info().
		Str("daily", s.cfg.Schedule.DailyCron).
		Str("fx_watch", s.cfg.Schedule.FxCron).
		Msg("scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunDaily executes the full daily pipeline: collect, classify, evaluate,
// allocate, compose, deliver, record. Fetch failures degrade the report
// rather than aborting it.
func (s *Scheduler) RunDaily(ctx context.Context) {
	now := time.Now().In(s.loc)
	s.log.Info().Time("run", now).Msg("daily run started")

	snap := s.collector.Snapshot(now)

	var fxResult *model.FxZoneResult
	if snap.FxRate != nil {
		if res, err := fxzone.Classify(*snap.FxRate, s.cfg.Fx); err != nil {
			s.log.Warn().Err(err).Msg("fx classification failed")
			snap.Failures = append(snap.Failures, "USD/KRW zone classification failed")
		} else {
			fxResult = &res
		}
	}

	triggers := s.engine.Evaluate(s.cfg.Watchlist, snap.Baselines, snap.Fundamentals)

	var portSnap *model.PortfolioSnapshot
	if snap.FxRate != nil {
		p := portfolio.Compute(s.collector.Holdings(snap), s.cashBalances(), *snap.FxRate, s.cfg.Portfolio.Limits)
		portSnap = &p
	} else {
		snap.Failures = append(snap.Failures, "portfolio valuation skipped: no USD/KRW rate")
	}

	data := report.Data{
		Date:      now,
		Fx:        fxResult,
		Watchlist: s.cfg.Watchlist,
		Quotes:    snap.Quotes,
		Baselines: snap.Baselines,
		Triggers:  triggers,
		Portfolio: portSnap,
		Failures:  snap.Failures,
	}

	delivered := s.deliver(ctx, data)

	if err := s.rec.RecordRun(&recorder.RunRecord{
		RanAt:     now,
		Fx:        fxResult,
		Triggers:  triggers,
		Portfolio: portSnap,
		Failures:  snap.Failures,
		Delivered: delivered,
	}); err != nil {
		s.log.Error().Err(err).Msg("record run failed")
	}

	s.log.Info().
		Int("buys", len(triggers.Buys)).
		Int("sells", len(triggers.Sells)).
		Int("conditional_buys", len(triggers.ConditionalBuys)).
		Int("failures", len(snap.Failures)).
		Bool("delivered", delivered).
		Msg("daily run finished")
}

func (s *Scheduler) deliver(ctx context.Context, data report.Data) bool {
	delivered := false

	if s.email != nil && s.cfg.Email.Recipient != "" {
		body, err := report.ComposeEmail(data)
		if err != nil {
			s.log.Error().Err(err).Msg("compose email failed")
		} else if err := s.email.Send(s.cfg.Email.Recipient, report.Subject(data.Date), body); err != nil {
			s.log.Error().Err(err).Msg("email delivery failed")
		} else {
			delivered = true
			s.log.Info().Str("recipient", s.cfg.Email.Recipient).Msg("report emailed")
		}
	}

	if s.telegram != nil {
		if alert := report.FormatTriggerAlert(data.Triggers); alert != "" {
			if err := s.telegram.SendWithRetry(ctx, alert, 3); err != nil {
				s.log.Error().Err(err).Msg("telegram trigger alert failed")
			} else {
				delivered = true
			}
		}
	}
	return delivered
}

// RunFxCheck fetches the rate and alerts on a band transition since the
// previous observation. The first observation of the day only seeds state.
func (s *Scheduler) RunFxCheck(ctx context.Context) {
	result, err := s.currentFx()
	if err != nil {
		s.log.Warn().Err(err).Msg("fx watch fetch failed")
		return
	}
	rate := result.CurrentRate

	s.mu.Lock()
	prev := s.prevFxRate
	s.prevFxRate = &rate
	s.mu.Unlock()

	if prev == nil {
		s.log.Debug().Float64("rate", rate).Msg("fx watch seeded")
		return
	}

	change, err := fxzone.DetectChange(*prev, rate, s.cfg.Fx)
	if err != nil {
		s.log.Warn().Err(err).Msg("fx change detection failed")
		return
	}
	if change == nil {
		return
	}

	s.log.Info().
		Str("from", string(change.PrevZone)).
		Str("to", string(change.Zone)).
		Float64("rate", rate).
		Msg("fx zone change detected")

	if s.telegram != nil {
		if err := s.telegram.SendWithRetry(ctx, report.FormatFxChangeAlert(*change), 3); err != nil {
			s.log.Error().Err(err).Msg("fx change alert failed")
		}
	}
	if err := s.rec.RecordFxChange(&recorder.FxChangeRecord{
		ObservedAt: time.Now().In(s.loc),
		Change:     *change,
	}); err != nil {
		s.log.Error().Err(err).Msg("record fx change failed")
	}
}

// HandleCommand answers a Telegram command. Unknown commands get the help
// text.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "/report":
		go s.RunDaily(context.Background())
		return "Generating the full report, delivery follows shortly."

	case "/fx":
		result, err := s.currentFx()
		if err != nil {
			return "USD/KRW lookup failed, try again later."
		}
		return report.FormatFxStatus(*result)

	case "/portfolio":
		snap := s.collector.Snapshot(time.Now().In(s.loc))
		if snap.FxRate == nil {
			return "USD/KRW lookup failed, portfolio valuation unavailable."
		}
		p := portfolio.Compute(s.collector.Holdings(snap), s.cashBalances(), *snap.FxRate, s.cfg.Portfolio.Limits)
		return report.FormatPortfolioStatus(p)

	case "/start", "/help":
		return "Commands:\n/report - full daily report\n/fx - USD/KRW zone status\n/portfolio - allocation and limit warnings"

	default:
		return "Unknown command. Send /help for the list."
	}
}

func (s *Scheduler) currentFx() (*model.FxZoneResult, error) {
	rate, err := s.collector.FxRate()
	if err != nil {
		return nil, fmt.Errorf("fetch USD/KRW rate: %w", err)
	}
	result, err := fxzone.Classify(rate, s.cfg.Fx)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Scheduler) cashBalances() []model.CashBalance {
	balances := make([]model.CashBalance, 0, len(s.cfg.Portfolio.Cash))
	for _, c := range s.cfg.Portfolio.Cash {
		balances = append(balances, model.CashBalance{
			Account:  c.Account,
			Currency: c.Currency,
			Amount:   c.Amount,
		})
	}
	return balances
}
