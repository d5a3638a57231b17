// Package collector is the market data gateway: it drives the external
// providers and hands the evaluation core fully-materialized, immutable
// snapshots.
package collector

import (
	"fmt"
	"time"

	"InvestSentinel/internal/baseline"
	"InvestSentinel/internal/config"
	"InvestSentinel/internal/model"

	"github.com/rs/zerolog"
)

// historyWindow is how far back daily closes are requested; covers the
// 1-year horizon with slack for thin months.
const historyWindow = 400 * 24 * time.Hour

// MarketSnapshot is everything one run observed. Absent observations are
// nil/missing entries plus a human-readable note in Failures; the core
// skips them, the report flags them.
type MarketSnapshot struct {
	FetchedAt    time.Time
	FxRate       *float64
	Quotes       map[string]model.PricePoint
	Baselines    map[string]model.BaselineSet
	Fundamentals map[string]model.Fundamentals
	Failures     []string
}

// Collector gathers one snapshot per run from the configured providers.
type Collector struct {
	market    MarketFetcher
	fx        FxFetcher
	watchlist []config.WatchlistEntry
	log       zerolog.Logger
}

// NewCollector creates a Collector over the given fetchers.
func NewCollector(market MarketFetcher, fx FxFetcher, watchlist []config.WatchlistEntry, log zerolog.Logger) *Collector {
	return &Collector{
		market:    market,
		fx:        fx,
		watchlist: watchlist,
		log:       log.With().Str("component", "collector").Logger(),
	}
}

// Snapshot fetches FX, quotes, baselines, and fundamentals for the whole
// watchlist. Individual failures become absences, never errors; the run
// always produces a snapshot.
func (c *Collector) Snapshot(now time.Time) *MarketSnapshot {
	snap := &MarketSnapshot{
		FetchedAt:    now,
		Quotes:       make(map[string]model.PricePoint),
		Baselines:    make(map[string]model.BaselineSet),
		Fundamentals: make(map[string]model.Fundamentals),
	}

	if rate, err := c.fx.UsdKrwRate(); err != nil {
		c.log.Warn().Err(err).Msg("fx rate fetch failed")
		snap.Failures = append(snap.Failures, "USD/KRW rate lookup failed")
	} else {
		snap.FxRate = &rate
	}

	for _, entry := range c.watchlist {
		c.collectEntry(snap, entry, now)
	}
	return snap
}

func (c *Collector) collectEntry(snap *MarketSnapshot, entry config.WatchlistEntry, now time.Time) {
	if q, err := c.market.Quote(entry.Ticker); err != nil {
		c.log.Warn().Err(err).Str("ticker", entry.Ticker).Msg("quote fetch failed")
		snap.Failures = append(snap.Failures, fmt.Sprintf("%s quote lookup failed", entry.Ticker))
	} else {
		snap.Quotes[entry.Ticker] = *q
	}

	switch entry.Type {
	case config.AssetCore:
		closes, err := c.market.DailyCloses(entry.Ticker, now.Add(-historyWindow))
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", entry.Ticker).Msg("history fetch failed")
			snap.Failures = append(snap.Failures, fmt.Sprintf("%s history lookup failed", entry.Ticker))
			return
		}
		set, err := baseline.Compute(entry.Ticker, closes, now, model.StandardHorizons)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", entry.Ticker).Msg("baseline computation skipped")
			return
		}
		snap.Baselines[entry.Ticker] = set

	case config.AssetConditional:
		fund, err := c.market.Fundamentals(entry.Ticker)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", entry.Ticker).Msg("fundamentals fetch failed")
			snap.Failures = append(snap.Failures, fmt.Sprintf("%s fundamentals lookup failed", entry.Ticker))
			return
		}
		// The overview endpoint has no current price; derive the drawdown
		// from the quote observed this run.
		if q, ok := snap.Quotes[entry.Ticker]; ok && fund.CurrentPrice == 0 {
			fund.CurrentPrice = q.CurrentPrice
			fund.DropFromHighPct = dropFromHigh(q.CurrentPrice, fund.High52Week)
		}
		snap.Fundamentals[entry.Ticker] = *fund
	}
}

// FxRate fetches only the current USD/KRW rate. Used by the intraday FX
// watch so hourly checks never touch the market data quota.
func (c *Collector) FxRate() (float64, error) {
	return c.fx.UsdKrwRate()
}

// Holdings materializes allocator inputs from the watchlist and the quotes
// observed this run. Entries without shares or without a quote are skipped.
func (c *Collector) Holdings(snap *MarketSnapshot) []model.Holding {
	var holdings []model.Holding
	for _, entry := range c.watchlist {
		if entry.Shares <= 0 {
			continue
		}
		q, ok := snap.Quotes[entry.Ticker]
		if !ok {
			continue
		}
		holdings = append(holdings, model.Holding{
			Ticker:   entry.Ticker,
			Name:     entry.Name,
			Shares:   entry.Shares,
			Price:    q.CurrentPrice,
			Currency: entry.Currency,
			Sector:   entry.Sector,
		})
	}
	return holdings
}
