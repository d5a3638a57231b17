// Package trigger evaluates the rule-based buy/sell recommendations: ISA
// monthly-baseline drawdown/rally triggers and the fundamentals-gated
// conditional buy.
package trigger

import (
	"fmt"

	"InvestSentinel/internal/config"
	"InvestSentinel/internal/model"
)

// Engine holds the resolved trigger thresholds for one run. It is a pure
// evaluator over materialized snapshots; it never fetches.
type Engine struct {
	tiers []config.BuyTier
}

// NewEngine builds an engine from the resolved configuration. The tier
// ladder arrives ordered most severe first (enforced at config validation).
func NewEngine(cfg config.TriggerConfig) *Engine {
	return &Engine{tiers: cfg.BuyTiers}
}

// EvaluateBuy checks the monthly drawdown against the tier ladder. The most
// severe qualifying tier wins; a change in (-5, 0] or any rally fires
// nothing.
func (e *Engine) EvaluateBuy(bp model.BaselinePeriod) *model.BuyTrigger {
	for i, tier := range e.tiers {
		if bp.ChangePct <= tier.DropPct {
			severity := model.BuyPartial
			if i == 0 {
				severity = model.BuyBulk
			}
			return &model.BuyTrigger{
				Ticker:     bp.Ticker,
				ChangePct:  bp.ChangePct,
				Severity:   severity,
				ReservePct: tier.ReservePct,
				Action:     fmt.Sprintf("commit %.0f%% of reserve cash to additional purchase", tier.ReservePct),
			}
		}
	}
	return nil
}

// EvaluateSell checks the monthly rally against the configured thresholds.
// Full liquidation takes precedence over the half-sell tier; the half-sell
// quantity is the integer floor of the share count divided by two.
func (e *Engine) EvaluateSell(bp model.BaselinePeriod, shares int, st config.SellTrigger) *model.SellTrigger {
	switch {
	case bp.ChangePct >= st.RiseAllSell:
		return &model.SellTrigger{
			Ticker:     bp.Ticker,
			ChangePct:  bp.ChangePct,
			Level:      model.SellAll,
			SellShares: shares,
			Action:     fmt.Sprintf("liquidate all %d shares", shares),
		}
	case bp.ChangePct >= st.Rise50PctSell:
		half := shares / 2
		return &model.SellTrigger{
			Ticker:     bp.Ticker,
			ChangePct:  bp.ChangePct,
			Level:      model.SellHalf,
			SellShares: half,
			Action:     fmt.Sprintf("liquidate half of current holdings (%d shares)", half),
		}
	}
	return nil
}

// EvaluateConditionalBuy applies the compound fundamentals gate: the trigger
// fires only when P/E is known, P/E <= per_max, and the drawdown from the
// 52-week high is at least drop_pct_min deep. The returned status records
// each sub-condition so the report can show which leg failed.
func (e *Engine) EvaluateConditionalBuy(f model.Fundamentals, cond config.BuyCondition) (*model.ConditionalBuyTrigger, model.ConditionalBuyStatus) {
	status := model.ConditionalBuyStatus{
		Ticker:  f.Ticker,
		PER:     f.PER,
		DropPct: f.DropFromHighPct,
	}
	status.Check.PERKnown = f.PER != nil
	status.Check.PEROk = f.PER != nil && *f.PER <= cond.PERMax
	status.Check.DropOk = f.DropFromHighPct <= -cond.DropPctMin

	if !status.Check.Met() {
		return nil, status
	}
	return &model.ConditionalBuyTrigger{
		Ticker:  f.Ticker,
		PER:     *f.PER,
		DropPct: f.DropFromHighPct,
		Action:  fmt.Sprintf("entry zone: P/E %.1f (limit %.0f), %.1f%% below 52w high (floor -%.0f%%)", *f.PER, cond.PERMax, f.DropFromHighPct, cond.DropPctMin),
	}, status
}

// Evaluate walks the watchlist in config order and collects every fired
// trigger per category. Tickers whose upstream data is absent are skipped
// silently; flagging fetch failures is the orchestrator's job.
func (e *Engine) Evaluate(watchlist []config.WatchlistEntry, baselines map[string]model.BaselineSet, fundamentals map[string]model.Fundamentals) model.TriggerReport {
	var report model.TriggerReport

	for _, entry := range watchlist {
		switch entry.Type {
		case config.AssetCore:
			if !entry.MonthlyTrigger && entry.SellTrigger == nil {
				continue
			}
			set, ok := baselines[entry.Ticker]
			if !ok {
				continue
			}
			bp, ok := set.Periods[model.HorizonMonthly]
			if !ok {
				continue
			}
			if entry.MonthlyTrigger {
				if buy := e.EvaluateBuy(bp); buy != nil {
					report.Buys = append(report.Buys, *buy)
				}
			}
			if entry.SellTrigger != nil {
				if sell := e.EvaluateSell(bp, int(entry.Shares), *entry.SellTrigger); sell != nil {
					report.Sells = append(report.Sells, *sell)
				}
			}

		case config.AssetConditional:
			if entry.BuyCondition == nil {
				continue
			}
			f, ok := fundamentals[entry.Ticker]
			if !ok {
				continue
			}
			trig, status := e.EvaluateConditionalBuy(f, *entry.BuyCondition)
			report.Conditions = append(report.Conditions, status)
			if trig != nil {
				report.ConditionalBuys = append(report.ConditionalBuys, *trig)
			}
		}
	}
	return report
}
