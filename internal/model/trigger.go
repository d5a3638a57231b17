package model

// BuySeverity is the tier of a monthly-drawdown buy trigger.
type BuySeverity string

const (
	BuyBulk    BuySeverity = "bulk"    // deepest drawdown tier
	BuyPartial BuySeverity = "partial" // milder drawdown tier
)

// SellLevel is the tier of a monthly-rally sell trigger.
type SellLevel string

const (
	SellAll  SellLevel = "all"
	SellHalf SellLevel = "half"
)

// BuyTrigger fires when a ticker's monthly drawdown crosses a configured tier.
type BuyTrigger struct {
	Ticker     string
	ChangePct  float64
	Severity   BuySeverity
	ReservePct float64 // share of reserve cash to commit
	Action     string
}

// SellTrigger fires when a ticker's monthly rally crosses a configured threshold.
type SellTrigger struct {
	Ticker     string
	ChangePct  float64
	Level      SellLevel
	SellShares int // floor(shares/2) for half-sell, all shares for full
	Action     string
}

// ConditionCheck reports each sub-condition of a conditional buy so the
// report can show which leg failed without faulting on missing data.
type ConditionCheck struct {
	PERKnown bool
	PEROk    bool
	DropOk   bool
}

// Met reports whether every sub-condition holds.
func (c ConditionCheck) Met() bool {
	return c.PERKnown && c.PEROk && c.DropOk
}

// ConditionalBuyTrigger fires when a ticker satisfies both the P/E ceiling
// and the drawdown-from-high floor.
type ConditionalBuyTrigger struct {
	Ticker  string
	PER     float64
	DropPct float64
	Action  string
}

// ConditionalBuyStatus is the evaluated state of a conditional ticker,
// fired or not, kept for report diagnostics.
type ConditionalBuyStatus struct {
	Ticker  string
	PER     *float64
	DropPct float64
	Check   ConditionCheck
}

// TriggerReport collects every trigger fired in one run. Each category is an
// ordered list in watchlist order; nothing is overwritten when several
// tickers qualify.
type TriggerReport struct {
	Buys            []BuyTrigger
	Sells           []SellTrigger
	ConditionalBuys []ConditionalBuyTrigger
	Conditions      []ConditionalBuyStatus
}
