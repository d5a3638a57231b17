package model

// Fundamentals holds valuation metrics for a conditional ticker. Optional
// fields are nil when the provider omits them or reports a sentinel; the
// gateway normalizes those before the core ever sees them.
type Fundamentals struct {
	Ticker          string
	PER             *float64
	ROE             *float64
	DebtEquity      *float64
	ProfitMargin    *float64
	High52Week      float64
	CurrentPrice    float64
	DropFromHighPct float64 // (current-high)/high*100, <= 0 when high > 0
}
