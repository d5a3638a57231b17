package model

// Holding is one position handed to the allocator, already materialized.
type Holding struct {
	Ticker   string
	Name     string
	Shares   float64
	Price    float64
	Currency string // "KRW" or "USD"
	Sector   string
}

// CashBalance is one cash bucket tagged by account and currency.
type CashBalance struct {
	Account  string
	Currency string
	Amount   float64
}

// AllocationEntry is a position's share of total assets.
type AllocationEntry struct {
	Ticker        string
	Name          string
	Shares        float64
	Price         float64
	ValueKRW      float64
	AllocationPct float64
}

// SectorAllocation aggregates positions by sector tag.
type SectorAllocation struct {
	Sector        string
	ValueKRW      float64
	AllocationPct float64
}

// LimitKind distinguishes the three warning classes.
type LimitKind string

const (
	LimitSector   LimitKind = "sector"
	LimitPosition LimitKind = "position"
	LimitCashLow  LimitKind = "cash_low"
	LimitCashHigh LimitKind = "cash_high"
)

// LimitWarning is emitted when an allocation breaches a configured limit.
type LimitWarning struct {
	Kind       LimitKind
	Message    string
	CurrentPct float64
	LimitPct   float64
}

// PortfolioSnapshot is the full allocation picture for one run.
type PortfolioSnapshot struct {
	Positions     []AllocationEntry
	Sectors       []SectorAllocation
	TotalValueKRW float64
	TotalCashKRW  float64
	TotalAssets   float64
	CashPct       float64
	Warnings      []LimitWarning
}
